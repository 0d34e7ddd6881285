package evtc

import "gw2-resim/internal/faults"

// FindPlayer returns the player agent whose character name is name.
func (l *Log) FindPlayer(name string) (Agent, error) {
	for _, a := range l.Agents {
		if a.IsPlayer() && a.CharacterName() == name {
			return a, nil
		}
	}
	return Agent{}, faults.Lookup("evtc", "player %q not found", name)
}

// FindBoss returns the non-player agent of the encounter's boss species.
func (l *Log) FindBoss() (Agent, error) {
	for _, a := range l.Agents {
		if !a.IsPlayer() && a.Profession == uint32(l.BossSpeciesID) {
			return a, nil
		}
	}
	return Agent{}, faults.Lookup("evtc", "boss species %d not found", l.BossSpeciesID)
}

// PlayerInstanceID returns the instance id of the first non state change
// record sourced by player.
func (l *Log) PlayerInstanceID(player Agent) (uint16, error) {
	for _, r := range l.Records {
		if r.IsStateChange == StateChangeNone && r.SrcAgent == player.Address {
			return r.SrcInstID, nil
		}
	}
	return 0, faults.Lookup("evtc", "no record sourced by player %q", player.CharacterName())
}
