package gamedata

// Skill ids as recorded in combat logs.
const (
	Bleeding      uint32 = 736
	Burning       uint32 = 737
	Confusion     uint32 = 861
	Poisoned      uint32 = 723
	Torment       uint32 = 19426
	Chilled       uint32 = 722
	Vulnerability uint32 = 738

	Fury  uint32 = 725
	Might uint32 = 740

	KallasFervor uint32 = 42883
	BattleScars  uint32 = 26646

	SearingFissure uint32 = 28357

	// RingOfEarth is the Geomancy sigil strike.
	RingOfEarth uint32 = 9433
	// DoomMarker is the buff consumed when the Doom sigil fires.
	DoomMarker uint32 = 9441
)
