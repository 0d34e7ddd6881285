package classify

import (
	"go.uber.org/zap"

	"gw2-resim/internal/gamedata"
)

const strikeTolerance = 5

// searingFissureCoefficient tells the first strike of Searing Fissure from a
// follow-up pulse by the burning it applies alongside: three long burns for
// the first strike, one short burn per pulse.
func (p *pass) searingFissureCoefficient(i int) (float64, error) {
	lo, hi := window(p.records, i, p.cfg.Window)
	first, additional := 0, 0
	for j := lo; j < hi; j++ {
		rec := p.records[j]
		if !rec.IsBuffApply() || rec.SrcAgent != p.player.Address || rec.SkillID != gamedata.Burning {
			continue
		}
		base, err := baseDuration(p.char, rec.SkillID, int64(rec.Value), logTime(rec.Time))
		if err != nil {
			return 0, err
		}
		ms := base.Milliseconds()
		switch {
		case abs(ms-gamedata.SearingFissureFirstStrikeBurning) < strikeTolerance:
			first++
		case abs(ms-gamedata.SearingFissureAdditionalStrikeBurning) < strikeTolerance:
			additional++
		}
	}
	switch {
	case first == 3 && additional == 0:
		return gamedata.SearingFissureFirstStrikeMultiplier, nil
	case first == 0 && additional == 1:
		return gamedata.SearingFissureAdditionalStrikeMultiplier, nil
	case first >= 3:
		p.log.Warn("ambiguous searing fissure strike, guessing first strike",
			zap.Int64("time_ms", p.records[i].Time),
			zap.Int("first_burns", first),
			zap.Int("additional_burns", additional),
		)
		return gamedata.SearingFissureFirstStrikeMultiplier, nil
	default:
		p.log.Warn("ambiguous searing fissure strike, guessing follow-up strike",
			zap.Int64("time_ms", p.records[i].Time),
			zap.Int("first_burns", first),
			zap.Int("additional_burns", additional),
		)
		return gamedata.SearingFissureAdditionalStrikeMultiplier, nil
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
