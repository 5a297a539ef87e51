package rules

// Difficulty scales the bonus terms of a quest reward. It never scales the
// base reward itself: the base already encodes how hard the quest is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyEpic   Difficulty = "epic"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyEpic:
		return true
	}
	return false
}

// XPPolicy holds the bonus rates. The exact constants are product decisions,
// so they live here as parameters instead of inline literals.
type XPPolicy struct {
	StreakThreshold  int     // streak bonus activates at this count
	StreakRate       float64 // fraction of base
	EarlyRate        float64
	FirstTryRate     float64
	DifficultyFactor map[Difficulty]float64
}

func DefaultXPPolicy() XPPolicy {
	return XPPolicy{
		StreakThreshold: 7,
		StreakRate:      0.05,
		EarlyRate:       0.10,
		FirstTryRate:    0.15,
		DifficultyFactor: map[Difficulty]float64{
			DifficultyEasy:   0.75,
			DifficultyMedium: 1.0,
			DifficultyHard:   1.25,
			DifficultyEpic:   1.5,
		},
	}
}

// XPBreakdown itemizes every term contributing to a quest award so the UI can
// show where the points came from. Total is always the sum of the terms.
type XPBreakdown struct {
	Base          int `json:"base"`
	StreakBonus   int `json:"streak_bonus"`
	EarlyBonus    int `json:"early_bonus"`
	FirstTryBonus int `json:"first_try_bonus"`
	Total         int `json:"total"`
}

// CalculateQuestXP computes the final award for a completed quest.
//
// Composition policy (additive): each bonus is a fraction of the base reward,
// scaled by the difficulty factor, rounded half-up to an integer on its own,
// then summed onto the base. Rounding per term keeps every earned bonus point
// visible in the breakdown. Deterministic for identical inputs.
func (p XPPolicy) CalculateQuestXP(baseReward int, difficulty Difficulty, completedEarly bool, streakCount int, firstTry bool) XPBreakdown {
	if baseReward < 0 {
		baseReward = 0
	}
	factor, ok := p.DifficultyFactor[difficulty]
	if !ok {
		factor = 1.0
	}

	b := XPBreakdown{Base: baseReward}
	if streakCount >= p.StreakThreshold {
		b.StreakBonus = roundBonus(baseReward, p.StreakRate*factor)
	}
	if completedEarly {
		b.EarlyBonus = roundBonus(baseReward, p.EarlyRate*factor)
	}
	if firstTry {
		b.FirstTryBonus = roundBonus(baseReward, p.FirstTryRate*factor)
	}
	b.Total = b.Base + b.StreakBonus + b.EarlyBonus + b.FirstTryBonus
	return b
}

// roundBonus rounds half-up so a small positive rate never silently drops to
// zero on typical reward sizes.
func roundBonus(base int, rate float64) int {
	return int(float64(base)*rate + 0.5)
}
