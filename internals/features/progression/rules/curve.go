package rules

// LevelCurve maps total XP to levels. XPForLevel and LevelFromXP must stay
// exact inverses at the boundaries, so both derive from the same step value.
type LevelCurve struct {
	// Step is the XP cost of going from level 1 to level 2; every next level
	// costs one step more than the previous one.
	Step int
}

func DefaultCurve() LevelCurve {
	return LevelCurve{Step: 100}
}

// XPForLevel returns the cumulative XP threshold at which level starts.
// Level 1 starts at 0; level L requires step*(L-1)*L/2 total XP, so the
// increments are step, 2*step, 3*step, ... (strictly increasing).
func (c LevelCurve) XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return c.Step * (level - 1) * level / 2
}

// LevelFromXP returns the largest level whose threshold is <= totalXP.
func (c LevelCurve) LevelFromXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	level := 1
	for c.XPForLevel(level+1) <= totalXP {
		level++
	}
	return level
}

type LevelProgress struct {
	CurrentLevel       int `json:"current_level"`
	XPIntoLevel        int `json:"xp_into_level"`
	XPRequiredForNext  int `json:"xp_required_for_next_level"`
	Percent            int `json:"percent"`
}

// Progress breaks totalXP down into position within the current level.
// Percent is rounded and clamped to [0,100].
func (c LevelCurve) Progress(totalXP int) LevelProgress {
	if totalXP < 0 {
		totalXP = 0
	}
	level := c.LevelFromXP(totalXP)
	into := totalXP - c.XPForLevel(level)
	required := c.XPForLevel(level+1) - c.XPForLevel(level)

	percent := 0
	if required > 0 {
		percent = (into*100 + required/2) / required
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return LevelProgress{
		CurrentLevel:      level,
		XPIntoLevel:       into,
		XPRequiredForNext: required,
		Percent:           percent,
	}
}
