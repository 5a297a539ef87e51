package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveThresholdsStrictlyIncreasing(t *testing.T) {
	c := DefaultCurve()
	for l := 1; l <= 50; l++ {
		assert.Less(t, c.XPForLevel(l), c.XPForLevel(l+1), "level %d", l)
	}
}

func TestCurveInverseAtBoundaries(t *testing.T) {
	c := DefaultCurve()
	for l := 1; l <= 30; l++ {
		assert.Equal(t, l, c.LevelFromXP(c.XPForLevel(l)), "LevelFromXP(XPForLevel(%d))", l)
	}
}

func TestLevelFromXPIdempotentBoundary(t *testing.T) {
	c := DefaultCurve()
	for _, x := range []int{0, 1, 99, 100, 101, 299, 300, 599, 600, 12345, 999999} {
		lvl := c.LevelFromXP(x)
		assert.Equal(t, lvl, c.LevelFromXP(c.XPForLevel(lvl)), "x=%d", x)
	}
}

func TestLevelFromXPNonDecreasing(t *testing.T) {
	c := DefaultCurve()
	prev := c.LevelFromXP(0)
	for x := 1; x <= 5000; x += 7 {
		lvl := c.LevelFromXP(x)
		require.GreaterOrEqual(t, lvl, prev, "x=%d", x)
		prev = lvl
	}
}

func TestProgressPercentBounds(t *testing.T) {
	c := DefaultCurve()
	for x := 0; x <= 3000; x += 13 {
		p := c.Progress(x)
		assert.GreaterOrEqual(t, p.Percent, 0, "x=%d", x)
		assert.LessOrEqual(t, p.Percent, 100, "x=%d", x)
		assert.Equal(t, x-c.XPForLevel(p.CurrentLevel), p.XPIntoLevel, "x=%d", x)
	}
}

func TestProgressMidLevel(t *testing.T) {
	c := DefaultCurve()
	// level 2 spans [100, 300); 50 XP into a 200 XP span = 25%
	p := c.Progress(150)
	assert.Equal(t, 2, p.CurrentLevel)
	assert.Equal(t, 50, p.XPIntoLevel)
	assert.Equal(t, 200, p.XPRequiredForNext)
	assert.Equal(t, 25, p.Percent)
}

func TestCalculateQuestXPBaseCase(t *testing.T) {
	p := DefaultXPPolicy()
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyEpic} {
		b := p.CalculateQuestXP(100, d, false, 0, false)
		assert.Equal(t, 100, b.Total, "difficulty %s", d)
		assert.Zero(t, b.StreakBonus)
		assert.Zero(t, b.EarlyBonus)
		assert.Zero(t, b.FirstTryBonus)
	}
}

func TestCalculateQuestXPStreakThreshold(t *testing.T) {
	p := DefaultXPPolicy()

	below := p.CalculateQuestXP(100, DifficultyMedium, false, 6, false)
	assert.Equal(t, 100, below.Total)

	at := p.CalculateQuestXP(100, DifficultyMedium, false, 7, false)
	assert.Greater(t, at.Total, 100)
	assert.Equal(t, 5, at.StreakBonus)
}

func TestCalculateQuestXPAllBonuses(t *testing.T) {
	p := DefaultXPPolicy()
	b := p.CalculateQuestXP(100, DifficultyMedium, true, 10, true)
	assert.Equal(t, 100, b.Base)
	assert.Equal(t, 5, b.StreakBonus)
	assert.Equal(t, 10, b.EarlyBonus)
	assert.Equal(t, 15, b.FirstTryBonus)
	assert.Equal(t, 130, b.Total)
}

func TestCalculateQuestXPDifficultyScalesBonusesOnly(t *testing.T) {
	p := DefaultXPPolicy()
	hard := p.CalculateQuestXP(200, DifficultyHard, true, 0, false)
	// early bonus: 200 * 0.10 * 1.25 = 25
	assert.Equal(t, 25, hard.EarlyBonus)
	assert.Equal(t, 225, hard.Total)
}

func TestCalculateQuestXPDeterministic(t *testing.T) {
	p := DefaultXPPolicy()
	a := p.CalculateQuestXP(137, DifficultyEpic, true, 9, true)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a, p.CalculateQuestXP(137, DifficultyEpic, true, 9, true))
	}
}

func TestCalculateQuestXPTotalIsSumOfBreakdown(t *testing.T) {
	p := DefaultXPPolicy()
	b := p.CalculateQuestXP(73, DifficultyEasy, true, 8, true)
	assert.Equal(t, b.Base+b.StreakBonus+b.EarlyBonus+b.FirstTryBonus, b.Total)
	assert.GreaterOrEqual(t, b.Total, 0)
}
