package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalsAdd(t *testing.T) {
	var totals Totals
	totals.Add(DifficultyEasy, 3)
	totals.Add(DifficultyMedium, 2)
	totals.Add(DifficultyHard, 1)
	totals.Add(Difficulty("all"), 100)

	assert.Equal(t, Totals{Easy: 3, Medium: 2, Hard: 1, Total: 6}, totals)
}

func TestParseDifficulty(t *testing.T) {
	d, ok := ParseDifficulty("MEDIUM")
	assert.True(t, ok)
	assert.Equal(t, DifficultyMedium, d)

	_, ok = ParseDifficulty("All")
	assert.False(t, ok)
}
