package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuickScoreIdentity(t *testing.T) {
	score := QuickScore(
		"As a member, I want to cancel my reservation",
		"As a member, I want to cancel my reservation",
	)
	assert.Equal(t, 100, score)
}

func TestQuickScoreSymmetry(t *testing.T) {
	a := "As a member, I want to view my reservations"
	b := "As a staff member, I want to see upcoming bookings"

	assert.Equal(t, QuickScore(a, b), QuickScore(b, a))
}

func TestQuickScoreStopWordInsensitive(t *testing.T) {
	// Both narratives reduce to {reservation} once stop words and short
	// tokens are gone.
	score := QuickScore("I want a reservation", "I would like a reservation")
	assert.GreaterOrEqual(t, score, 80)
}

func TestQuickScoreEmptyUnion(t *testing.T) {
	assert.Equal(t, 0, QuickScore("", ""))
	assert.Equal(t, 0, QuickScore("I am a", "he is it"))
}

func TestQuickScoreDisjoint(t *testing.T) {
	score := QuickScore(
		"export quarterly revenue reports",
		"configure notification preferences",
	)
	assert.Equal(t, 0, score)
}

func TestQuickScorePartialOverlap(t *testing.T) {
	score := QuickScore(
		"As a member, I want to cancel my reservation",
		"As a member, I want to cancel a table reservation",
	)
	assert.Greater(t, score, 0)
	assert.Less(t, score, 100)
}
