package engine

import (
	"time"
)

// Time allocation bounds
const (
	minMoveTime   = 10 * time.Millisecond
	safetyPercent = 95
)

// TimeManager turns the game clock into a per-move budget.
type TimeManager struct {
	budget    time.Duration // Time for this move, 0 = unlimited
	startTime time.Time     // When the move request started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init allocates time for a new move. msLeft is the time remaining for the
// whole game in milliseconds, negative meaning unlimited. empties is the
// number of empty squares, from which the number of own moves still to play
// is estimated.
func (tm *TimeManager) Init(msLeft int, empties int) {
	tm.startTime = time.Now()

	if msLeft < 0 {
		tm.budget = 0
		return
	}

	timeLeft := time.Duration(msLeft) * time.Millisecond

	// Each side fills roughly half the remaining squares.
	movesLeft := (empties + 1) / 2
	if movesLeft < 1 {
		movesLeft = 1
	}

	budget := timeLeft / time.Duration(movesLeft)

	// Safety margin: never use more than 95% of remaining time
	if safety := timeLeft * safetyPercent / 100; budget > safety {
		budget = safety
	}

	if budget < minMoveTime {
		budget = minMoveTime
	}

	tm.budget = budget
}

// Budget returns the time for this move, 0 when unlimited.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}

// Unlimited reports whether the move has no time limit.
func (tm *TimeManager) Unlimited() bool {
	return tm.budget == 0
}

// Elapsed returns the time elapsed since Init.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// Deadline returns the instant the move must be returned by, and false when
// unlimited.
func (tm *TimeManager) Deadline() (time.Time, bool) {
	if tm.Unlimited() {
		return time.Time{}, false
	}
	return tm.startTime.Add(tm.budget), true
}

// ShouldStop returns true once the budget is spent.
func (tm *TimeManager) ShouldStop() bool {
	return !tm.Unlimited() && tm.Elapsed() >= tm.budget
}
