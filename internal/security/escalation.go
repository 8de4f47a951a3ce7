// Package security implements the per-session injection defenses: a
// stateless heuristic classifier and a pure escalation state machine.
package security

import (
	"time"

	"github.com/sandevgo/pitchside/internal/core"
)

// Delay applied before processing, keyed by the state the session lands in.
// Escalation is friction, never a ban: no state rejects a request.
var stateDelays = map[core.SessionState]time.Duration{
	core.StateNormal:    0,
	core.StateWarned:    500 * time.Millisecond,
	core.StateCautious:  1000 * time.Millisecond,
	core.StateEscalated: 2000 * time.Millisecond,
	core.StateProbation: 0,
}

// probationStreak is the number of consecutive clean queries required to
// leave PROBATION for NORMAL.
const probationStreak = 5

// Transition applies one classifier verdict to a session and returns the
// updated session plus the rate-limit delay owed before the turn proceeds.
// Pure: no I/O, no clock reads, no mutation of the input.
func Transition(session core.Session, flagged bool) (core.Session, time.Duration) {
	next := session

	if flagged {
		switch session.State {
		case core.StateNormal:
			next.State = core.StateWarned
			next.ViolationCount = 1
		case core.StateWarned:
			next.State = core.StateCautious
			next.ViolationCount = 2
		case core.StateCautious:
			next.State = core.StateEscalated
			next.ViolationCount = 3
		case core.StateEscalated:
			next.ViolationCount++
		case core.StateProbation:
			next.State = core.StateEscalated
			next.ViolationCount++
			next.CleanStreak = 0
		}
	} else {
		switch session.State {
		case core.StateEscalated:
			next.State = core.StateProbation
			next.CleanStreak = 0
		case core.StateProbation:
			next.CleanStreak++
			if next.CleanStreak >= probationStreak {
				next.State = core.StateNormal
				next.ViolationCount = 0
				next.CleanStreak = 0
			}
		}
		// NORMAL, WARNED, CAUTIOUS hold on clean queries.
	}

	return next, stateDelays[next.State]
}

// DelayFor exposes the delay schedule for a state.
func DelayFor(state core.SessionState) time.Duration {
	return stateDelays[state]
}
