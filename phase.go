package main

import (
	"math/rand"
	"time"
)

// crossFade is the fixed blend window after each commit. It does not scale
// with RenderConfig.PhaseDuration.
const crossFade = time.Second

// PhaseState is the scheduler's mutable state.
type PhaseState struct {
	Current    int
	Next       int
	Transition float64 // fraction of the cross-fade elapsed, 0..1
	LastSwitch time.Time
}

// PhaseScheduler decides once per frame which two phases are blended and how
// far through the cross-fade the frame is.
//
// With a single phase there is nothing to fade to: Current and Next stay 0
// and Transition stays 1.
type PhaseScheduler struct {
	state PhaseState
	count int
	rng   *rand.Rand
}

// NewPhaseScheduler starts at phase 0 fading towards phase 1. rng drives the
// choice of the next phase; pass a seeded source for reproducible tests.
func NewPhaseScheduler(count int, rng *rand.Rand, start time.Time) *PhaseScheduler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &PhaseScheduler{
		count: count,
		rng:   rng,
		state: PhaseState{Current: 0, Next: 1, LastSwitch: start},
	}
	if count < 2 {
		s.state.Next = 0
		s.state.Transition = 1
	}
	return s
}

// State returns a copy of the current state.
func (s *PhaseScheduler) State() PhaseState { return s.state }

// Advance moves the state machine to now and reports the phases to blend.
func (s *PhaseScheduler) Advance(now time.Time, cfg RenderConfig) (current, next int, transition float64) {
	if s.count < 2 {
		s.state.Current, s.state.Next, s.state.Transition = 0, 0, 1
		return 0, 0, 1
	}

	if cfg.Mode == ModeManual {
		sel := cfg.ManualPhase
		if sel < 0 {
			sel = 0
		} else if sel >= s.count {
			sel = s.count - 1
		}
		s.state.Current, s.state.Next, s.state.Transition = sel, sel, 1
		return sel, sel, 1
	}

	// Coming back from manual mode leaves Current == Next; start a fresh
	// hold so the first auto cycle still has somewhere to fade to.
	if s.state.Current == s.state.Next {
		s.state.Next = s.pickNext(s.state.Current)
		s.restart(now)
	}

	hold := time.Duration(cfg.PhaseDuration * float64(time.Second))
	if s.elapsed(now) >= hold {
		s.state.Current = s.state.Next
		s.state.Next = s.pickNext(s.state.Current)
		s.restart(now)
		LogDebug("Phase commit: current=%d next=%d", s.state.Current, s.state.Next)
	}

	t := float64(s.elapsed(now)) / float64(crossFade)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	s.state.Transition = t
	return s.state.Current, s.state.Next, t
}

// restart sets LastSwitch to now unless that would move it backwards.
func (s *PhaseScheduler) restart(now time.Time) {
	if now.After(s.state.LastSwitch) {
		s.state.LastSwitch = now
	}
}

func (s *PhaseScheduler) elapsed(now time.Time) time.Duration {
	d := now.Sub(s.state.LastSwitch)
	if d < 0 {
		return 0
	}
	return d
}

// pickNext draws a uniform index other than exclude. Rejection sampling is
// capped at count attempts, then falls back to a draw over the remaining
// indices.
func (s *PhaseScheduler) pickNext(exclude int) int {
	if s.count < 2 {
		return exclude
	}
	for i := 0; i < s.count; i++ {
		if n := s.rng.Intn(s.count); n != exclude {
			return n
		}
	}
	return (exclude + 1 + s.rng.Intn(s.count-1)) % s.count
}
