package playback

import (
	"time"

	"chords/pkg/key"
)

// Previous is the builder's memory of the press preceding the current one.
// The zero value means there was no previous press.
type Previous struct {
	code key.Code
	held bool
	ok   bool
}

// After returns the accumulator describing p as the previous press.
func After(p key.Press) Previous {
	_, held := p.Hold()
	return Previous{code: p.Code(), held: held, ok: true}
}

// Code returns the previous press's key, if there was one.
func (p Previous) Code() (key.Code, bool) { return p.code, p.ok }

// Deferred is a release scheduled to run after the immediate batch.
type Deferred struct {
	Code   key.Code
	Hold   time.Duration
	Record key.Record
}

// Step is the builder output for a single press.
type Step struct {
	// Records go into the immediate batch in order.
	Records []key.Record
	// Deferred is set when the press has a hold.
	Deferred *Deferred
	// Next is the accumulator for the following press.
	Next Previous
}

// Build produces the records for p given the press before it.
//
// A release of the previous key is interposed before the down when both
// presses share a key and the previous one was released in the immediate
// batch. Some input drivers drop a second consecutive down for the same key
// when no up was seen in between. A held previous press is skipped: its
// release is still pending and an early up would cut the hold short.
func Build(p key.Press, prev Previous) Step {
	code := p.Code()
	step := Step{Next: After(p)}

	if prev.ok && !prev.held && prev.code == code {
		step.Records = append(step.Records, key.Up(code))
	}
	step.Records = append(step.Records, key.Down(code))

	if d, held := p.Hold(); held {
		step.Deferred = &Deferred{Code: code, Hold: d, Record: key.Up(code)}
	} else {
		step.Records = append(step.Records, key.Up(code))
	}
	return step
}

// Plan is the full set of events for a chord.
type Plan struct {
	Immediate []key.Record
	Deferred  []Deferred
}

// Empty reports whether the plan transmits nothing.
func (p Plan) Empty() bool {
	return len(p.Immediate) == 0 && len(p.Deferred) == 0
}

// NewPlan walks presses once in order, carrying the previous key forward.
func NewPlan(presses []key.Press) Plan {
	var (
		plan Plan
		prev Previous
	)
	for _, p := range presses {
		step := Build(p, prev)
		plan.Immediate = append(plan.Immediate, step.Records...)
		if step.Deferred != nil {
			plan.Deferred = append(plan.Deferred, *step.Deferred)
		}
		prev = step.Next
	}
	return plan
}
