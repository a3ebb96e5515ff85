// Package tactic implements the hypothesis stripper: a work-list that
// eliminates truncated hypotheses Tr(n, A) into their bodies whenever the
// goal's target is known to be n-truncated.
package tactic

import (
	"context"
	"errors"
	"fmt"

	"trunckernel/internal/grade"
	"trunckernel/internal/logging"
	"trunckernel/internal/mangle"
	"trunckernel/internal/space"
	"trunckernel/internal/term"
	"trunckernel/internal/trunc"
)

var (
	// ErrNoProgress is returned when no hypothesis could be stripped.
	ErrNoProgress = errors.New("no truncated hypothesis could be stripped")
	// ErrRoundLimit is returned when candidates remain after max_rounds.
	ErrRoundLimit = errors.New("round limit reached")
)

// Step records one elimination.
type Step struct {
	Round    int
	Hyp      string
	Grade    grade.Grade
	From     string
	To       string
	Modelled bool
}

// Rejection records a candidate whose elimination would leave a second
// subgoal.
type Rejection struct {
	Round  int
	Hyp    string
	Grade  grade.Grade
	Reason string
}

// Result is the cumulative effect of a Strip call.
type Result struct {
	Steps    []Step
	Rejected []Rejection
	Rounds   int
	Final    *State
}

// Stripped is the number of eliminations performed.
func (r *Result) Stripped() int { return len(r.Steps) }

// Stripper eliminates truncated hypotheses using the closure kernel.
type Stripper struct {
	closure   *mangle.Closure
	maxRounds int
	model     map[string]*space.Space
}

// NewStripper creates a stripper over closure. maxRounds below one means a
// single round.
func NewStripper(closure *mangle.Closure, maxRounds int) *Stripper {
	if maxRounds < 1 {
		maxRounds = 1
	}
	return &Stripper{closure: closure, maxRounds: maxRounds}
}

// WithModel makes the stripper replay every accepted step in the finite
// model when both the hypothesis body and the target evaluate in env.
func (s *Stripper) WithModel(env map[string]*space.Space) *Stripper {
	c := *s
	c.model = env
	return &c
}

// Strip runs the work-list until no candidate remains. The goal is not
// modified; the rewritten state is in Result.Final.
func (s *Stripper) Strip(ctx context.Context, goal *State) (*Result, error) {
	st := goal.clone()
	res := &Result{Final: st}
	rejected := make(map[string]bool)
	log := logging.Get(logging.CategoryTactic)

	for {
		d, err := s.closure.Derive(ctx, st.Problem())
		if err != nil {
			return res, fmt.Errorf("round %d: %w", res.Rounds+1, err)
		}

		var candidates []int
		for i, h := range st.Hyps {
			if _, ok := h.Type.(term.Tr); !ok {
				continue
			}
			if n, ok := d.Obligation(h.Name); ok {
				// Eliminating here needs the target at n, which is a
				// second goal the kernel cannot close.
				if key := h.Name + "@" + n.String(); !rejected[key] {
					rejected[key] = true
					res.Rejected = append(res.Rejected, Rejection{
						Round: res.Rounds + 1, Hyp: h.Name, Grade: n,
						Reason: fmt.Sprintf("target %s is not known to be %s-truncated", st.Target, n),
					})
				}
				continue
			}
			if n, ok := d.Strippable(h.Name); ok && !rejected[h.Name+"@"+n.String()] {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			break
		}
		if res.Rounds == s.maxRounds {
			return res, fmt.Errorf("%w: %d rounds, %d candidates left", ErrRoundLimit, s.maxRounds, len(candidates))
		}
		res.Rounds++

		for _, i := range candidates {
			h := st.Hyps[i]
			tr := h.Type.(term.Tr)
			modelled, err := s.replay(tr, st.Target)
			if err != nil {
				res.Rejected = append(res.Rejected, Rejection{
					Round: res.Rounds, Hyp: h.Name, Grade: tr.Grade, Reason: err.Error(),
				})
				rejected[h.Name+"@"+tr.Grade.String()] = true
				continue
			}
			st.Hyps[i] = mangle.Hyp{Name: h.Name, Type: tr.Body}
			res.Steps = append(res.Steps, Step{
				Round: res.Rounds, Hyp: h.Name, Grade: tr.Grade,
				From: term.String(tr), To: term.String(tr.Body), Modelled: modelled,
			})
			log.Debug("round %d: stripped %s : %s", res.Rounds, h.Name, tr)
		}
	}

	if res.Stripped() == 0 {
		return res, fmt.Errorf("%w (%d hypotheses, %d rejected)", ErrNoProgress, len(st.Hyps), len(res.Rejected))
	}
	logging.Tactic("stripped %d hypotheses in %d rounds", res.Stripped(), res.Rounds)
	return res, nil
}

// replay runs the elimination for h : Tr(n, A) in the finite model. The
// target, witnessed at its own level, must admit the constant motive over
// Tr(n, A); the recursor built from it must then compute on every |a|.
func (s *Stripper) replay(tr term.Tr, target term.Term) (bool, error) {
	if s.model == nil {
		return false, nil
	}
	body, err := term.Eval(tr.Body, s.model)
	if err != nil {
		return false, nil
	}
	goal, err := term.Eval(target, s.model)
	if err != nil {
		return false, nil
	}
	w, err := space.CheckTrunc(goal, goal.Level())
	if err != nil {
		return true, fmt.Errorf("model: %w", err)
	}
	t := trunc.Collapse(tr.Grade, body)
	if body.Inhabited() && !goal.Inhabited() {
		// No handler A -> X exists; admissibility is all there is to check.
		if _, err := trunc.Constant(t, w); err != nil {
			return true, fmt.Errorf("model: %w", err)
		}
		return true, nil
	}

	// Send each component of A to a component of X. Components of the
	// carrier never merge two components of A at grades >= 0, and below
	// that X has at most one component.
	f := func(a string) string {
		return goal.Representative(body.ComponentOf(a) % goal.NumComponents())
	}
	rec, err := trunc.Reduce(t, w, f)
	if err != nil {
		return true, fmt.Errorf("model: %w", err)
	}
	for _, a := range body.Points() {
		x, err := t.Intro(a)
		if err != nil {
			return true, fmt.Errorf("model: %w", err)
		}
		if v, err := rec.Apply(x.Label()); err != nil || v != f(a) {
			return true, fmt.Errorf("model: eliminator does not compute on %s", x)
		}
	}
	logging.TacticDebug("replayed %s into %s through %s", tr, target, rec.Name())
	return true, nil
}
