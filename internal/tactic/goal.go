package tactic

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trunckernel/internal/grade"
	"trunckernel/internal/mangle"
	"trunckernel/internal/term"
)

var errEmptyTarget = errors.New("goal has no target")

// Goal is the on-disk form of a proof obligation.
type Goal struct {
	FunExt     bool                   `yaml:"funext"`
	Env        map[string]grade.Grade `yaml:"env"`
	Hypotheses []Hypothesis           `yaml:"hypotheses"`
	Target     string                 `yaml:"target"`
}

// Hypothesis is a named hypothesis as written in a goal file.
type Hypothesis struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadGoal reads a goal file.
func LoadGoal(path string) (*Goal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read goal: %w", err)
	}
	return ParseGoal(data)
}

// ParseGoal decodes a YAML goal.
func ParseGoal(data []byte) (*Goal, error) {
	var g Goal
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse goal: %w", err)
	}
	return &g, nil
}

// State is a goal with its type terms parsed.
type State struct {
	FunExt bool
	Env    map[string]grade.Grade
	Hyps   []mangle.Hyp
	Target term.Term
}

// Compile parses every type in the goal.
func (g *Goal) Compile() (*State, error) {
	if g.Target == "" {
		return nil, errEmptyTarget
	}
	target, err := term.Parse(g.Target)
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	st := &State{FunExt: g.FunExt, Env: g.Env, Target: target}
	seen := make(map[string]bool, len(g.Hypotheses))
	for i, h := range g.Hypotheses {
		if h.Name == "" {
			return nil, fmt.Errorf("hypothesis %d has no name", i)
		}
		if seen[h.Name] {
			return nil, fmt.Errorf("duplicate hypothesis %q", h.Name)
		}
		seen[h.Name] = true
		t, err := term.Parse(h.Type)
		if err != nil {
			return nil, fmt.Errorf("hypothesis %s: %w", h.Name, err)
		}
		st.Hyps = append(st.Hyps, mangle.Hyp{Name: h.Name, Type: t})
	}
	return st, nil
}

// Problem is the kernel input for the current state.
func (st *State) Problem() mangle.Problem {
	return mangle.Problem{FunExt: st.FunExt, Env: st.Env, Hyps: st.Hyps, Target: st.Target}
}

func (st *State) clone() *State {
	c := *st
	c.Hyps = append([]mangle.Hyp(nil), st.Hyps...)
	return &c
}
