package mangle

import (
	"fmt"
	"strings"

	"trunckernel/internal/grade"
	"trunckernel/internal/term"
)

// Proof is a derivation tree for one is_trunc fact.
type Proof struct {
	Term     string
	Grade    grade.Grade
	Rule     string
	Premises []*Proof
}

// Structural rules are preferred over monotonicity so that the tree
// bottoms out in environment levels and axioms.
var rulePreference = []string{"/env", "/axiom", "/prod", "/sum", "/path", "/funext", "/body", "/top", "/monotone"}

// Explain rebuilds a derivation of is_trunc(t, n) from the recorded rule
// names. It returns nil when the fact was not derived.
func (d *Derivation) Explain(t term.Term, n grade.Grade) *Proof {
	return d.explain(term.String(t), n)
}

func (d *Derivation) explain(id string, n grade.Grade) *Proof {
	rules, ok := d.reasons[id][n]
	if !ok {
		return nil
	}
	rule := pickRule(rules)
	p := &Proof{Term: id, Grade: n, Rule: rule}
	info := d.nodes[id]

	premise := func(child string, g grade.Grade) {
		if sub := d.explain(child, g); sub != nil {
			p.Premises = append(p.Premises, sub)
		}
	}
	switch rule {
	case "/monotone":
		for _, m := range d.grades(id) {
			if m >= n {
				break
			}
			if pickRule(d.reasons[id][m]) != "/monotone" {
				premise(id, m)
				break
			}
		}
	case "/body":
		premise(info.children[0], n)
	case "/prod", "/sum":
		premise(info.children[0], n)
		premise(info.children[1], n)
	case "/path":
		premise(info.children[0], n.Succ())
	case "/funext":
		premise(info.children[1], n)
	}
	return p
}

func pickRule(rules []string) string {
	for _, want := range rulePreference {
		for _, r := range rules {
			if r == want {
				return r
			}
		}
	}
	if len(rules) > 0 {
		return rules[0]
	}
	return ""
}

// Render draws the tree.
func (p *Proof) Render() string {
	var sb strings.Builder
	renderProof(&sb, p, "", true)
	return sb.String()
}

func renderProof(sb *strings.Builder, p *Proof, prefix string, isLast bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	sb.WriteString(fmt.Sprintf("%s%sis_trunc(%s, %s) [%s]\n", prefix, connector, p.Term, p.Grade, strings.TrimPrefix(p.Rule, "/")))

	childPrefix := prefix
	if isLast {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}
	for i, child := range p.Premises {
		renderProof(sb, child, childPrefix, i == len(p.Premises)-1)
	}
}
