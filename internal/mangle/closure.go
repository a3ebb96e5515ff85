package mangle

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trunckernel/internal/grade"
	"trunckernel/internal/logging"
	"trunckernel/internal/term"
)

// Hyp is a named hypothesis.
type Hyp struct {
	Name string
	Type term.Term
}

// Problem is one round of closure derivation: the hypotheses in scope, the
// target, the levels of base names and whether function extensionality is
// available.
type Problem struct {
	FunExt bool
	Env    map[string]grade.Grade
	Hyps   []Hyp
	Target term.Term
}

// Closure derives truncation levels of terms with the closure lemmas in
// ClosureSchema. It is safe for concurrent use; derivations are serialized.
type Closure struct {
	mu       sync.Mutex
	engine   *Engine
	maxGrade grade.Grade
	cfg      Config
}

// NewClosure loads the closure schema into a fresh engine. Grade facts are
// materialized for [-2, maxGrade], the top grade, and a window around every
// finite grade a problem mentions.
func NewClosure(cfg Config, maxGrade grade.Grade) (*Closure, error) {
	e := NewEngine(cfg)
	if err := e.LoadSchemaString(ClosureSchema); err != nil {
		return nil, fmt.Errorf("load closure schema: %w", err)
	}
	return &Closure{engine: e, maxGrade: maxGrade, cfg: cfg}, nil
}

type nodeInfo struct {
	kind     string
	grade    grade.Grade
	children []string
}

// Derivation is the fixpoint of one Problem.
type Derivation struct {
	nodes      map[string]nodeInfo
	reasons    map[string]map[grade.Grade][]string
	strippable map[string]grade.Grade
	obligation map[string]grade.Grade
	stats      Stats
}

// Derive runs the closure for p. The context bounds the rule evaluation.
func (c *Closure) Derive(ctx context.Context, p Problem) (*Derivation, error) {
	if p.Target == nil {
		return nil, fmt.Errorf("problem has no target")
	}
	if _, ok := ctx.Deadline(); !ok && c.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.QueryTimeout)
		defer cancel()
	}

	d := &Derivation{
		nodes:      make(map[string]nodeInfo),
		reasons:    make(map[string]map[grade.Grade][]string),
		strippable: make(map[string]grade.Grade),
		obligation: make(map[string]grade.Grade),
	}
	var facts []Fact
	seeds := make(map[grade.Grade]bool)
	depth := 0
	for _, h := range p.Hyps {
		id := d.flatten(h.Type, p.Env, &facts, seeds)
		facts = append(facts, Fact{Predicate: "hyp", Args: []interface{}{h.Name, id}})
		depth = max(depth, pathDepth(h.Type))
	}
	target := d.flatten(p.Target, p.Env, &facts, seeds)
	facts = append(facts, Fact{Predicate: "target", Args: []interface{}{target}})
	depth = max(depth, pathDepth(p.Target))
	if p.FunExt {
		facts = append(facts, Fact{Predicate: "capability", Args: []interface{}{"/funext"}})
	}
	facts = append(facts, gradeFacts(c.maxGrade, seeds, depth+1)...)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Rule evaluation itself is not interruptible; the deadline is checked
	// on either side of it.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	c.engine.Clear()
	if err := c.engine.AddFacts(facts); err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}

	if err := d.collect(ctx, c.engine); err != nil {
		return nil, err
	}
	d.stats = c.engine.GetStats()
	logging.Kernel("derived %d is_trunc facts for %d nodes, %d strippable",
		d.stats.PredicateCounts["is_trunc"], len(d.nodes), len(d.strippable))
	return d, nil
}

// gradeFacts materializes the finite grades of [-2, maxGrade] and of
// [g-span, g+span] around each seed, successor pairs between adjacent
// materialized grades, and the infinite grade. A path node moves a level down
// by one, so a span one past the deepest Id nesting keeps every level the
// lemmas can reach from a seed, and every level a query asks about, inside
// the window.
func gradeFacts(maxGrade grade.Grade, seeds map[grade.Grade]bool, span int) []Fact {
	set := make(map[grade.Grade]bool)
	for _, g := range grade.Range(grade.MinusTwo, maxGrade) {
		set[g] = true
	}
	for s := range seeds {
		lo := grade.Max(grade.MinusTwo, s-grade.Grade(span))
		hi := s + grade.Grade(span)
		if hi >= grade.Infinity {
			hi = grade.Infinity - 1
		}
		for g := lo; g <= hi; g++ {
			set[g] = true
		}
	}
	gs := make([]grade.Grade, 0, len(set))
	for g := range set {
		gs = append(gs, g)
	}
	sort.Slice(gs, func(i, j int) bool { return gs[i] < gs[j] })

	var facts []Fact
	inf := int64(grade.Infinity)
	for _, g := range gs {
		facts = append(facts, Fact{Predicate: "grade", Args: []interface{}{int64(g)}})
		if set[g+1] {
			facts = append(facts, Fact{Predicate: "grade_succ", Args: []interface{}{int64(g), int64(g + 1)}})
		}
	}
	facts = append(facts,
		Fact{Predicate: "grade", Args: []interface{}{inf}},
		Fact{Predicate: "grade_top", Args: []interface{}{inf}},
		Fact{Predicate: "grade_succ", Args: []interface{}{inf, inf}},
	)
	return facts
}

// pathDepth is the deepest nesting of Id in t.
func pathDepth(t term.Term) int {
	switch t := t.(type) {
	case term.Tr:
		return pathDepth(t.Body)
	case term.Prod:
		return max(pathDepth(t.Left), pathDepth(t.Right))
	case term.Sum:
		return max(pathDepth(t.Left), pathDepth(t.Right))
	case term.Arrow:
		return max(pathDepth(t.Dom), pathDepth(t.Cod))
	case term.Id:
		return 1 + pathDepth(t.Over)
	}
	return 0
}

// flatten emits node facts for t and its subterms, keyed by printed form.
// Finite grades it mentions are added to seeds.
func (d *Derivation) flatten(t term.Term, env map[string]grade.Grade, facts *[]Fact, seeds map[grade.Grade]bool) string {
	id := term.String(t)
	if _, ok := d.nodes[id]; ok {
		return id
	}
	emit := func(pred string, args ...interface{}) {
		*facts = append(*facts, Fact{Predicate: pred, Args: args})
	}
	raise := func(g grade.Grade) {
		if g.IsFinite() {
			seeds[g] = true
		}
	}

	info := nodeInfo{}
	switch t := t.(type) {
	case term.Base:
		info.kind = "base"
		emit("base", id, t.Name)
		if g, ok := env[t.Name]; ok {
			raise(g)
			emit("base_level", id, int64(g))
		}
	case term.Tr:
		raise(t.Grade)
		body := d.flatten(t.Body, env, facts, seeds)
		info = nodeInfo{kind: "trunc", grade: t.Grade, children: []string{body}}
		emit("trunc_node", id, int64(t.Grade), body)
	case term.Prod:
		l, r := d.flatten(t.Left, env, facts, seeds), d.flatten(t.Right, env, facts, seeds)
		info = nodeInfo{kind: "prod", children: []string{l, r}}
		emit("prod", id, l, r)
	case term.Sum:
		l, r := d.flatten(t.Left, env, facts, seeds), d.flatten(t.Right, env, facts, seeds)
		info = nodeInfo{kind: "sum", children: []string{l, r}}
		emit("sum", id, l, r)
	case term.Arrow:
		l, r := d.flatten(t.Dom, env, facts, seeds), d.flatten(t.Cod, env, facts, seeds)
		info = nodeInfo{kind: "arrow", children: []string{l, r}}
		emit("arrow", id, l, r)
	case term.Id:
		over := d.flatten(t.Over, env, facts, seeds)
		info = nodeInfo{kind: "path", children: []string{over}}
		emit("path", id, over)
	}
	emit("node", id)
	d.nodes[id] = info
	return id
}

func (d *Derivation) collect(ctx context.Context, e *Engine) error {
	because, err := e.GetFacts("because")
	if err != nil {
		return err
	}
	for _, f := range because {
		id, _ := f.Args[0].(string)
		n, _ := f.Args[1].(int64)
		rule, _ := f.Args[2].(string)
		byGrade, ok := d.reasons[id]
		if !ok {
			byGrade = make(map[grade.Grade][]string)
			d.reasons[id] = byGrade
		}
		byGrade[grade.Grade(n)] = append(byGrade[grade.Grade(n)], rule)
	}
	for pred, into := range map[string]map[string]grade.Grade{"strippable": d.strippable, "obligation": d.obligation} {
		result, err := e.Query(ctx, pred+"(H, N)")
		if err != nil {
			return fmt.Errorf("derive: %w", err)
		}
		for _, row := range result.Bindings {
			h, _ := row["H"].(string)
			n, _ := row["N"].(int64)
			into[h] = grade.Grade(n)
		}
	}
	return nil
}

// IsTrunc reports whether is_trunc(t, n) was derived.
func (d *Derivation) IsTrunc(t term.Term, n grade.Grade) bool {
	_, ok := d.reasons[term.String(t)][n]
	return ok
}

// Level is the least grade derived for t. The top grade is always derived
// for terms that were part of the problem.
func (d *Derivation) Level(t term.Term) (grade.Grade, bool) {
	gs := d.grades(term.String(t))
	if len(gs) == 0 {
		return 0, false
	}
	return gs[0], true
}

func (d *Derivation) grades(id string) []grade.Grade {
	var gs []grade.Grade
	for g := range d.reasons[id] {
		gs = append(gs, g)
	}
	sort.Slice(gs, func(i, j int) bool { return gs[i] < gs[j] })
	return gs
}

// Strippable returns the grade at which hypothesis h may be eliminated.
func (d *Derivation) Strippable(h string) (grade.Grade, bool) {
	n, ok := d.strippable[h]
	return n, ok
}

// Obligation returns the grade of an admissibility obligation the target
// cannot discharge for hypothesis h.
func (d *Derivation) Obligation(h string) (grade.Grade, bool) {
	n, ok := d.obligation[h]
	return n, ok
}

// Stats are the fact counts after evaluation.
func (d *Derivation) Stats() Stats { return d.stats }
