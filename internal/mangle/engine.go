// Package mangle wraps the Google Mangle Datalog engine and hosts the
// closure-lemma kernel that derives truncation levels of type terms.
package mangle

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
	"github.com/google/mangle/unionfind"

	"trunckernel/internal/logging"
)

// Config holds engine limits.
type Config struct {
	FactLimit    int
	QueryTimeout time.Duration
}

// DefaultConfig returns the defaults used when no config file is present.
func DefaultConfig() Config {
	return Config{
		FactLimit:    100000,
		QueryTimeout: 5 * time.Second,
	}
}

// Engine is a schema-checked fact store with rule evaluation.
type Engine struct {
	config Config

	mu              sync.RWMutex
	store           factstore.ConcurrentFactStore
	programInfo     *analysis.ProgramInfo
	queryContext    *mengine.QueryContext
	predicateIndex  map[string]ast.PredicateSym
	schemaFragments []parse.SourceUnit
	factCount       int
}

// Fact is one ground atom.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// QueryResult is the result of a Mangle query.
type QueryResult struct {
	Bindings []map[string]interface{}
	Duration time.Duration
}

// Stats contains engine statistics.
type Stats struct {
	TotalFacts      int
	PredicateCounts map[string]int
}

// NewEngine creates an empty engine.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		config:         cfg,
		store:          factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore()),
		predicateIndex: make(map[string]ast.PredicateSym),
	}
}

func (e *Engine) evalLocked() error {
	start := time.Now()
	stats, err := mengine.EvalProgramWithStats(e.programInfo, e.store)
	if err != nil {
		return fmt.Errorf("evaluate rules: %w", err)
	}
	logging.KernelDebug("rules evaluated in %v, %d facts: %+v", time.Since(start), e.store.EstimateFactCount(), stats)
	return nil
}

// LoadSchemaString parses and analyzes a schema fragment. Fragments
// accumulate; the program is re-analyzed as a whole.
func (e *Engine) LoadSchemaString(schema string) error {
	unit, err := parse.Unit(bytes.NewReader([]byte(schema)))
	if err != nil {
		return fmt.Errorf("failed to parse schema: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.schemaFragments = append(e.schemaFragments, unit)
	if err := e.rebuildProgramLocked(); err != nil {
		e.schemaFragments = e.schemaFragments[:len(e.schemaFragments)-1]
		return fmt.Errorf("failed to analyze schema: %w", err)
	}
	return nil
}

func (e *Engine) rebuildProgramLocked() error {
	var clauses []ast.Clause
	var decls []ast.Decl
	for _, fragment := range e.schemaFragments {
		clauses = append(clauses, fragment.Clauses...)
		decls = append(decls, fragment.Decls...)
	}

	programInfo, err := analysis.AnalyzeOneUnit(parse.SourceUnit{Clauses: clauses, Decls: decls}, nil)
	if err != nil {
		return err
	}

	e.programInfo = programInfo
	e.predicateIndex = make(map[string]ast.PredicateSym, len(programInfo.Decls))
	for sym := range programInfo.Decls {
		e.predicateIndex[sym.Symbol] = sym
	}
	e.rebuildQueryContextLocked()
	return nil
}

// rebuildQueryContextLocked points the query context at the current store.
func (e *Engine) rebuildQueryContextLocked() {
	predToDecl := make(map[ast.PredicateSym]*ast.Decl, len(e.programInfo.Decls))
	for sym, decl := range e.programInfo.Decls {
		predToDecl[sym] = decl
	}
	predToRules := make(map[ast.PredicateSym][]ast.Clause)
	for _, clause := range e.programInfo.Rules {
		predToRules[clause.Head.Predicate] = append(predToRules[clause.Head.Predicate], clause)
	}
	e.queryContext = &mengine.QueryContext{
		PredToRules: predToRules,
		PredToDecl:  predToDecl,
		Store:       e.store,
	}
}

// AddFacts inserts a batch and evaluates rules once.
func (e *Engine) AddFacts(facts []Fact) error {
	if len(facts) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.programInfo == nil {
		return fmt.Errorf("no schemas loaded; call LoadSchemaString first")
	}
	for _, fact := range facts {
		if err := e.insertFactLocked(fact); err != nil {
			return err
		}
	}
	return e.evalLocked()
}

func (e *Engine) insertFactLocked(fact Fact) error {
	if e.config.FactLimit > 0 && e.factCount >= e.config.FactLimit {
		return fmt.Errorf("fact limit exceeded: %d", e.config.FactLimit)
	}
	atom, err := e.factToAtomLocked(fact)
	if err != nil {
		return err
	}
	if e.store.Add(atom) {
		e.factCount++
	}
	return nil
}

func (e *Engine) factToAtomLocked(fact Fact) (ast.Atom, error) {
	sym, ok := e.predicateIndex[fact.Predicate]
	if !ok {
		return ast.Atom{}, fmt.Errorf("predicate %s is not declared in schemas", fact.Predicate)
	}
	if len(fact.Args) != sym.Arity {
		return ast.Atom{}, fmt.Errorf("predicate %s expects %d args, got %d", fact.Predicate, sym.Arity, len(fact.Args))
	}

	var decl *ast.Decl
	if e.queryContext != nil {
		decl = e.queryContext.PredToDecl[sym]
	}

	args := make([]ast.BaseTerm, len(fact.Args))
	for i, raw := range fact.Args {
		var expectedType ast.ConstantType = -1
		if decl != nil && len(decl.Bounds) > 0 {
			bounds := decl.Bounds[0].Bounds
			if len(bounds) > i {
				if c, ok := bounds[i].(ast.Constant); ok {
					switch c.Symbol {
					case "/name":
						expectedType = ast.NameType
					case "/string":
						expectedType = ast.StringType
					case "/number":
						expectedType = ast.NumberType
					}
				}
			}
		}
		term, err := convertValueToTypedTerm(raw, expectedType)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("predicate %s arg %d: %w", fact.Predicate, i, err)
		}
		args[i] = term
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

// convertValueToTypedTerm converts a Go value to a Mangle term, enforcing
// the declared type when there is one.
func convertValueToTypedTerm(value interface{}, expectedType ast.ConstantType) (ast.BaseTerm, error) {
	switch expectedType {
	case ast.NameType:
		if s, ok := value.(string); ok {
			if !strings.HasPrefix(s, "/") {
				return ast.Name("/" + s)
			}
			return ast.Name(s)
		}
	case ast.StringType:
		if s, ok := value.(string); ok {
			return ast.String(s), nil
		}
	}

	switch v := value.(type) {
	case ast.BaseTerm:
		return v, nil
	case string:
		if strings.HasPrefix(v, "/") {
			return ast.Name(v)
		}
		return ast.String(v), nil
	case int:
		return ast.Number(int64(v)), nil
	case int64:
		return ast.Number(v), nil
	case bool:
		if v {
			return ast.TrueConstant, nil
		}
		return ast.FalseConstant, nil
	case fmt.Stringer:
		return ast.String(v.String()), nil
	}
	return nil, fmt.Errorf("unsupported fact argument type %T", value)
}

// Query evaluates a single-atom query. The predicate must declare a mode.
func (e *Engine) Query(ctx context.Context, query string) (*QueryResult, error) {
	shape, err := parseQueryShape(query)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	queryContext := e.queryContext
	if queryContext == nil {
		e.mu.RUnlock()
		return nil, fmt.Errorf("no schemas loaded; cannot execute query")
	}
	decl, ok := queryContext.PredToDecl[shape.atom.Predicate]
	if !ok {
		e.mu.RUnlock()
		return nil, fmt.Errorf("predicate %s is not declared", shape.atom.Predicate.Symbol)
	}
	if len(decl.Modes()) == 0 {
		e.mu.RUnlock()
		return nil, fmt.Errorf("predicate %s has no modes declared", shape.atom.Predicate.Symbol)
	}
	mode := decl.Modes()[0]
	e.mu.RUnlock()

	if _, ok := ctx.Deadline(); !ok && e.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	resultChan := make(chan []map[string]interface{}, 1)
	errChan := make(chan error, 1)

	go func() {
		var results []map[string]interface{}
		err := queryContext.EvalQuery(shape.atom, mode, unionfind.New(), func(fact ast.Atom) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			row := make(map[string]interface{}, len(shape.variables))
			for _, binding := range shape.variables {
				if binding.Index < len(fact.Args) {
					row[binding.Name] = convertBaseTermToInterface(fact.Args[binding.Index])
				}
			}
			results = append(results, row)
			return nil
		})
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- results
	}()

	select {
	case results := <-resultChan:
		return &QueryResult{Bindings: results, Duration: time.Since(start)}, nil
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("query execution timed out after %v: %w", time.Since(start), ctx.Err())
	}
}

// GetFacts retrieves all facts for a predicate.
func (e *Engine) GetFacts(predicate string) ([]Fact, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	sym, ok := e.predicateIndex[predicate]
	if !ok {
		return nil, fmt.Errorf("predicate %s is not declared", predicate)
	}

	var results []Fact
	err := e.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		args := make([]interface{}, len(atom.Args))
		for i, arg := range atom.Args {
			args[i] = convertBaseTermToInterface(arg)
		}
		results = append(results, Fact{Predicate: predicate, Args: args})
		return nil
	})
	return results, err
}

// GetStats returns per-predicate fact counts.
func (e *Engine) GetStats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	counts := make(map[string]int)
	for _, sym := range e.store.ListPredicates() {
		n := 0
		_ = e.store.GetFacts(ast.NewQuery(sym), func(ast.Atom) error {
			n++
			return nil
		})
		counts[sym.Symbol] = n
	}
	return Stats{TotalFacts: e.store.EstimateFactCount(), PredicateCounts: counts}
}

// Clear removes all facts and keeps the loaded schemas.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore())
	e.factCount = 0
	if e.programInfo != nil {
		e.rebuildQueryContextLocked()
	}
}

type queryVariable struct {
	Name  string
	Index int
}

type queryShape struct {
	atom      ast.Atom
	variables []queryVariable
}

func parseQueryShape(query string) (*queryShape, error) {
	clean := strings.TrimSpace(query)
	if clean == "" {
		return nil, fmt.Errorf("empty query")
	}
	clean = strings.TrimSpace(strings.TrimPrefix(clean, "?"))
	clean = strings.TrimSpace(strings.TrimSuffix(clean, "."))

	atom, err := parse.Atom(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query %q: %w", query, err)
	}

	variables := make([]queryVariable, 0, len(atom.Args))
	for idx, arg := range atom.Args {
		if variable, ok := arg.(ast.Variable); ok {
			variables = append(variables, queryVariable{Name: variable.Symbol, Index: idx})
		}
	}
	return &queryShape{atom: atom, variables: variables}, nil
}

func convertBaseTermToInterface(term ast.BaseTerm) interface{} {
	switch v := term.(type) {
	case ast.Constant:
		switch v.Type {
		case ast.StringType, ast.NameType, ast.BytesType:
			return v.Symbol
		case ast.NumberType:
			return v.NumValue
		case ast.Float64Type:
			return math.Float64frombits(uint64(v.NumValue))
		}
		return v.String()
	case ast.Variable:
		return v.Symbol
	}
	return fmt.Sprintf("%v", term)
}
