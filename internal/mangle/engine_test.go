package mangle

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEngineLoadSchemaString(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if err := engine.LoadSchemaString(`Decl test_fact(X, Y).`); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	if err := engine.LoadSchemaString(`Decl broken(`); err == nil {
		t.Fatal("LoadSchemaString() accepted a malformed schema")
	}
	// The bad fragment must not poison later loads.
	if err := engine.LoadSchemaString(`Decl other(X).`); err != nil {
		t.Fatalf("LoadSchemaString() after failure error = %v", err)
	}
}

func item(name string) []Fact {
	return []Fact{{Predicate: "item", Args: []interface{}{name}}}
}

func TestEngineAddFactsRequiresSchema(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if err := engine.AddFacts(item("apple")); err == nil {
		t.Fatal("AddFacts() without schema should fail")
	}
}

func TestEngineArityAndDeclaration(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if err := engine.LoadSchemaString(`Decl person(Name, Age).`); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	if err := engine.AddFacts([]Fact{{Predicate: "person", Args: []interface{}{"Alice"}}}); err == nil {
		t.Error("AddFacts() with wrong arity should fail")
	}
	if err := engine.AddFacts([]Fact{{Predicate: "robot", Args: []interface{}{"R2"}}}); err == nil {
		t.Error("AddFacts() for undeclared predicate should fail")
	}
}

func TestEngineFactLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FactLimit = 2
	engine := NewEngine(cfg)
	if err := engine.LoadSchemaString(`Decl item(Name).`); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	_ = engine.AddFacts(item("a"))
	_ = engine.AddFacts(item("b"))
	if err := engine.AddFacts(item("c")); err == nil {
		t.Error("AddFacts() past the limit should fail")
	}
}

func TestEngineRulesSurviveClear(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	schema := `
Decl edge(X, Y) bound [/string, /string].
Decl reachable(X, Y).
reachable(X, Y) :- edge(X, Y).
reachable(X, Z) :- edge(X, Y), reachable(Y, Z).
`
	if err := engine.LoadSchemaString(schema); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	for round := 0; round < 2; round++ {
		engine.Clear()
		err := engine.AddFacts([]Fact{
			{Predicate: "edge", Args: []interface{}{"a", "b"}},
			{Predicate: "edge", Args: []interface{}{"b", "c"}},
		})
		if err != nil {
			t.Fatalf("round %d: AddFacts() error = %v", round, err)
		}
		facts, err := engine.GetFacts("reachable")
		if err != nil {
			t.Fatalf("round %d: GetFacts() error = %v", round, err)
		}
		if len(facts) != 3 {
			t.Errorf("round %d: got %d reachable facts, want 3", round, len(facts))
		}
	}
}

func TestEngineQuery(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if err := engine.LoadSchemaString(`Decl person(Name, Age) descr [mode("-", "-")].`); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	err := engine.AddFacts([]Fact{
		{Predicate: "person", Args: []interface{}{"Alice", int64(30)}},
		{Predicate: "person", Args: []interface{}{"Bob", int64(25)}},
	})
	if err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := engine.Query(ctx, "person(X, Y)")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Bindings) != 2 {
		t.Errorf("Query() returned %d bindings, want 2", len(result.Bindings))
	}
	ages := map[string]int64{}
	for _, row := range result.Bindings {
		name, _ := row["X"].(string)
		age, _ := row["Y"].(int64)
		ages[name] = age
	}
	if ages["Alice"] != 30 || ages["Bob"] != 25 {
		t.Errorf("Query() bindings = %v", result.Bindings)
	}

	if _, err := engine.Query(ctx, ""); err == nil {
		t.Error("Query() accepted an empty query")
	}
}

func TestEngineStats(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if err := engine.LoadSchemaString(`Decl item(Name).`); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	_ = engine.AddFacts(item("apple"))
	_ = engine.AddFacts(item("banana"))

	stats := engine.GetStats()
	if stats.PredicateCounts["item"] != 2 {
		t.Errorf("PredicateCounts[item] = %d, want 2", stats.PredicateCounts["item"])
	}
}

func TestEngineQueryDerivedWithNegation(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	schema := `
Decl item(Name) bound [/string].
Decl sold(Name) bound [/string].
Decl in_stock(Name) descr [mode("-")].
in_stock(X) :- item(X), !sold(X).
`
	if err := engine.LoadSchemaString(schema); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	err := engine.AddFacts([]Fact{
		{Predicate: "item", Args: []interface{}{"apple"}},
		{Predicate: "item", Args: []interface{}{"pear"}},
		{Predicate: "sold", Args: []interface{}{"pear"}},
	})
	if err != nil {
		t.Fatalf("AddFacts() error = %v", err)
	}
	result, err := engine.Query(context.Background(), "in_stock(X)")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(result.Bindings) != 1 || result.Bindings[0]["X"] != "apple" {
		t.Errorf("Query() bindings = %v, want only apple", result.Bindings)
	}
}

func TestEngineQueryRequiresMode(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if err := engine.LoadSchemaString(`Decl item(Name).`); err != nil {
		t.Fatalf("LoadSchemaString() error = %v", err)
	}
	if _, err := engine.Query(context.Background(), "item(X)"); err == nil {
		t.Error("Query() on a predicate without modes should fail")
	}
}
