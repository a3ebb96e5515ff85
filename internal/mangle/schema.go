package mangle

// ClosureSchema holds the closure lemmas for the truncation predicate.
// Type terms are flattened into node facts keyed by their printed form;
// grades are numbers, with the top grade materialized as grade_top.
//
// Every derivation of is_trunc goes through because/3 so the rule that
// fired can be reported back.
const ClosureSchema = `
Decl grade(N) bound [/number].
Decl grade_top(N) bound [/number].
Decl grade_succ(N, M) bound [/number, /number].
Decl capability(C) bound [/name].

Decl node(T) bound [/string].
Decl base(T, Name) bound [/string, /string].
Decl base_level(T, N) bound [/string, /number].
Decl trunc_node(T, N, A) bound [/string, /number, /string].
Decl prod(T, A, B) bound [/string, /string, /string].
Decl sum(T, A, B) bound [/string, /string, /string].
Decl arrow(T, A, B) bound [/string, /string, /string].
Decl path(T, A) bound [/string, /string].

Decl hyp(H, T) bound [/string, /string].
Decl target(T) bound [/string].

Decl because(T, N, R) descr [mode("-", "-", "-")].
Decl is_trunc(T, N) descr [mode("-", "-")].
Decl strippable(H, N) descr [mode("-", "-")].
Decl obligation(H, N) descr [mode("-", "-")].

# Levels supplied by the environment.
because(T, N, /env) :- base_level(T, N).

# Every type is truncated at the top grade.
because(T, N, /top) :- node(T), grade_top(N).

# A coarser grade is a weaker predicate.
because(T, M, /monotone) :- is_trunc(T, N), grade(M), N < M.

# Tr(n, A) is n-truncated by fiat, and keeps any finer level A already has.
because(T, N, /axiom) :- trunc_node(T, N, _).
because(T, M, /body) :- trunc_node(T, N, A), is_trunc(A, M), M < N.

because(T, N, /prod) :- prod(T, A, B), is_trunc(A, N), is_trunc(B, N).

# Sums only preserve levels from sets upward.
because(T, N, /sum) :- sum(T, A, B), is_trunc(A, N), is_trunc(B, N), N >= 0.

# Identification types drop one grade.
because(T, N, /path) :- path(T, A), is_trunc(A, M), grade_succ(N, M).

# Function types inherit the codomain's level under function extensionality.
because(T, N, /funext) :- arrow(T, _, B), capability(/funext), is_trunc(B, N).

is_trunc(T, N) :- because(T, N, _).

# A hypothesis Tr(n, A) may be eliminated when the target is n-truncated.
strippable(H, N) :- hyp(H, T), trunc_node(T, N, _), target(G), is_trunc(G, N).
obligation(H, N) :- hyp(H, T), trunc_node(T, N, _), target(G), !is_trunc(G, N).
`
