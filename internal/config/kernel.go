package config

// KernelConfig configures the Mangle closure-lemma kernel.
type KernelConfig struct {
	// Largest finite grade materialized as grade facts; ∞ is always present.
	MaxGrade     int    `yaml:"max_grade" env:"TRUNC_MAX_GRADE"`
	FactLimit    int    `yaml:"fact_limit" env:"TRUNC_FACT_LIMIT"`
	QueryTimeout string `yaml:"query_timeout" env:"TRUNC_QUERY_TIMEOUT"`
}
