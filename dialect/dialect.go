package dialect

// Dialect describes how a database spells bind parameters.
type Dialect interface {
	Name() string
	// Placeholder returns the bind parameter for the n-th (1-based) argument.
	Placeholder(n int) string
}
