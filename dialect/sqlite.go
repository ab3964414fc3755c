package dialect

// SQLite binds arguments in order with bare '?' markers.
type SQLite struct{}

func NewSQLiteDialect() Dialect {
	return &SQLite{}
}

func (s SQLite) Name() string {
	return "sqlite"
}

func (s SQLite) Placeholder(n int) string {
	return "?"
}
