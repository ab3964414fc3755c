package dialect

import "strconv"

type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (p Postgres) Name() string {
	return "postgres"
}

func (p Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
