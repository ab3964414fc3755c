package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Konsultn-Engineering/valueset/cache"
	"github.com/Konsultn-Engineering/valueset/dialect"
	"github.com/Konsultn-Engineering/valueset/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*SqlDatabase, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSqlDatabase(db, nil), mock
}

func TestQueryRow(t *testing.T) {
	tests := []struct {
		name    string
		rows    *sqlmock.Rows
		want    *Row
		wantErr error
	}{
		{
			name: "single row",
			rows: sqlmock.NewRows([]string{"concept_id", "concept_name"}).AddRow(int64(8507), "MALE"),
			want: &Row{Columns: []string{"concept_id", "concept_name"}, Values: []any{int64(8507), "MALE"}},
		},
		{
			name: "no rows",
			rows: sqlmock.NewRows([]string{"concept_id"}),
			want: nil,
		},
		{
			name:    "two rows",
			rows:    sqlmock.NewRows([]string{"concept_id"}).AddRow(int64(1)).AddRow(int64(2)),
			wantErr: ErrMultipleRows,
		},
		{
			name: "bytes become strings",
			rows: sqlmock.NewRows([]string{"name"}).AddRow([]byte("FEMALE")),
			want: &Row{Columns: []string{"name"}, Values: []any{"FEMALE"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectQuery("select x").WillReturnRows(tt.rows)

			row, err := QueryRow(context.Background(), db, "select x")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, row)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, row)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueryRow_QueryError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("select x").WillReturnError(errors.New("relation does not exist"))

	_, err := QueryRow(context.Background(), db, "select x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestRow_Len(t *testing.T) {
	var r *Row
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 2, (&Row{Values: []any{1, 2}}).Len())
}

func TestExecutor_QueryRow(t *testing.T) {
	tests := []struct {
		dialect dialect.Dialect
		sql     string
	}{
		{dialect: dialect.NewPostgresDialect(), sql: "select concept_id from concepts where concept_id=$1 and vocabulary_id=$2"},
		{dialect: dialect.NewMySQLDialect(), sql: "select concept_id from concepts where concept_id=? and vocabulary_id=?"},
		{dialect: dialect.NewSQLiteDialect(), sql: "select concept_id from concepts where concept_id=? and vocabulary_id=?"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			db, mock := newMock(t)

			mock.ExpectQuery(tt.sql).
				WithArgs("8507", "gender").
				WillReturnRows(sqlmock.NewRows([]string{"concept_id"}).AddRow(int64(8507)))

			exec := NewExecutor(db, tt.dialect)
			row, err := exec.QueryRow(context.Background(),
				"select concept_id from concepts where concept_id={id} and vocabulary_id='{vocab}'",
				"8507", "gender")
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.Equal(t, []any{int64(8507)}, row.Values)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestExecutor_ArgumentCount(t *testing.T) {
	db, _ := newMock(t)
	exec := NewExecutor(db, dialect.NewPostgresDialect())

	_, err := exec.QueryRow(context.Background(), "select {a}, {b}", "1")
	var ace *ArgumentCountError
	require.ErrorAs(t, err, &ace)
	assert.Equal(t, 2, ace.Want)
	assert.Equal(t, 1, ace.Got)
}

func TestExecutor_Malformed(t *testing.T) {
	db, _ := newMock(t)
	exec := NewExecutor(db, dialect.NewPostgresDialect())

	_, err := exec.QueryRow(context.Background(), "select {a")
	assert.ErrorIs(t, err, template.ErrMalformed)
}

func TestExecutor_RewriteIsCached(t *testing.T) {
	db, _ := newMock(t)
	qc := cache.NewQueryCache()
	exec := NewExecutor(db, dialect.NewPostgresDialect(), WithQueryCache(qc))

	sql, err := exec.Rewrite("select {a}")
	require.NoError(t, err)
	assert.Equal(t, "select $1", sql)

	cached, ok := qc.GetSQL("postgres", "select {a}")
	require.True(t, ok)
	assert.Equal(t, "select $1", cached.SQL)
}

func TestExecutor_QueryTimeout(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("select 1").
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow(int64(1)))

	exec := NewExecutor(db, dialect.NewSQLiteDialect(), WithQueryTimeout(10*time.Millisecond))
	_, err := exec.QueryRow(context.Background(), "select 1")
	require.Error(t, err)
}

func TestSqlDatabase_StatementCache(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	stmts, err := cache.NewStatementCache(8)
	require.NoError(t, err)

	prep := mock.ExpectPrepare("select name from t where id=?")
	prep.ExpectQuery().WithArgs("1").WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a"))
	prep.ExpectQuery().WithArgs("2").WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("b"))

	sdb := NewSqlDatabase(db, stmts)
	ctx := context.Background()

	row, err := QueryRow(ctx, sdb, "select name from t where id=?", "1")
	require.NoError(t, err)
	assert.Equal(t, []any{"a"}, row.Values)

	row, err = QueryRow(ctx, sdb, "select name from t where id=?", "2")
	require.NoError(t, err)
	assert.Equal(t, []any{"b"}, row.Values)

	assert.Equal(t, 1, stmts.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}
