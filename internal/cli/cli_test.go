package cli

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/Konsultn-Engineering/valueset/binding"
	"github.com/Konsultn-Engineering/valueset/catalog"
	_ "github.com/Konsultn-Engineering/valueset/providers/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const queries = `
gender_valueset:
  - tableId: gender
    queries:
      - query: select concept_id, concept_name from concepts where vocabulary_id='gender' and concept_id={concept_id}
      - query: select concept_id, concept_name from concepts where vocabulary_id='gender' and concept_name={concept_name}
        columns: [id, name]
race_valueset:
  - tableId: race
    queries:
      - query: select concept_id from concepts where vocabulary_id='race' and concept_name={concept_name}
`

// setup writes a sqlite database, a catalog and a config file into a temp
// dir and returns the config path.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, "vocab.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`create table concepts (concept_id integer, concept_name text, vocabulary_id text);
insert into concepts values (8507, 'MALE', 'gender'), (8532, 'FEMALE', 'gender'), (8527, 'White', 'race');`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	catPath := filepath.Join(dir, "queries.yaml")
	require.NoError(t, os.WriteFile(catPath, []byte(queries), 0o600))

	cfgPath := filepath.Join(dir, "valueset.yaml")
	cfg := "catalog: " + catPath + "\ndriver: sqlite\ndatabase:\n  database: " + dbPath + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "valueset v"+Version)
}

func TestLookupCommand(t *testing.T) {
	cfgPath := setup(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{
			name: "by id",
			args: []string{"concept_id=8507"},
			want: `{"concept_id":"8507","concept_name":"MALE"}`,
		},
		{
			name: "falls through to name with labels",
			args: []string{"concept_id=1", "concept_name=FEMALE"},
			want: `{"id":"8532","name":"FEMALE"}`,
		},
		{
			name: "restricted table",
			args: []string{"--table", "race", "concept_name=White"},
			want: `{"concept_id":"8527"}`,
		},
		{
			name:    "not found",
			args:    []string{"concept_name=nobody"},
			want:    `{}`,
			wantErr: ErrNotFound,
		},
		{
			name:    "no parameters",
			args:    nil,
			want:    `{}`,
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"--config", cfgPath, "lookup"}, tt.args...)...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.JSONEq(t, tt.want, out)
		})
	}
}

func TestLookupCommand_Errors(t *testing.T) {
	cfgPath := setup(t)

	_, err := run(t, "--config", cfgPath, "lookup", "novalue")
	assert.ErrorContains(t, err, "want name=value")

	_, err = run(t, "--config", cfgPath, "lookup", "--table", "nope", "concept_id=1")
	assert.ErrorContains(t, err, `unknown table "nope"`)

	_, err = run(t, "--config", cfgPath, "--driver", "oracle", "lookup", "concept_id=1")
	assert.ErrorContains(t, err, `unknown driver "oracle"`)
}

func TestCatalogCommand(t *testing.T) {
	cfgPath := setup(t)
	catPath := filepath.Join(filepath.Dir(cfgPath), "queries.yaml")

	out, err := run(t, "catalog", catPath)
	require.NoError(t, err)
	assert.Contains(t, out, "gender")
	assert.Contains(t, out, "concept_name")
	assert.Contains(t, out, "2 tables, 3 templates")

	out, err = run(t, "--config", cfgPath, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "race")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("x:\n  - queries: []\n"), 0o600))
	_, err = run(t, "catalog", bad)
	assert.ErrorIs(t, err, catalog.ErrFormat)
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"a=1", "b=", "a=2", "c=x=y"})
	require.NoError(t, err)
	assert.Equal(t, binding.Params{"a": "1", "b": "", "c": "x=y"}, params)

	_, err = parseParams([]string{"=1"})
	assert.Error(t, err)
}
