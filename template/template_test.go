package template

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dollar(n int) string { return "$" + strconv.Itoa(n) }

func question(int) string { return "?" }

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "no placeholders",
			text:     "select concept_id from concepts",
			expected: []string{},
		},
		{
			name:     "single placeholder",
			text:     "select concept_id,concept_name from concepts where vocabulary_id='gender' and concept_id={concept_id}",
			expected: []string{"concept_id"},
		},
		{
			name:     "occurrence order",
			text:     "select * from t where b={b} and a={a} and c={c}",
			expected: []string{"b", "a", "c"},
		},
		{
			name:     "duplicates are distinct occurrences",
			text:     "select * from t where x={v} or y={v}",
			expected: []string{"v", "v"},
		},
		{
			name:     "nested brace is part of the name",
			text:     "select {a{b} from t",
			expected: []string{"a{b"},
		},
		{
			name:     "empty name",
			text:     "select {} from t",
			expected: []string{""},
		},
		{
			name:     "stray closing brace is ignored",
			text:     "select '}' , {x} from t",
			expected: []string{"x"},
		},
		{
			name:     "quoted placeholder",
			text:     "select * from t where name='{name}'",
			expected: []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := Extract(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestExtract_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
	}{
		{"unterminated", "select {id", 7},
		{"second unterminated", "select {a} from t where b={b", 26},
		{"only opening brace", "{", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := Extract(tt.text)
			require.Error(t, err)
			assert.Nil(t, names)
			assert.True(t, errors.Is(err, ErrMalformed))

			var mte *MalformedTemplateError
			require.ErrorAs(t, err, &mte)
			assert.Equal(t, tt.offset, mte.Offset)
			assert.Equal(t, tt.text, mte.Text)
		})
	}
}

func TestExtract_PlaceholderInsideLiteral(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
	}{
		{"like pattern", "select * from t where n like '%{name}%'", 31},
		{"prefix in literal", "select * from t where name='x{name}'", 29},
		{"suffix in second literal", "select * from t where a='{a}' and b='{b}x'", 37},
		{"two placeholders in one literal", "select '{a} {b}' from t", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := Extract(tt.text)
			require.Error(t, err)
			assert.Nil(t, names)
			assert.ErrorIs(t, err, ErrMalformed)

			var mte *MalformedTemplateError
			require.ErrorAs(t, err, &mte)
			assert.Equal(t, tt.offset, mte.Offset)
			assert.Contains(t, mte.Error(), "inside a string literal")

			_, err = Rewrite(tt.text, question)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		ph       PlaceholderFunc
		expected string
	}{
		{
			name:     "no placeholders",
			text:     "select 1",
			ph:       dollar,
			expected: "select 1",
		},
		{
			name:     "postgres positional",
			text:     "select * from t where a={a} and b={b}",
			ph:       dollar,
			expected: "select * from t where a=$1 and b=$2",
		},
		{
			name:     "duplicates get their own position",
			text:     "select * from t where x={v} or y={v}",
			ph:       dollar,
			expected: "select * from t where x=$1 or y=$2",
		},
		{
			name:     "question marks",
			text:     "select * from t where a={a} and b={b}",
			ph:       question,
			expected: "select * from t where a=? and b=?",
		},
		{
			name:     "quoted placeholder loses quotes",
			text:     "select * from t where name='{name}' and id={id}",
			ph:       dollar,
			expected: "select * from t where name=$1 and id=$2",
		},
		{
			name:     "escaped quotes before a literal placeholder",
			text:     "select 'it''s', {a} from t where n='{n}'",
			ph:       question,
			expected: "select 'it''s', ? from t where n=?",
		},
		{
			name:     "placeholder at the edges",
			text:     "{a} = {b}",
			ph:       dollar,
			expected: "$1 = $2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Rewrite(tt.text, tt.ph)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestRewrite_Malformed(t *testing.T) {
	_, err := Rewrite("select {id", dollar)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestRewrite_PlaceholderCountMatchesExtract(t *testing.T) {
	text := "select * from t where a={a} and b='{b}' and c={a}"
	names, err := Extract(text)
	require.NoError(t, err)

	calls := 0
	_, err = Rewrite(text, func(n int) string {
		calls++
		assert.Equal(t, calls, n)
		return "?"
	})
	require.NoError(t, err)
	assert.Equal(t, len(names), calls)
}
