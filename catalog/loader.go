package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/Konsultn-Engineering/valueset/template"
	"gopkg.in/yaml.v3"
)

// Document field names.
const (
	KeyTableID = "tableId"
	KeyQueries = "queries"
	KeyQuery   = "query"
	KeyColumns = "columns"
)

// LoadFile reads and loads the catalog document at path.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes a YAML catalog document and loads it.
func Parse(data []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return Load(&doc)
}

// Load walks a decoded document and builds the catalog. Table ids keep the
// order of the top-level keys; templates keep their order within a table. A
// table id declared under several keys collects all of their templates at the
// position of its first declaration.
func Load(doc *yaml.Node) (*Catalog, error) {
	root := resolve(doc)
	if root != nil && root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			root = nil
		} else {
			root = resolve(root.Content[0])
		}
	}
	if root == nil || root.Kind == 0 {
		return nil, &FormatError{Msg: "empty document"}
	}
	if root.Kind != yaml.MappingNode {
		return nil, &FormatError{Line: root.Line, Msg: "document must be a mapping"}
	}

	cat := &Catalog{index: make(map[string]int)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		id, templates, err := loadEntry(key, resolve(root.Content[i+1]))
		if err != nil {
			return nil, err
		}
		if at, ok := cat.index[id]; ok {
			cat.tables[at].Templates = append(cat.tables[at].Templates, templates...)
			continue
		}
		cat.index[id] = len(cat.tables)
		cat.tables = append(cat.tables, Table{ID: id, Templates: templates})
	}
	if len(cat.tables) == 0 {
		return nil, &FormatError{Line: root.Line, Msg: "no tables declared"}
	}
	return cat, nil
}

func loadEntry(key string, node *yaml.Node) (string, []Template, error) {
	if node == nil || node.Kind != yaml.SequenceNode || len(node.Content) != 1 {
		return "", nil, &FormatError{Key: key, Line: line(node), Msg: "expected a single-element sequence"}
	}
	body := resolve(node.Content[0])
	if body == nil || body.Kind != yaml.MappingNode {
		return "", nil, &FormatError{Key: key, Line: line(body), Msg: "expected a mapping with tableId and queries"}
	}

	var (
		id      string
		hasID   bool
		queries *yaml.Node
	)
	for i := 0; i+1 < len(body.Content); i += 2 {
		value := resolve(body.Content[i+1])
		switch body.Content[i].Value {
		case KeyTableID:
			if value == nil || value.Kind != yaml.ScalarNode || value.Value == "" {
				return "", nil, &FormatError{Key: key, Line: line(value), Msg: "tableId must be a non-empty scalar"}
			}
			id, hasID = value.Value, true
		case KeyQueries:
			queries = value
		}
	}
	if !hasID {
		return "", nil, &FormatError{Key: key, Line: body.Line, Msg: "missing tableId"}
	}
	if queries == nil || queries.Kind != yaml.SequenceNode || len(queries.Content) == 0 {
		return "", nil, &FormatError{Key: key, Line: body.Line, Msg: fmt.Sprintf("table %s declares no queries", id)}
	}

	templates := make([]Template, 0, len(queries.Content))
	for i, q := range queries.Content {
		tmpl, err := loadTemplate(key, id, i, resolve(q))
		if err != nil {
			return "", nil, err
		}
		templates = append(templates, tmpl)
	}
	return id, templates, nil
}

func loadTemplate(key, id string, index int, node *yaml.Node) (Template, error) {
	if node == nil || node.Kind != yaml.MappingNode {
		return Template{}, &FormatError{Key: key, Line: line(node), Msg: fmt.Sprintf("query %d must be a mapping", index)}
	}

	var (
		text     string
		hasQuery bool
		columns  *yaml.Node
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		value := resolve(node.Content[i+1])
		switch node.Content[i].Value {
		case KeyQuery:
			if value == nil || value.Kind != yaml.ScalarNode {
				return Template{}, &FormatError{Key: key, Line: line(value), Msg: fmt.Sprintf("query %d: query must be a string", index)}
			}
			if value.ShortTag() == "!!null" || strings.TrimSpace(value.Value) == "" {
				return Template{}, &FormatError{Key: key, Line: value.Line, Msg: fmt.Sprintf("query %d: query must not be empty", index)}
			}
			text, hasQuery = value.Value, true
		case KeyColumns:
			columns = value
		}
	}
	if !hasQuery && columns == nil {
		return Template{}, &FormatError{Key: key, Line: node.Line, Msg: fmt.Sprintf("query %d has neither query nor columns", index)}
	}
	if !hasQuery {
		return Template{}, &FormatError{Key: key, Line: node.Line, Msg: fmt.Sprintf("query %d has columns but no query", index)}
	}

	placeholders, err := template.Extract(text)
	if err != nil {
		return Template{}, &TemplateError{TableID: id, Index: index, Err: err}
	}
	groups, err := loadColumns(key, index, columns)
	if err != nil {
		return Template{}, err
	}
	return Template{Text: text, Placeholders: placeholders, Columns: groups}, nil
}

// loadColumns accepts a scalar, a sequence of scalars, or a sequence of
// sequences. Every item is one group.
func loadColumns(key string, index int, node *yaml.Node) ([][]string, error) {
	if node == nil {
		return nil, nil
	}
	bad := &FormatError{Key: key, Line: node.Line, Msg: fmt.Sprintf("query %d: columns must be names or lists of names", index)}
	switch node.Kind {
	case yaml.ScalarNode:
		return [][]string{{node.Value}}, nil
	case yaml.SequenceNode:
	default:
		return nil, bad
	}

	groups := make([][]string, 0, len(node.Content))
	for _, item := range node.Content {
		item = resolve(item)
		switch item.Kind {
		case yaml.ScalarNode:
			groups = append(groups, []string{item.Value})
		case yaml.SequenceNode:
			group := make([]string, 0, len(item.Content))
			for _, name := range item.Content {
				name = resolve(name)
				if name.Kind != yaml.ScalarNode {
					return nil, bad
				}
				group = append(group, name.Value)
			}
			groups = append(groups, group)
		default:
			return nil, bad
		}
	}
	return groups, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func line(n *yaml.Node) int {
	if n == nil {
		return 0
	}
	return n.Line
}
