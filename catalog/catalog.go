// Package catalog holds the ordered set of lookup tables and their query
// templates, built from a YAML configuration document of the form:
//
//	gender_valueset:
//	  - tableId: gender
//	    queries:
//	      - query: select concept_id,concept_name from concepts where concept_id={concept_id}
//	        columns: [id, name]
//	      - query: select concept_id,concept_name from concepts where concept_name={concept_name}
//
// Declaration order is resolution priority. A Catalog is immutable once built
// and may be shared by concurrent readers.
package catalog

// Template is one query template of a table.
type Template struct {
	// Text is the raw query with {name} placeholders.
	Text string
	// Placeholders are derived from Text, one entry per occurrence.
	Placeholders []string
	// Columns are the output label groups used to relabel a returned row.
	Columns [][]string
}

// Labels flattens the column groups in order.
func (t Template) Labels() []string {
	n := 0
	for _, g := range t.Columns {
		n += len(g)
	}
	if n == 0 {
		return nil
	}
	labels := make([]string, 0, n)
	for _, g := range t.Columns {
		labels = append(labels, g...)
	}
	return labels
}

// Table is a lookup table and its templates in declared order.
type Table struct {
	ID        string
	Templates []Template
}

// Catalog is the ordered collection of tables.
type Catalog struct {
	tables []Table
	index  map[string]int
}

// Tables returns the tables in declared order. The slice must not be modified.
func (c *Catalog) Tables() []Table {
	return c.tables
}

// Table returns the table with the given id.
func (c *Catalog) Table(id string) (Table, bool) {
	i, ok := c.index[id]
	if !ok {
		return Table{}, false
	}
	return c.tables[i], true
}

// Has reports whether id is a declared table.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// IDs returns the table ids in declared order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.tables))
	for i, t := range c.tables {
		ids[i] = t.ID
	}
	return ids
}

// Len returns the number of tables.
func (c *Catalog) Len() int {
	return len(c.tables)
}

// TemplateCount returns the number of templates across all tables.
func (c *Catalog) TemplateCount() int {
	n := 0
	for _, t := range c.tables {
		n += len(t.Templates)
	}
	return n
}
