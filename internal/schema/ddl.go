package schema

import (
	"fmt"
	"strings"
)

// Table is an ordered set of column descriptors plus key metadata,
// rendered to a single CREATE TABLE statement.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

// ForeignKey references a column in another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// DDL renders the CREATE TABLE statement. A single-column primary key is
// declared inline; a composite key gets a table-level constraint.
func (t Table) DDL() string {
	var defs []string
	for _, c := range t.Columns {
		def := fmt.Sprintf("  %s %s", c.Name, c.SQLType())
		if len(t.PrimaryKey) == 1 && t.PrimaryKey[0] == c.Name {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
	}

	if len(t.PrimaryKey) > 1 {
		defs = append(defs, fmt.Sprintf("  PRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		defs = append(defs, fmt.Sprintf("  FOREIGN KEY (%s) REFERENCES %s(%s)", fk.Column, fk.RefTable, fk.RefColumn))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", t.Name, strings.Join(defs, ",\n"))
}
