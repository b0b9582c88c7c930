package schema

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed descriptor.yaml
var defaultDescriptor []byte

type ColumnType string

const (
	TypeInteger  ColumnType = "integer"
	TypeFloat    ColumnType = "float"
	TypeString   ColumnType = "string"
	TypeText     ColumnType = "text"
	TypeBoolean  ColumnType = "boolean"
	TypeDate     ColumnType = "date"
	TypeDateTime ColumnType = "datetime"
)

func (t ColumnType) valid() bool {
	switch t {
	case TypeInteger, TypeFloat, TypeString, TypeText, TypeBoolean, TypeDate, TypeDateTime:
		return true
	}
	return false
}

type ColumnSpec struct {
	Name       string     `yaml:"name"`
	Type       ColumnType `yaml:"type"`
	PrimaryKey bool       `yaml:"primary_key"`
	NotNull    bool       `yaml:"not_null"`
}

type Table struct {
	Schema  string
	Name    string
	Columns []ColumnSpec
}

func (t Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

func (t Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Registry answers column descriptions for destination tables.
type Registry interface {
	Describe(table string) ([]ColumnSpec, error)
	Table(table string) (Table, error)
}

type descriptorFile struct {
	Schema string `yaml:"schema"`
	Tables map[string]struct {
		Columns []ColumnSpec `yaml:"columns"`
	} `yaml:"tables"`
}

type YAMLRegistry struct {
	schema string
	tables map[string]Table
}

// Default returns the registry compiled into the binary.
func Default() (*YAMLRegistry, error) {
	return Parse(defaultDescriptor)
}

// Load reads a descriptor override from disk. An empty path yields Default.
func Load(path string) (*YAMLRegistry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema descriptor: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*YAMLRegistry, error) {
	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schema descriptor: %w", err)
	}

	reg := &YAMLRegistry{
		schema: file.Schema,
		tables: make(map[string]Table, len(file.Tables)),
	}

	for name, tbl := range file.Tables {
		if len(tbl.Columns) == 0 {
			return nil, fmt.Errorf("table %s has no columns", name)
		}

		seen := make(map[string]bool, len(tbl.Columns))
		columns := make([]ColumnSpec, 0, len(tbl.Columns))
		hasPK := false
		for _, c := range tbl.Columns {
			c.Name = strings.ToLower(c.Name)
			if c.Name == "" {
				return nil, fmt.Errorf("table %s has a column without a name", name)
			}
			if seen[c.Name] {
				return nil, fmt.Errorf("table %s declares column %s twice", name, c.Name)
			}
			if !c.Type.valid() {
				return nil, fmt.Errorf("table %s column %s: unknown type %q", name, c.Name, c.Type)
			}
			if c.PrimaryKey {
				hasPK = true
				c.NotNull = true
			}
			seen[c.Name] = true
			columns = append(columns, c)
		}
		if !hasPK {
			return nil, fmt.Errorf("table %s has no primary key", name)
		}

		reg.tables[name] = Table{Schema: file.Schema, Name: name, Columns: columns}
	}

	return reg, nil
}

func (r *YAMLRegistry) Schema() string {
	return r.schema
}

func (r *YAMLRegistry) Describe(table string) ([]ColumnSpec, error) {
	t, err := r.Table(table)
	if err != nil {
		return nil, err
	}
	out := make([]ColumnSpec, len(t.Columns))
	copy(out, t.Columns)
	return out, nil
}

func (r *YAMLRegistry) Table(table string) (Table, error) {
	t, ok := r.tables[table]
	if !ok {
		return Table{}, fmt.Errorf("unknown table: %s", table)
	}
	return t, nil
}

func (r *YAMLRegistry) Tables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
