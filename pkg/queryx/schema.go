package queryx

// Kind says how raw criteria values are converted for a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
)

// Column describes a field callers may filter or order on.
type Column struct {
	// Expr is the SQL expression for the field, usually the column name.
	// Virtual fields may use any expression over the row.
	Expr string

	Kind Kind

	// Enum restricts accepted values when non-empty.
	Enum []string

	// Meta names a key in the schema's meta relation. The filter is then
	// applied to that key's value rather than to a column of the row.
	Meta string

	// Sortable allows the field in order_by.
	Sortable bool
}

// MetaRelation describes the child key/value table of an entity.
type MetaRelation struct {
	Table       string
	OwnerColumn string
	KeyColumn   string
	ValueColumn string
}

// Schema is the set of fields an entity exposes to criteria.
type Schema struct {
	Table string

	// PrimaryKey is the column meta filters join on.
	PrimaryKey string

	Fields map[string]Column

	// DefaultOrder is the field used when order_by is absent; it is
	// always sorted descending.
	DefaultOrder string

	// MaxLimit caps limit on list queries. Zero means DefaultMaxLimit.
	MaxLimit int

	Meta *MetaRelation
}

// DefaultMaxLimit is the page size cap when a schema does not set one.
const DefaultMaxLimit = 200

func (s *Schema) maxLimit() int {
	if s.MaxLimit > 0 {
		return s.MaxLimit
	}
	return DefaultMaxLimit
}

func (s *Schema) primaryKey() string {
	if s.PrimaryKey != "" {
		return s.PrimaryKey
	}
	return "id"
}
