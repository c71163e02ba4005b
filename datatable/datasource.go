package datatable

// DataSource provides read-only access to tabular data.
// All methods should return errors rather than panic.
type DataSource interface {
	// RowCount returns the total number of rows in the data source.
	RowCount() int

	// ColumnCount returns the total number of columns in the data source.
	ColumnCount() int

	// ColumnName returns the name of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnName(col int) (string, error)

	// ColumnType returns the data type of the column at the given index.
	// Returns ErrInvalidColumn if col is out of range.
	ColumnType(col int) (DataType, error)

	// Cell returns the value at the specified row and column.
	// Returns ErrInvalidRow if row is out of range.
	// Returns ErrInvalidColumn if col is out of range.
	Cell(row, col int) (Value, error)

	// Row returns all values for the specified row.
	// Returns ErrInvalidRow if row is out of range.
	Row(row int) ([]Value, error)

	// Metadata returns optional metadata about the data source.
	// Returns an empty Metadata map if no metadata is available.
	Metadata() Metadata
}

// Row is the view of one record that filters evaluate against.
type Row interface {
	// Index is the record's position in the unfiltered input.
	Index() int

	// Value returns the resolved value of a column by id.
	// The boolean is false when the row has no such column.
	Value(columnID string) (Value, bool)

	// ColumnIDs lists the ids of the columns the row carries, in column order.
	ColumnIDs() []string
}

// Filter decides whether a row is part of the filtered result.
type Filter interface {
	// Evaluate reports whether the row passes. An error means the filter could
	// not be evaluated; callers treat it as a non-match.
	Evaluate(row Row) (bool, error)

	// Description is a human readable form of the filter, for status text.
	Description() string
}
