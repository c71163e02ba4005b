package datatable

import "errors"

// Common errors returned by the datatable package and the view engine.
var (
	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrInvalidFilter is returned when a filter expression is invalid.
	ErrInvalidFilter = errors.New("invalid filter expression")

	// ErrNoDataSource is returned when a required data source is nil.
	ErrNoDataSource = errors.New("data source is nil")

	// ErrEmptyData is returned when data is empty where it shouldn't be.
	ErrEmptyData = errors.New("data is empty")

	// ErrColumnNotFound is returned when a column id is not found.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateColumn is returned when two columns share an id
	// or a column uses the reserved selection id.
	ErrDuplicateColumn = errors.New("duplicate column id")

	// ErrColumnNotSortable is returned when trying to sort by a column with sorting disabled.
	ErrColumnNotSortable = errors.New("column is not sortable")

	// ErrColumnNotFilterable is returned when setting a filter on a column with filtering disabled.
	ErrColumnNotFilterable = errors.New("column is not filterable")

	// ErrColumnNotHideable is returned when toggling a column that must stay visible.
	ErrColumnNotHideable = errors.New("column cannot be hidden")

	// ErrInvalidPageSize is returned when a page size is not one of the configured options.
	ErrInvalidPageSize = errors.New("invalid page size")

	// ErrExportFailed is returned when export operation fails.
	ErrExportFailed = errors.New("export failed")

	// ErrScriptCompile is returned when a filter script cannot be compiled.
	ErrScriptCompile = errors.New("filter script compile failed")
)
