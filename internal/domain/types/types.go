// Package types contains common types used across the application
package types

// Table is a display-ready projection: ordered column headers and string cells.
// Caption is shown above non-empty tables; Message replaces an empty one.
type Table struct {
	Caption string     `json:"caption,omitempty"`
	Message string     `json:"message,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// YearRange is an inclusive span of years.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether year lies within the range.
func (r YearRange) Contains(year int) bool { return year >= r.Start && year <= r.End }
