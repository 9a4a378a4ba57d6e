package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/okian/nobeldash/internal/domain/types"
	"github.com/okian/nobeldash/internal/domain/views"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Text writes a terminal rendering of any view result.
func Text(w io.Writer, res views.Result) error {
	switch r := res.(type) {
	case views.MapResult:
		tbl := types.Table{Columns: []string{"CODE", "COUNTRY", "LAT", "LON", "PRIZES"}}
		for _, c := range r.Countries {
			tbl.Rows = append(tbl.Rows, []string{
				c.Code, c.Name,
				strconv.FormatFloat(c.Lat, 'f', 4, 64),
				strconv.FormatFloat(c.Lon, 'f', 4, 64),
				strconv.Itoa(c.Count),
			})
		}
		return TextTable(w, tbl)
	case views.YearResult:
		return TextTable(w, r.Table)
	case views.CategoryResult:
		return TextTable(w, r.Table)
	case views.GenderResult:
		tbl := types.Table{Columns: []string{"YEAR", "GENDER", "LAUREATES"}}
		for _, c := range r.Counts {
			tbl.Rows = append(tbl.Rows, []string{strconv.Itoa(c.Year), c.Gender, strconv.Itoa(c.Count)})
		}
		return TextTable(w, tbl)
	default:
		return fmt.Errorf("%w: %T", ErrFormat, res)
	}
}

// TextTable writes the caption or message line followed by a bordered table.
func TextTable(w io.Writer, tbl types.Table) error {
	switch {
	case tbl.Message != "":
		_, err := fmt.Fprintln(w, tbl.Message)
		return err
	case tbl.Caption != "":
		if _, err := fmt.Fprintln(w, tbl.Caption); err != nil {
			return err
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tbl.Columns...).
		Rows(tbl.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}
