// Package views defines the four dashboard views as a closed set of variants
// and derives each one from a Dataset.
package views

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/nobeldash/internal/domain/aggregate"
	"github.com/okian/nobeldash/internal/domain/model"
	"github.com/okian/nobeldash/internal/domain/types"
)

// Kind identifies a view.
type Kind string

// View kinds, in selector order.
const (
	KindMap      Kind = "map"
	KindYear     Kind = "year"
	KindCategory Kind = "category"
	KindGender   Kind = "gender"
)

// Kinds returns every view kind in selector order.
func Kinds() []Kind {
	return []Kind{KindMap, KindYear, KindCategory, KindGender}
}

// Title is the selector label of k.
func (k Kind) Title() string {
	switch k {
	case KindMap:
		return "Nobel Awards World Map"
	case KindYear:
		return "Laureates by Year"
	case KindCategory:
		return "Awards by Category"
	case KindGender:
		return "Laureates by Gender"
	default:
		return string(k)
	}
}

// ParseKind accepts a slug ("year") or a title ("Laureates by Year").
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds() {
		if strings.EqualFold(s, string(k)) || strings.EqualFold(s, k.Title()) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// View is one of MapView, YearView, GenderView or CategoryView.
type View interface {
	Kind() Kind
	isView()
}

// MapView selects the choropleth of prizes per country.
type MapView struct{}

// YearView selects the laureates of one year.
type YearView struct {
	Year int
}

// GenderView selects laureate counts per year and gender.
type GenderView struct{}

// CategoryView selects laureates of one category within [Start, End].
type CategoryView struct {
	Category string
	Start    int
	End      int
}

func (MapView) Kind() Kind      { return KindMap }
func (YearView) Kind() Kind     { return KindYear }
func (GenderView) Kind() Kind   { return KindGender }
func (CategoryView) Kind() Kind { return KindCategory }

func (MapView) isView()      {}
func (YearView) isView()     {}
func (GenderView) isView()   {}
func (CategoryView) isView() {}

// Result is the output of Dispatch; its concrete type matches the view.
type Result interface {
	Kind() Kind
	isResult()
}

// Marker is a map pin for one country aggregate.
type Marker struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
}

// MapResult holds the per-country counts, their markers and the fill scale.
type MapResult struct {
	Countries []model.CountryCount `json:"countries"`
	Markers   []Marker             `json:"markers"`
	Scale     Scale                `json:"scale"`
}

// YearResult is the laureate table of one year.
type YearResult struct {
	Year  int         `json:"year"`
	Table types.Table `json:"table"`
}

// GenderResult holds counts per (year, gender) over the full year range.
type GenderResult struct {
	Years   types.YearRange     `json:"years"`
	Genders []string            `json:"genders"`
	Counts  []model.GenderCount `json:"counts"`
}

// CategoryResult is the laureate table of one category and year range.
type CategoryResult struct {
	Category string          `json:"category"`
	Range    types.YearRange `json:"range"`
	Table    types.Table     `json:"table"`
}

func (MapResult) Kind() Kind      { return KindMap }
func (YearResult) Kind() Kind     { return KindYear }
func (GenderResult) Kind() Kind   { return KindGender }
func (CategoryResult) Kind() Kind { return KindCategory }

func (MapResult) isResult()      {}
func (YearResult) isResult()     {}
func (GenderResult) isResult()   {}
func (CategoryResult) isResult() {}

// Messages shown in place of results.
const (
	MsgInvalidYearRange = "The end year must be at least one year greater than the start year."
	MsgNoLaureates      = "No laureates found for the selected category and year range."
)

// Dispatch derives the result of v from d.
func Dispatch(d *Dataset, v View) (Result, error) {
	switch v := v.(type) {
	case MapView:
		return Map(d), nil
	case YearView:
		return Year(d, v.Year)
	case GenderView:
		return Gender(d), nil
	case CategoryView:
		return Category(d, v.Category, v.Start, v.End)
	default:
		return nil, ErrUnknownView
	}
}

// Map builds the choropleth data.
func Map(d *Dataset) MapResult {
	markers := make([]Marker, 0, len(d.Countries))
	counts := make([]int, 0, len(d.Countries))
	for _, c := range d.Countries {
		markers = append(markers, Marker{
			Lat:   c.Lat,
			Lon:   c.Lon,
			Popup: fmt.Sprintf("Country: %s Prizes: %d", c.Name, c.Count),
		})
		counts = append(counts, c.Count)
	}
	return MapResult{Countries: d.Countries, Markers: markers, Scale: NewScale(counts)}
}

// Year returns the laureates awarded in year.
func Year(d *Dataset, year int) (YearResult, error) {
	if !d.HasYears || !d.Years.Contains(year) {
		return YearResult{}, fmt.Errorf("%w: %d not in [%d, %d]", ErrYearOutOfRange, year, d.Years.Start, d.Years.End)
	}
	tbl := types.Table{
		Caption: "Laureates in " + strconv.Itoa(year) + ":",
		Columns: []string{"NAME", "SURNAME", "COUNTRY", "GENDER", "CATEGORY"},
		Rows:    [][]string{},
	}
	for _, r := range d.Rows {
		if r.Year != year {
			continue
		}
		tbl.Rows = append(tbl.Rows, []string{r.FirstName, r.Surname, r.BornCountry, r.Gender, r.Category})
	}
	return YearResult{Year: year, Table: tbl}, nil
}

// Gender returns the per-year gender counts.
func Gender(d *Dataset) GenderResult {
	return GenderResult{
		Years:   d.Years,
		Genders: aggregate.GenderLabels(d.Genders),
		Counts:  d.Genders,
	}
}

// Category returns the laureates of category awarded within [start, end].
// end must be strictly greater than start.
func Category(d *Dataset, category string, start, end int) (CategoryResult, error) {
	if end <= start {
		return CategoryResult{}, fmt.Errorf("%w: start %d, end %d", ErrInvalidYearRange, start, end)
	}
	if !d.HasYears || !d.Years.Contains(start) || !d.Years.Contains(end) {
		return CategoryResult{}, fmt.Errorf("%w: [%d, %d] not within [%d, %d]", ErrYearOutOfRange, start, end, d.Years.Start, d.Years.End)
	}
	if !d.HasCategory(category) {
		return CategoryResult{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	span := types.YearRange{Start: start, End: end}
	var matched []model.PrizeRow
	for _, r := range d.Rows {
		if r.Category == category && span.Contains(r.Year) {
			matched = append(matched, r)
		}
	}
	// Grouped by year; rows keep their table order within a year.
	slices.SortStableFunc(matched, func(a, b model.PrizeRow) int { return cmp.Compare(a.Year, b.Year) })

	tbl := types.Table{
		Columns: []string{"YEAR", "NAME", "SURNAME", "COUNTRY", "MOTIVATION"},
		Rows:    make([][]string, 0, len(matched)),
	}
	for _, r := range matched {
		tbl.Rows = append(tbl.Rows, []string{strconv.Itoa(r.Year), r.FirstName, r.Surname, r.BornCountry, r.Motivation})
	}
	if tbl.Empty() {
		tbl.Message = MsgNoLaureates
	} else {
		tbl.Caption = fmt.Sprintf("Laureates in %s from %d to %d:", category, start, end)
	}
	return CategoryResult{Category: category, Range: span, Table: tbl}, nil
}
