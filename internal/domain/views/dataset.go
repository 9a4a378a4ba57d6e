package views

import (
	"github.com/okian/nobeldash/internal/domain/aggregate"
	"github.com/okian/nobeldash/internal/domain/model"
	"github.com/okian/nobeldash/internal/domain/normalize"
	"github.com/okian/nobeldash/internal/domain/types"
)

// Dataset is everything the views read, derived once per load and never mutated.
type Dataset struct {
	Laureates  []model.Laureate
	Rows       []model.PrizeRow
	Countries  []model.CountryCount
	Genders    []model.GenderCount
	Years      types.YearRange
	HasYears   bool
	Categories []string
	Pairing    normalize.Mode
}

// Build normalizes laureates and precomputes the aggregates.
func Build(laureates []model.Laureate, n *normalize.Normalizer) (*Dataset, error) {
	if n == nil {
		n = normalize.New()
	}
	rows, err := n.Normalize(laureates)
	if err != nil {
		return nil, err
	}
	years, ok := aggregate.YearBounds(rows)
	return &Dataset{
		Laureates:  laureates,
		Rows:       rows,
		Countries:  aggregate.Countries(laureates),
		Genders:    aggregate.Genders(rows),
		Years:      years,
		HasYears:   ok,
		Categories: aggregate.Categories(rows),
		Pairing:    n.Mode(),
	}, nil
}

// HasCategory reports whether category occurs in the data.
func (d *Dataset) HasCategory(category string) bool {
	for _, c := range d.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Controls describes the bounds of every user control.
type Controls struct {
	Views         []Info          `json:"views"`
	Years         types.YearRange `json:"years"`
	Categories    []string        `json:"categories"`
	DefaultYear   int             `json:"default_year"`
	DefaultWindow types.YearRange `json:"default_window"`
}

// Info names a view for selectors.
type Info struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
}

// Controls returns the selector options and slider bounds for d.
func (d *Dataset) Controls() Controls {
	infos := make([]Info, 0, len(Kinds()))
	for _, k := range Kinds() {
		infos = append(infos, Info{Kind: k, Title: k.Title()})
	}
	return Controls{
		Views:         infos,
		Years:         d.Years,
		Categories:    d.Categories,
		DefaultYear:   d.Years.Start,
		DefaultWindow: d.defaultWindow(),
	}
}

// defaultWindow is one year wide starting at the first year, clamped to the data.
func (d *Dataset) defaultWindow() types.YearRange {
	return types.YearRange{Start: d.Years.Start, End: min(d.Years.Start+1, d.Years.End)}
}

// Default returns the view of kind k with default parameters.
func (d *Dataset) Default(k Kind) (View, error) {
	switch k {
	case KindMap:
		return MapView{}, nil
	case KindYear:
		return YearView{Year: d.Years.Start}, nil
	case KindGender:
		return GenderView{}, nil
	case KindCategory:
		w := d.defaultWindow()
		category := ""
		if len(d.Categories) > 0 {
			category = d.Categories[0]
		}
		return CategoryView{Category: category, Start: w.Start, End: w.End}, nil
	default:
		return nil, ErrUnknownView
	}
}
