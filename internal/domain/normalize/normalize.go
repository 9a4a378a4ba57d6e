// Package normalize reshapes laureate records with comma-joined prize fields
// into one row per (laureate, year, category).
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/nobeldash/internal/domain/model"
)

// DefaultSlots is the number of prize positions read from each multi-value field.
const DefaultSlots = 2

// Mode selects how years are matched with categories.
type Mode int

const (
	// Paired zips year i with category i.
	Paired Mode = iota
	// CrossProduct unpivots years and categories independently, emitting every
	// year x category combination. Kept for parity with legacy output.
	CrossProduct
)

// String returns the config spelling of the mode.
func (m Mode) String() string {
	switch m {
	case Paired:
		return "paired"
	case CrossProduct:
		return "cross"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps "paired" and "cross" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "paired":
		return Paired, nil
	case "cross", "cross_product":
		return CrossProduct, nil
	default:
		return Paired, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Normalizer converts laureates into prize rows. It holds no state between calls.
type Normalizer struct {
	mode  Mode
	slots int
}

// New creates a Normalizer. Defaults: Paired mode, DefaultSlots positions.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		mode:  Paired,
		slots: DefaultSlots,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Mode reports the configured pairing mode.
func (n *Normalizer) Mode() Mode { return n.mode }

// Normalize is a shorthand for New(opts...).Normalize(laureates).
func Normalize(laureates []model.Laureate, opts ...Option) ([]model.PrizeRow, error) {
	return New(opts...).Normalize(laureates)
}

// split holds the per-slot values of one laureate; "" marks a missing value.
type split struct {
	years []string
	cats  []string
}

// Normalize emits rows slot-major: every laureate's first prize, then every
// second prize. Pairs with a missing year or category are dropped. A year that
// is present but not an integer fails the whole call.
func (n *Normalizer) Normalize(laureates []model.Laureate) ([]model.PrizeRow, error) {
	splits := make([]split, len(laureates))
	for i := range laureates {
		splits[i] = split{
			years: splitSlots(laureates[i].PrizeYears, n.slots),
			cats:  splitSlots(laureates[i].PrizeCategories, n.slots),
		}
	}

	out := make([]model.PrizeRow, 0, len(laureates))
	emit := func(l *model.Laureate, rawYear, category string) error {
		if rawYear == "" || category == "" {
			return nil
		}
		year, err := parseYear(rawYear)
		if err != nil {
			return fmt.Errorf("%w: laureate %q: %q", ErrMalformedYear, l.ID, rawYear)
		}
		out = append(out, model.PrizeRow{
			LaureateID:  l.ID,
			FirstName:   l.FirstName,
			Surname:     l.Surname,
			BornCountry: l.BornCountry,
			Gender:      l.Gender,
			Motivation:  l.PrizeMotivation,
			Year:        year,
			Category:    category,
		})
		return nil
	}

	switch n.mode {
	case CrossProduct:
		for cs := 0; cs < n.slots; cs++ {
			for ys := 0; ys < n.slots; ys++ {
				for i := range laureates {
					if err := emit(&laureates[i], splits[i].years[ys], splits[i].cats[cs]); err != nil {
						return nil, err
					}
				}
			}
		}
	default:
		for s := 0; s < n.slots; s++ {
			for i := range laureates {
				if err := emit(&laureates[i], splits[i].years[s], splits[i].cats[s]); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// splitSlots splits a comma-joined field into exactly slots trimmed values.
// Tokens beyond slots are ignored; missing positions are "".
func splitSlots(field string, slots int) []string {
	out := make([]string, slots)
	if strings.TrimSpace(field) == "" {
		return out
	}
	for i, tok := range strings.SplitN(field, ",", slots+1) {
		if i >= slots {
			break
		}
		out[i] = strings.TrimSpace(tok)
	}
	return out
}

// Accepted prize years.
const (
	MinYear = 1
	MaxYear = 9999
)

// parseYear accepts integers and integral floats ("1911.0") in [MinYear, MaxYear].
func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		if y < MinYear || y > MaxYear {
			return 0, strconv.ErrRange
		}
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, strconv.ErrSyntax
	}
	if f < MinYear || f > MaxYear {
		return 0, strconv.ErrRange
	}
	return int(f), nil
}
