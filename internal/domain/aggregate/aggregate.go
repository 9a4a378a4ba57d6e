// Package aggregate computes group-by counts over laureates and prize rows.
package aggregate

import (
	"cmp"
	"slices"
	"strings"

	"github.com/okian/nobeldash/internal/domain/model"
	"github.com/okian/nobeldash/internal/domain/types"
)

// UnknownGender labels prize rows whose gender is empty.
const UnknownGender = "unknown"

// Countries groups laureates by (code, lat, lon, official name) and counts them.
// Laureates missing any part of the key form no group. Output is sorted by key.
func Countries(laureates []model.Laureate) []model.CountryCount {
	counts := make(map[model.CountryKey]int)
	for i := range laureates {
		key, ok := countryKey(&laureates[i])
		if !ok {
			continue
		}
		counts[key]++
	}

	out := make([]model.CountryCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.CountryCount{Code: k.Code, Name: k.Name, Lat: k.Lat, Lon: k.Lon, Count: n})
	}
	slices.SortFunc(out, func(a, b model.CountryCount) int {
		return cmp.Or(
			cmp.Compare(a.Code, b.Code),
			cmp.Compare(a.Lat, b.Lat),
			cmp.Compare(a.Lon, b.Lon),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return out
}

func countryKey(l *model.Laureate) (model.CountryKey, bool) {
	code := strings.TrimSpace(l.CountryCode)
	name := strings.TrimSpace(l.OfficialCountryName)
	if code == "" || name == "" || l.Location == nil {
		return model.CountryKey{}, false
	}
	return model.CountryKey{Code: code, Name: name, Lat: l.Location.Lat, Lon: l.Location.Lon}, true
}

// Genders counts prize rows per (year, gender), sorted by year then gender.
// Rows with an empty gender are counted under UnknownGender.
func Genders(rows []model.PrizeRow) []model.GenderCount {
	type key struct {
		year   int
		gender string
	}
	counts := make(map[key]int)
	for i := range rows {
		g := strings.TrimSpace(rows[i].Gender)
		if g == "" {
			g = UnknownGender
		}
		counts[key{rows[i].Year, g}]++
	}

	out := make([]model.GenderCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.GenderCount{Year: k.year, Gender: k.gender, Count: n})
	}
	slices.SortFunc(out, func(a, b model.GenderCount) int {
		return cmp.Or(cmp.Compare(a.Year, b.Year), cmp.Compare(a.Gender, b.Gender))
	})
	return out
}

// YearBounds returns the min and max prize year. ok is false for no rows.
func YearBounds(rows []model.PrizeRow) (types.YearRange, bool) {
	if len(rows) == 0 {
		return types.YearRange{}, false
	}
	r := types.YearRange{Start: rows[0].Year, End: rows[0].Year}
	for i := range rows[1:] {
		y := rows[i+1].Year
		r.Start = min(r.Start, y)
		r.End = max(r.End, y)
	}
	return r, true
}

// Categories lists distinct categories in order of first appearance.
func Categories(rows []model.PrizeRow) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range rows {
		c := rows[i].Category
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// GenderLabels lists distinct gender labels in sorted order.
func GenderLabels(counts []model.GenderCount) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range counts {
		if _, ok := seen[c.Gender]; ok {
			continue
		}
		seen[c.Gender] = struct{}{}
		out = append(out, c.Gender)
	}
	slices.Sort(out)
	return out
}
