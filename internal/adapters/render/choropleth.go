// Package render turns view results into bytes: GeoJSON, PNG charts, XLSX
// workbooks and terminal tables.
package render

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/nobeldash/internal/domain/views"
)

// Feature properties written by Choropleth.
const (
	PropName   = "name"
	PropPrizes = "prizes"
	PropFill   = "fill"
)

// Choropleth joins map counts onto boundary features by country name and
// returns the annotated collection as GeoJSON. Matching tries the exact name
// first, then a case and space insensitive form. Features with no match get
// views.NoDataFill and no prizes property. fc is not modified.
func Choropleth(fc *geojson.FeatureCollection, m views.MapResult) ([]byte, error) {
	if fc == nil {
		return nil, ErrNoBoundaries
	}
	exact := make(map[string]int, len(m.Countries))
	loose := make(map[string]int, len(m.Countries))
	for _, c := range m.Countries {
		exact[c.Name] += c.Count
		loose[foldName(c.Name)] += c.Count
	}

	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		g := geojson.NewFeature(f.Geometry)
		g.ID = f.ID
		g.BBox = f.BBox
		g.Properties = f.Properties.Clone()
		if g.Properties == nil {
			g.Properties = geojson.Properties{}
		}

		name := g.Properties.MustString(PropName, "")
		count, ok := exact[name]
		if !ok {
			count, ok = loose[foldName(name)]
		}
		if ok && name != "" {
			g.Properties[PropPrizes] = count
			g.Properties[PropFill] = m.Scale.Fill(count)
		} else {
			g.Properties[PropFill] = views.NoDataFill
		}
		out.Append(g)
	}

	data, err := out.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal choropleth: %w", err)
	}
	return data, nil
}

// foldName normalizes a country name for loose matching.
func foldName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFKC.String(s))), " ")
}
