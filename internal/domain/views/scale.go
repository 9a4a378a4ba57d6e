package views

// YlOrRd is the six-class yellow-orange-red palette used for map fills.
var YlOrRd = []string{"#ffffb2", "#fed976", "#feb24c", "#fd8d3c", "#f03b20", "#bd0026"}

// NoDataFill colours regions without a matching country aggregate.
const NoDataFill = "white"

// Scale maps prize counts onto equal-width bins between the smallest and
// largest count.
type Scale struct {
	Min    int      `json:"min"`
	Max    int      `json:"max"`
	Colors []string `json:"colors"`
}

// NewScale spans counts with the YlOrRd palette.
func NewScale(counts []int) Scale {
	s := Scale{Colors: YlOrRd}
	for i, c := range counts {
		if i == 0 {
			s.Min, s.Max = c, c
			continue
		}
		s.Min = min(s.Min, c)
		s.Max = max(s.Max, c)
	}
	return s
}

// Bin returns the palette index of count; the top edge falls in the last bin.
func (s Scale) Bin(count int) int {
	n := len(s.Colors)
	if n == 0 || s.Max <= s.Min || count <= s.Min {
		return 0
	}
	if count >= s.Max {
		return n - 1
	}
	return (count - s.Min) * n / (s.Max - s.Min)
}

// Fill returns the colour of count.
func (s Scale) Fill(count int) string {
	if len(s.Colors) == 0 {
		return NoDataFill
	}
	return s.Colors[s.Bin(count)]
}
