package aggregate_test

import (
	"testing"

	"github.com/okian/nobeldash/internal/domain/aggregate"
	"github.com/okian/nobeldash/internal/domain/model"
	"github.com/okian/nobeldash/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func at(lat, lon float64) *model.Coordinates { return &model.Coordinates{Lat: lat, Lon: lon} }

func TestCountries(t *testing.T) {
	Convey("Given laureates from a few countries", t, func() {
		in := []model.Laureate{
			{ID: "1", CountryCode: "DEU", OfficialCountryName: "Germany", Location: at(51, 9)},
			{ID: "2", CountryCode: "FRA", OfficialCountryName: "France", Location: at(46, 2)},
			{ID: "3", CountryCode: "DEU", OfficialCountryName: "Germany", Location: at(51, 9)},
			{ID: "4", CountryCode: "USA", OfficialCountryName: "United States of America", Location: at(38, -97)},
			{ID: "5", CountryCode: "DEU", OfficialCountryName: "Germany", Location: at(51, 9)},
		}

		out := aggregate.Countries(in)

		Convey("Then each country tuple appears once", func() {
			So(out, ShouldHaveLength, 3)
			seen := map[string]bool{}
			for _, c := range out {
				So(seen[c.Code], ShouldBeFalse)
				seen[c.Code] = true
			}
		})

		Convey("And counts sum to the record count", func() {
			total := 0
			for _, c := range out {
				total += c.Count
			}
			So(total, ShouldEqual, len(in))
		})

		Convey("And output is sorted by key", func() {
			So(out[0].Code, ShouldEqual, "DEU")
			So(out[0].Count, ShouldEqual, 3)
			So(out[1].Code, ShouldEqual, "FRA")
			So(out[2].Code, ShouldEqual, "USA")
		})
	})

	Convey("Given laureates with incomplete country keys", t, func() {
		in := []model.Laureate{
			{ID: "1", CountryCode: "", OfficialCountryName: "Nowhere", Location: at(0, 0)},
			{ID: "2", CountryCode: "XXX", OfficialCountryName: "", Location: at(0, 0)},
			{ID: "3", CountryCode: "SWE", OfficialCountryName: "Sweden", Location: nil},
			{ID: "4", CountryCode: "SWE", OfficialCountryName: "Sweden", Location: at(62, 15)},
		}

		Convey("Then only complete keys are grouped", func() {
			out := aggregate.Countries(in)
			So(out, ShouldHaveLength, 1)
			So(out[0].Name, ShouldEqual, "Sweden")
			So(out[0].Count, ShouldEqual, 1)
		})
	})

	Convey("Given the same code at two different coordinates", t, func() {
		in := []model.Laureate{
			{ID: "1", CountryCode: "GBR", OfficialCountryName: "United Kingdom", Location: at(54, -2)},
			{ID: "2", CountryCode: "GBR", OfficialCountryName: "United Kingdom", Location: at(55, -3)},
		}

		Convey("Then they form distinct groups", func() {
			So(aggregate.Countries(in), ShouldHaveLength, 2)
		})
	})
}

func TestGenders(t *testing.T) {
	Convey("Given prize rows across years and genders", t, func() {
		rows := []model.PrizeRow{
			{Year: 1903, Gender: "female"},
			{Year: 1903, Gender: "male"},
			{Year: 1903, Gender: "male"},
			{Year: 1911, Gender: "female"},
			{Year: 1917, Gender: ""},
			{Year: 1901, Gender: "male"},
		}

		out := aggregate.Genders(rows)

		Convey("Then per-year sums equal per-year row counts", func() {
			perYear := map[int]int{}
			for _, r := range rows {
				perYear[r.Year]++
			}
			sums := map[int]int{}
			for _, c := range out {
				sums[c.Year] += c.Count
			}
			So(sums, ShouldResemble, perYear)
		})

		Convey("And output is sorted by year then gender", func() {
			So(out[0], ShouldResemble, model.GenderCount{Year: 1901, Gender: "male", Count: 1})
			So(out[1], ShouldResemble, model.GenderCount{Year: 1903, Gender: "female", Count: 1})
			So(out[2], ShouldResemble, model.GenderCount{Year: 1903, Gender: "male", Count: 2})
		})

		Convey("And empty genders are reported as unknown", func() {
			So(out[len(out)-1], ShouldResemble, model.GenderCount{Year: 1917, Gender: aggregate.UnknownGender, Count: 1})
		})

		Convey("And labels are distinct and sorted", func() {
			So(aggregate.GenderLabels(out), ShouldResemble, []string{"female", "male", "unknown"})
		})
	})
}

func TestYearBoundsAndCategories(t *testing.T) {
	Convey("Given prize rows", t, func() {
		rows := []model.PrizeRow{
			{Year: 1950, Category: "peace"},
			{Year: 1901, Category: "physics"},
			{Year: 2019, Category: "peace"},
			{Year: 1969, Category: "economics"},
		}

		Convey("Then bounds span min to max", func() {
			r, ok := aggregate.YearBounds(rows)
			So(ok, ShouldBeTrue)
			So(r, ShouldResemble, types.YearRange{Start: 1901, End: 2019})
		})

		Convey("And categories keep first-appearance order", func() {
			So(aggregate.Categories(rows), ShouldResemble, []string{"peace", "physics", "economics"})
		})
	})

	Convey("Given no rows", t, func() {
		_, ok := aggregate.YearBounds(nil)
		So(ok, ShouldBeFalse)
		So(aggregate.Categories(nil), ShouldBeEmpty)
	})
}
