// Package model contains domain models passed between layers.
package model

// Coordinates is a WGS 84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Laureate is one input record: a prize-winning individual or organization.
// PrizeYears and PrizeCategories hold comma-joined values at matching positions.
type Laureate struct {
	ID                  string
	FirstName           string
	Surname             string
	BornCountry         string
	Gender              string
	Location            *Coordinates // nil when either coordinate is missing
	OfficialCountryName string
	CountryCode         string // ISO-ALPHA-3
	PrizeYears          string
	PrizeCategories     string
	PrizeMotivation     string
}

// PrizeRow is one (laureate, year, category) pair produced by normalization.
type PrizeRow struct {
	LaureateID  string
	FirstName   string
	Surname     string
	BornCountry string
	Gender      string
	Motivation  string
	Year        int
	Category    string
}

// CountryKey identifies a country aggregate.
type CountryKey struct {
	Code string
	Name string
	Lat  float64
	Lon  float64
}

// CountryCount is the number of laureate records for one country key.
type CountryCount struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Count int     `json:"count"`
}

// GenderCount is the number of prize rows for one (year, gender) pair.
type GenderCount struct {
	Year   int    `json:"year"`
	Gender string `json:"gender"`
	Count  int    `json:"count"`
}
