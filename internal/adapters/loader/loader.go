// Package loader reads the laureate CSV and the country boundary GeoJSON.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"github.com/okian/nobeldash/internal/domain/model"
	"github.com/okian/nobeldash/pkg/logger"
)

// Column names the laureate table must carry.
const (
	ColID              = "id"
	ColFirstName       = "firstname"
	ColSurname         = "surname"
	ColBornCountry     = "bornCountry"
	ColGender          = "gender"
	ColLatitude        = "latitude"
	ColLongitude       = "longitude"
	ColOfficialCountry = "officialCountryName"
	ColCountryCode     = "ISO-ALPHA-3"
	ColPrizeYears      = "prize_years"
	ColPrizeCategories = "prize_categories"
	ColPrizeMotivation = "prize_motivation"
)

// RequiredColumns lists every column ReadLaureates looks up.
var RequiredColumns = []string{
	ColID, ColFirstName, ColSurname, ColBornCountry, ColGender,
	ColLatitude, ColLongitude, ColOfficialCountry, ColCountryCode,
	ColPrizeYears, ColPrizeCategories, ColPrizeMotivation,
}

// Result is everything one load produced.
type Result struct {
	Laureates  []model.Laureate
	Boundaries *geojson.FeatureCollection // nil when no boundary file is configured
}

// Loader reads the data files from disk.
type Loader struct {
	dataPath       string
	boundariesPath string
	logger         logger.Logger
}

// New creates a Loader for the laureate CSV at dataPath.
func New(dataPath string, opts ...Option) *Loader {
	l := &Loader{
		dataPath: dataPath,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DataPath returns the laureate CSV path.
func (l *Loader) DataPath() string { return l.dataPath }

// Load reads both files concurrently. Either failure fails the load.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		laureates, err := LoadLaureates(gctx, l.dataPath)
		if err != nil {
			return err
		}
		res.Laureates = laureates
		return nil
	})
	if l.boundariesPath != "" {
		g.Go(func() error {
			fc, err := LoadBoundaries(l.boundariesPath)
			if err != nil {
				return err
			}
			res.Boundaries = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	features := 0
	if res.Boundaries != nil {
		features = len(res.Boundaries.Features)
	}
	l.logger.Debug(ctx, "data files loaded",
		logger.String("data_path", l.dataPath),
		logger.Int("laureates", len(res.Laureates)),
		logger.Int("boundary_features", features),
		logger.Duration("took", time.Since(start)))
	return res, nil
}

// LoadLaureates opens path and reads it with ReadLaureates.
func LoadLaureates(ctx context.Context, path string) ([]model.Laureate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()
	laureates, err := ReadLaureates(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return laureates, nil
}

// ReadLaureates parses a laureate CSV with a header row. Columns are found by
// name; extra columns are ignored. Empty latitude or longitude leaves
// Location nil.
func ReadLaureates(ctx context.Context, r io.Reader) ([]model.Laureate, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var out []model.Laureate
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		get := func(col string) string { return strings.TrimSpace(rec[idx[col]]) }
		loc, err := coordinates(get(ColLatitude), get(ColLongitude))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}
		out = append(out, model.Laureate{
			ID:                  get(ColID),
			FirstName:           get(ColFirstName),
			Surname:             get(ColSurname),
			BornCountry:         get(ColBornCountry),
			Gender:              get(ColGender),
			Location:            loc,
			OfficialCountryName: get(ColOfficialCountry),
			CountryCode:         get(ColCountryCode),
			PrizeYears:          get(ColPrizeYears),
			PrizeCategories:     get(ColPrizeCategories),
			PrizeMotivation:     get(ColPrizeMotivation),
		})
	}
	return out, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		idx[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func coordinates(lat, lon string) (*model.Coordinates, error) {
	if lat == "" || lon == "" {
		return nil, nil
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("latitude %q", lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("longitude %q", lon)
	}
	return &model.Coordinates{Lat: la, Lon: lo}, nil
}

// LoadBoundaries reads a GeoJSON FeatureCollection of country polygons.
func LoadBoundaries(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}
	return fc, nil
}
