package geo

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"surveypulse/internal/dataset"
	"surveypulse/pkg/contracts/domain"
)

// RegionCoordinateTable maps a U.S. census region to a representative map
// point. It is static lookup data, never mutated.
type RegionCoordinateTable map[string]orb.Point

// DefaultRegions holds the nine census divisions the survey buckets
// respondents into, with a representative centroid each (lng, lat order as
// orb expects).
func DefaultRegions() RegionCoordinateTable {
	return RegionCoordinateTable{
		"New England":        {-71.5, 44.0},
		"Middle Atlantic":    {-75.5, 41.5},
		"East North Central": {-85.5, 42.0},
		"West North Central": {-96.5, 43.0},
		"South Atlantic":     {-80.5, 34.5},
		"East South Central": {-87.0, 33.5},
		"West South Central": {-96.5, 31.5},
		"Mountain":           {-110.5, 40.0},
		"Pacific":            {-121.5, 41.5},
	}
}

// Mapper joins respondent counts per census region onto the coordinate
// table and renders map markers.
type Mapper struct {
	regions RegionCoordinateTable
	logger  *slog.Logger
}

// NewMapper creates a mapper over a coordinate table.
func NewMapper(regions RegionCoordinateTable, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{regions: regions, logger: logger}
}

// Counts groups the cleaned table by the census-region column and joins
// coordinates. Regions present in the data but absent from the coordinate
// table are dropped with a warning instead of failing the render; rows
// with an empty region cell are ignored.
func (m *Mapper) Counts(t *dataset.Table, column string) ([]domain.RegionCount, []string, error) {
	values, ok := t.Column(column)
	if !ok {
		return nil, nil, fmt.Errorf("region column %q not found", column)
	}

	tally := make(map[string]int)
	for _, region := range values {
		if region == "" {
			continue
		}
		tally[region]++
	}

	regions := make([]string, 0, len(tally))
	for region := range tally {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	counts := make([]domain.RegionCount, 0, len(regions))
	var warnings []string
	for _, region := range regions {
		point, ok := m.regions[region]
		if !ok {
			warnings = append(warnings,
				fmt.Sprintf("region %q has no coordinates, marker skipped", region))
			m.logger.Warn("unmapped census region", slog.String("region", region))
			continue
		}
		counts = append(counts, domain.RegionCount{
			Region: region,
			Count:  tally[region],
			Lat:    point.Lat(),
			Lng:    point.Lon(),
		})
	}

	return counts, warnings, nil
}

// FeatureCollection renders region counts as GeoJSON point features, one
// marker per region with the count as a sizing property.
func FeatureCollection(counts []domain.RegionCount) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, rc := range counts {
		f := geojson.NewFeature(orb.Point{rc.Lng, rc.Lat})
		f.Properties["region"] = rc.Region
		f.Properties["count"] = rc.Count
		fc.Append(f)
	}
	return fc
}
