// Package report computes fuel price statistics grouped by canonical fuel type.
package report

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

// Lister returns every stored price record.
type Lister interface {
	List(ctx context.Context) ([]models.PriceRecord, error)
}

// Engine builds reports from the full record set on every call.
type Engine struct {
	lister Lister
}

// NewEngine creates a new Engine reading from lister.
func NewEngine(lister Lister) *Engine {
	return &Engine{lister: lister}
}

// Compute loads all records and builds a report.
func (e *Engine) Compute(ctx context.Context) (models.Report, error) {
	records, err := e.lister.List(ctx)
	if err != nil {
		return models.Report{}, fmt.Errorf("loading prices for report: %w", err)
	}
	return Build(records), nil
}

type bucket struct {
	count    int
	min      float64
	max      float64
	avg      float64
	stations map[string]struct{}
}

// Build aggregates records in a single pass. Only canonical fuel types are
// grouped; every record counts towards the global totals.
func Build(records []models.PriceRecord) models.Report {
	buckets := make(map[string]*bucket, len(models.CanonicalFuelTypes))
	stations := make(map[string]struct{})

	for _, p := range records {
		stations[p.StationName] = struct{}{}

		if !models.IsCanonicalFuelType(p.FuelType) {
			continue
		}

		b, ok := buckets[p.FuelType]
		if !ok {
			b = &bucket{min: p.Price, max: p.Price, stations: make(map[string]struct{})}
			buckets[p.FuelType] = b
		}
		b.count++
		// Running mean; a plain sum overflows for prices near MaxFloat64.
		n := float64(b.count)
		b.avg += p.Price/n - b.avg/n
		b.min = math.Min(b.min, p.Price)
		b.max = math.Max(b.max, p.Price)
		b.stations[p.StationName] = struct{}{}
	}

	r := models.Report{
		ByFuelType:    make([]models.FuelTypeStats, 0, len(buckets)),
		TotalRecords:  len(records),
		TotalStations: len(stations),
	}

	for _, fuelType := range models.CanonicalFuelTypes {
		b, ok := buckets[fuelType]
		if !ok {
			continue
		}

		names := make([]string, 0, len(b.stations))
		for name := range b.stations {
			names = append(names, name)
		}
		sort.Strings(names)

		r.ByFuelType = append(r.ByFuelType, models.FuelTypeStats{
			FuelType: fuelType,
			Count:    b.count,
			Min:      b.min,
			Max:      b.max,
			Avg:      b.avg,
			Stations: names,
		})
	}

	return r
}

// JSON converts a report into the API representation with averages rounded
// to two decimal places.
func JSON(r models.Report) models.ReportJSON {
	out := models.ReportJSON{
		TotalRecords:  r.TotalRecords,
		TotalStations: r.TotalStations,
		ByFuelType:    make(map[string]models.FuelTypeStatsJSON, len(r.ByFuelType)),
	}
	for _, s := range r.ByFuelType {
		out.ByFuelType[s.FuelType] = models.FuelTypeStatsJSON{
			Count: s.Count,
			Min:   s.Min,
			Max:   s.Max,
			Avg:   Round2(s.Avg),
		}
	}
	return out
}

// Round2 rounds v to two decimal places. Values too large to scale are
// returned unchanged.
func Round2(v float64) float64 {
	scaled := v * 100
	if math.IsInf(scaled, 0) || math.IsNaN(scaled) {
		return v
	}
	return math.Round(scaled) / 100
}
