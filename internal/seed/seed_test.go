package seed

import (
	"testing"
	"time"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

var reference = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestGenerator(seed int64) *Generator {
	g := NewGenerator(seed, 30*24*time.Hour)
	g.SetClock(func() time.Time { return reference })
	return g
}

func TestGenerateShape(t *testing.T) {
	records := newTestGenerator(42).Generate()

	perStation := map[string]map[string]bool{}
	for _, p := range records {
		if perStation[p.StationName] == nil {
			perStation[p.StationName] = map[string]bool{}
		}
		if perStation[p.StationName][p.FuelType] {
			t.Fatalf("station %q has fuel type %q twice", p.StationName, p.FuelType)
		}
		perStation[p.StationName][p.FuelType] = true

		band, ok := PriceBands[p.FuelType]
		if !ok {
			t.Fatalf("unexpected fuel type %q", p.FuelType)
		}
		if p.Price < band.Min || p.Price > band.Max {
			t.Fatalf("%s price %.2f outside band %.2f-%.2f", p.FuelType, p.Price, band.Min, band.Max)
		}

		if p.UpdatedAt.After(reference) || p.UpdatedAt.Before(reference.Add(-30*24*time.Hour)) {
			t.Fatalf("timestamp %v outside the last 30 days", p.UpdatedAt)
		}
		if p.Address == "" {
			t.Fatalf("station %q has no address", p.StationName)
		}
	}

	if len(perStation) != len(Stations) {
		t.Fatalf("expected %d stations, got %d", len(Stations), len(perStation))
	}
	for name, types := range perStation {
		if len(types) < minFuelTypesPerStation || len(types) > maxFuelTypesPerStation {
			t.Fatalf("station %q has %d fuel types", name, len(types))
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := newTestGenerator(7).Generate()
	b := newTestGenerator(7).Generate()

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("record %d differs:\n %+v\n %+v", i, a[i], b[i])
		}
	}
}

func TestPriceRoundedToCents(t *testing.T) {
	g := newTestGenerator(1)
	for i := 0; i < 100; i++ {
		p := g.Price("Kerosene")
		if p < fallbackBand.Min || p > fallbackBand.Max {
			t.Fatalf("fallback price %.4f outside band", p)
		}
		cents := p * 100
		if diff := cents - float64(int64(cents+0.5)); diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("price %v not rounded to cents", p)
		}
	}
	if _, ok := PriceBands[models.FuelDieselS10]; !ok {
		t.Fatal("missing band for Diesel-S10")
	}
}
