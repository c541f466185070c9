package database

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

type store interface {
	Insert(ctx context.Context, p models.PriceRecord) (int64, error)
	Get(ctx context.Context, id int64) (models.PriceRecord, error)
	List(ctx context.Context) ([]models.PriceRecord, error)
	ListByFuelType(ctx context.Context, fuelType string) ([]models.PriceRecord, error)
	Update(ctx context.Context, p models.PriceRecord) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	InsertAll(ctx context.Context, records []models.PriceRecord) (int, error)
	ReplaceAll(ctx context.Context, records []models.PriceRecord) (int, error)
}

func stores(t *testing.T) map[string]store {
	t.Helper()

	sqlite, err := New(DriverSQLite, filepath.Join(t.TempDir(), "prices.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("New(sqlite): %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]store{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func record(station string, price float64, fuelType string) models.PriceRecord {
	return models.PriceRecord{
		StationName: station,
		Address:     "Av. Coronel Prates, 123 - Centro",
		Price:       price,
		FuelType:    fuelType,
		UpdatedAt:   time.Date(2026, 10, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestStoreInsertGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			in := record("Posto Ipiranga Centro", 5.29, models.FuelRegular)
			id, err := s.Insert(ctx, in)
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}
			if id != 1 {
				t.Fatalf("expected first id to be 1, got %d", id)
			}

			got, err := s.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			in.ID = id
			if got != in {
				t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, in)
			}
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := s.Insert(ctx, record("Shell Morrinhos", 5.50, models.FuelRegular)); err != nil {
				t.Fatalf("Insert: %v", err)
			}

			if _, err := s.Get(ctx, 42); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("Get: expected ErrNotFound, got %v", err)
			}
			missing := record("Nowhere", 1, models.FuelDiesel)
			missing.ID = 42
			if err := s.Update(ctx, missing); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("Update: expected ErrNotFound, got %v", err)
			}
			if err := s.Delete(ctx, 42); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("Delete: expected ErrNotFound, got %v", err)
			}

			n, err := s.Count(ctx)
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if n != 1 {
				t.Fatalf("record set changed: count=%d", n)
			}
		})
	}
}

func TestStoreOrdering(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, p := range []models.PriceRecord{
				record("A", 5.80, models.FuelRegular),
				record("B", 3.99, models.FuelEthanol),
				record("C", 5.20, models.FuelRegular),
				record("D", 5.50, models.FuelRegular),
			} {
				if _, err := s.Insert(ctx, p); err != nil {
					t.Fatalf("Insert: %v", err)
				}
			}

			all, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			assertPrices(t, all, 3.99, 5.20, 5.50, 5.80)

			regular, err := s.ListByFuelType(ctx, models.FuelRegular)
			if err != nil {
				t.Fatalf("ListByFuelType: %v", err)
			}
			assertPrices(t, regular, 5.20, 5.50, 5.80)

			none, err := s.ListByFuelType(ctx, "Kerosene")
			if err != nil {
				t.Fatalf("ListByFuelType: %v", err)
			}
			if none == nil || len(none) != 0 {
				t.Fatalf("expected empty non-nil slice, got %#v", none)
			}
		})
	}
}

func TestStoreUpdateDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, err := s.Insert(ctx, record("Auto Posto JK", 5.29, models.FuelRegular))
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}

			edited := models.PriceRecord{
				ID:          id,
				StationName: "Auto Posto JK II",
				Address:     "Av. Juscelino Kubitschek, 357",
				Price:       5.99,
				FuelType:    models.FuelPremium,
				UpdatedAt:   time.Date(2026, 10, 2, 8, 0, 0, 0, time.UTC),
			}
			if err := s.Update(ctx, edited); err != nil {
				t.Fatalf("Update: %v", err)
			}

			got, err := s.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got != edited {
				t.Fatalf("update mismatch:\n got  %+v\n want %+v", got, edited)
			}

			if err := s.Delete(ctx, id); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, id); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("Get after delete: expected ErrNotFound, got %v", err)
			}
			if err := s.Delete(ctx, id); !errors.Is(err, models.ErrNotFound) {
				t.Fatalf("second Delete: expected ErrNotFound, got %v", err)
			}

			next, err := s.Insert(ctx, record("Posto Cidade Nova", 5.10, models.FuelRegular))
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}
			if next <= id {
				t.Fatalf("id %d reused or decreased after delete of %d", next, id)
			}
		})
	}
}

func TestStoreReplaceAll(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := s.Insert(ctx, record("Old", 9.99, models.FuelDiesel)); err != nil {
				t.Fatalf("Insert: %v", err)
			}

			n, err := s.ReplaceAll(ctx, []models.PriceRecord{
				record("New A", 6.10, models.FuelDieselS10),
				record("New B", 4.10, models.FuelEthanol),
			})
			if err != nil {
				t.Fatalf("ReplaceAll: %v", err)
			}
			if n != 2 {
				t.Fatalf("expected 2 inserted, got %d", n)
			}

			all, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			assertPrices(t, all, 4.10, 6.10)
			for _, p := range all {
				if p.StationName == "Old" {
					t.Fatal("old record survived ReplaceAll")
				}
				if p.ID <= 1 {
					t.Fatalf("id %d reused after ReplaceAll", p.ID)
				}
			}
		})
	}
}

func TestStoreInsertAll(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := s.Insert(ctx, record("Existing", 5.55, models.FuelRegular)); err != nil {
				t.Fatalf("Insert: %v", err)
			}

			n, err := s.InsertAll(ctx, []models.PriceRecord{
				record("New A", 6.10, models.FuelDieselS10),
				record("New B", 4.10, models.FuelEthanol),
			})
			if err != nil {
				t.Fatalf("InsertAll: %v", err)
			}
			if n != 2 {
				t.Fatalf("expected 2 inserted, got %d", n)
			}

			all, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			assertPrices(t, all, 4.10, 5.55, 6.10)
			for _, p := range all {
				if p.StationName != "Existing" && p.ID <= 1 {
					t.Fatalf("bulk insert reused id %d", p.ID)
				}
			}

			if n, err := s.InsertAll(ctx, nil); err != nil || n != 0 {
				t.Fatalf("InsertAll(nil) = %d, %v", n, err)
			}
		})
	}
}

func TestStoreInsertAllCancelledWritesNothing(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := s.InsertAll(ctx, []models.PriceRecord{record("A", 5, models.FuelRegular)}); err == nil {
				t.Fatal("expected error for cancelled context")
			}
			if n, err := s.Count(context.Background()); err != nil || n != 0 {
				t.Fatalf("Count = %d, %v; expected empty store", n, err)
			}
		})
	}
}

func TestSQLiteInsertAllRollsBackOnFailure(t *testing.T) {
	db, err := New(DriverSQLite, filepath.Join(t.TempDir(), "prices.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("New(sqlite): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	// SQLite stores NaN as NULL, which the NOT NULL price column rejects.
	_, err = db.InsertAll(ctx, []models.PriceRecord{
		record("First", 5.10, models.FuelRegular),
		record("Broken", math.NaN(), models.FuelRegular),
	})
	if err == nil {
		t.Fatal("expected error for NULL price")
	}

	if n, err := db.Count(ctx); err != nil || n != 0 {
		t.Fatalf("Count = %d, %v; expected the partial batch to be rolled back", n, err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New("oracle", "x", zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestRebindDollar(t *testing.T) {
	got := rebindDollar(`UPDATE fuel_prices SET price = ?, fuel_type = ? WHERE id = ?`)
	want := `UPDATE fuel_prices SET price = $1, fuel_type = $2 WHERE id = $3`
	if got != want {
		t.Fatalf("rebindDollar:\n got  %s\n want %s", got, want)
	}
}

func assertPrices(t *testing.T, records []models.PriceRecord, want ...float64) {
	t.Helper()
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, p := range records {
		if p.Price != want[i] {
			t.Fatalf("record %d: expected price %.2f, got %.2f", i, want[i], p.Price)
		}
	}
}
