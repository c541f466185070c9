// Package prices implements the create, read, update and delete operations on
// fuel price records, including input validation and error classification.
package prices

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

// Store is the durable record store the service operates on.
type Store interface {
	Insert(ctx context.Context, p models.PriceRecord) (int64, error)
	Get(ctx context.Context, id int64) (models.PriceRecord, error)
	List(ctx context.Context) ([]models.PriceRecord, error)
	ListByFuelType(ctx context.Context, fuelType string) ([]models.PriceRecord, error)
	Update(ctx context.Context, p models.PriceRecord) error
	Delete(ctx context.Context, id int64) error
}

// MetricsRecorder receives one observation per store call.
type MetricsRecorder interface {
	RecordDBOperation(operation, status string)
}

// Input is the raw form or query payload for add and edit.
type Input struct {
	StationName string
	Address     string
	Price       string
	FuelType    string
}

// Draft is a validated Input.
type Draft struct {
	StationName string
	Address     string
	Price       float64
	FuelType    string
}

// Parse validates the input. Price must parse as a finite float; zero and
// negative values are accepted.
func (in Input) Parse() (Draft, error) {
	d := Draft{
		StationName: strings.TrimSpace(in.StationName),
		Address:     strings.TrimSpace(in.Address),
		FuelType:    strings.TrimSpace(in.FuelType),
	}

	if d.StationName == "" {
		return Draft{}, &ValidationError{Field: "posto", Message: "o nome do posto é obrigatório"}
	}
	if d.Address == "" {
		return Draft{}, &ValidationError{Field: "endereco", Message: "o endereço é obrigatório"}
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	if err != nil {
		return Draft{}, &ValidationError{Field: "preco", Message: "informe um número válido"}
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return Draft{}, &ValidationError{Field: "preco", Message: "informe um número finito"}
	}
	d.Price = price

	if d.FuelType == "" {
		d.FuelType = models.DefaultFuelType
	}

	return d, nil
}

// Service coordinates validation, timestamps and store access.
type Service struct {
	store   Store
	now     func() time.Time
	metrics MetricsRecorder
	logger  zerolog.Logger
}

// New creates a new Service on top of store.
func New(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "prices").Logger(),
	}
}

// SetClock replaces the time source used for UpdatedAt.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetMetrics wires a metrics recorder for store operations.
func (s *Service) SetMetrics(m MetricsRecorder) {
	s.metrics = m
}

// List returns all records ordered by ascending price.
func (s *Service) List(ctx context.Context) ([]models.PriceRecord, error) {
	records, err := s.store.List(ctx)
	if err := s.observe("list", err); err != nil {
		return nil, err
	}
	return records, nil
}

// ListByFuelType returns all records of one fuel type ordered by ascending price.
func (s *Service) ListByFuelType(ctx context.Context, fuelType string) ([]models.PriceRecord, error) {
	records, err := s.store.ListByFuelType(ctx, fuelType)
	if err := s.observe("list_by_fuel_type", err); err != nil {
		return nil, err
	}
	return records, nil
}

// Get returns one record or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (models.PriceRecord, error) {
	p, err := s.store.Get(ctx, id)
	if err := s.observe("get", err); err != nil {
		return models.PriceRecord{}, err
	}
	return p, nil
}

// Add validates in and stores a new record. It returns the new id.
func (s *Service) Add(ctx context.Context, in Input) (int64, error) {
	d, err := in.Parse()
	if err != nil {
		return 0, err
	}

	id, err := s.store.Insert(ctx, models.PriceRecord{
		StationName: d.StationName,
		Address:     d.Address,
		Price:       d.Price,
		FuelType:    d.FuelType,
		UpdatedAt:   s.timestamp(),
	})
	if err := s.observe("insert", err); err != nil {
		s.logger.Error().Err(err).Str("station", d.StationName).Msg("failed to add price")
		return 0, err
	}

	s.logger.Info().
		Int64("id", id).
		Str("station", d.StationName).
		Str("fuel_type", d.FuelType).
		Float64("price", d.Price).
		Msg("price added")

	return id, nil
}

// Edit overwrites the four mutable fields of record id and resets UpdatedAt.
// The id itself never changes.
func (s *Service) Edit(ctx context.Context, id int64, in Input) (models.PriceRecord, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return models.PriceRecord{}, err
	}

	d, err := in.Parse()
	if err != nil {
		return models.PriceRecord{}, err
	}

	updated := models.PriceRecord{
		ID:          current.ID,
		StationName: d.StationName,
		Address:     d.Address,
		Price:       d.Price,
		FuelType:    d.FuelType,
		UpdatedAt:   s.timestamp(),
	}
	// Keep UpdatedAt strictly increasing even if the clock did not advance.
	if !updated.UpdatedAt.After(current.UpdatedAt) {
		updated.UpdatedAt = current.UpdatedAt.Add(time.Microsecond)
	}

	err = s.store.Update(ctx, updated)
	if err := s.observe("update", err); err != nil {
		s.logger.Error().Err(err).Int64("id", id).Msg("failed to edit price")
		return models.PriceRecord{}, err
	}

	s.logger.Info().
		Int64("id", id).
		Float64("price", updated.Price).
		Msg("price updated")

	return updated, nil
}

// Delete removes record id. Deleting an absent id returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if err := s.observe("delete", err); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().Err(err).Int64("id", id).Msg("failed to delete price")
		}
		return err
	}

	s.logger.Info().Int64("id", id).Msg("price deleted")
	return nil
}

// timestamp returns now at the store's microsecond resolution.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// observe records the outcome of a store call and classifies its error.
func (s *Service) observe(op string, err error) error {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound):
		status = "not_found"
		err = ErrNotFound
	default:
		status = "error"
		err = &StoreError{Op: op, Err: err}
	}

	if s.metrics != nil {
		s.metrics.RecordDBOperation(op, status)
	}
	return err
}
