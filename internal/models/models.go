// Package models provides shared data types for the fuel price tracker.
package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a record id does not resolve.
var ErrNotFound = errors.New("price record not found")

// Canonical fuel types used to bucket statistics.
const (
	FuelRegular   = "Regular"
	FuelPremium   = "Premium"
	FuelEthanol   = "Ethanol"
	FuelDiesel    = "Diesel"
	FuelDieselS10 = "Diesel-S10"
)

// DefaultFuelType is stored when a caller leaves the fuel type empty.
const DefaultFuelType = FuelRegular

// CanonicalFuelTypes is the fixed, ordered list of fuel types reported on by the
// statistics views. Other fuel types are persisted but not grouped.
var CanonicalFuelTypes = []string{
	FuelRegular,
	FuelPremium,
	FuelEthanol,
	FuelDiesel,
	FuelDieselS10,
}

// IsCanonicalFuelType reports whether fuelType is part of CanonicalFuelTypes.
func IsCanonicalFuelType(fuelType string) bool {
	for _, t := range CanonicalFuelTypes {
		if t == fuelType {
			return true
		}
	}
	return false
}

// PriceRecord is a stored fuel price at one station.
type PriceRecord struct {
	// ID is assigned by the store and never reused.
	ID int64
	// StationName is the gas station's display name.
	StationName string
	// Address is the station's street address.
	Address string
	// Price is the price per liter in BRL.
	Price float64
	// FuelType is a free-form label, usually one of CanonicalFuelTypes.
	FuelType string
	// UpdatedAt is set on creation and on every edit.
	UpdatedAt time.Time
}

// TimestampLayout is RFC 3339 with a fixed microsecond fraction, the
// resolution records are stored at.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// PriceJSON is the wire representation of a PriceRecord.
type PriceJSON struct {
	ID          int64   `json:"id"`
	StationName string  `json:"posto"`
	Address     string  `json:"endereco"`
	Price       float64 `json:"preco"`
	FuelType    string  `json:"tipo_combustivel"`
	UpdatedAt   string  `json:"data_atualizacao"`
}

// JSON converts the record into its wire representation.
func (p PriceRecord) JSON() PriceJSON {
	return PriceJSON{
		ID:          p.ID,
		StationName: p.StationName,
		Address:     p.Address,
		Price:       p.Price,
		FuelType:    p.FuelType,
		UpdatedAt:   p.UpdatedAt.UTC().Format(TimestampLayout),
	}
}

// FuelTypeStats holds aggregates for one canonical fuel type.
type FuelTypeStats struct {
	FuelType string
	Count    int
	Min      float64
	Max      float64
	Avg      float64
	// Stations holds the distinct station names, sorted.
	Stations []string
}

// Report holds grouped and global statistics over all price records.
type Report struct {
	// ByFuelType follows the order of CanonicalFuelTypes and omits empty types.
	ByFuelType    []FuelTypeStats
	TotalRecords  int
	TotalStations int
}

// FuelTypeStatsJSON is the wire representation of FuelTypeStats.
type FuelTypeStatsJSON struct {
	Count int     `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
}

// ReportJSON is the response for the /api/estatisticas endpoint.
type ReportJSON struct {
	TotalRecords  int                          `json:"total_precos"`
	TotalStations int                          `json:"total_postos"`
	ByFuelType    map[string]FuelTypeStatsJSON `json:"estatisticas_por_tipo"`
}

// StatusResponse is the response for the /status endpoint.
type StatusResponse struct {
	Status           string         `json:"status"`
	UptimeSeconds    int64          `json:"uptime_seconds"`
	RefresherRunning bool           `json:"refresher_running"`
	LastRefreshAt    *time.Time     `json:"last_refresh_at,omitempty"`
	NextRefreshAt    *time.Time     `json:"next_refresh_at,omitempty"`
	Database         DatabaseStatus `json:"database"`
}

// DatabaseStatus holds the database connection status.
type DatabaseStatus struct {
	Driver             string `json:"driver"`
	Connected          bool   `json:"connected"`
	TotalRecordsStored int64  `json:"total_records_stored"`
}
