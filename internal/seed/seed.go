// Package seed generates plausible sample fuel prices for Montes Claros - MG.
package seed

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

// Station is a gas station from the sample catalog.
type Station struct {
	Name    string
	Address string
}

// Stations is the fixed sample catalog.
var Stations = []Station{
	{"Posto Ipiranga Centro", "Av. Coronel Prates, 123 - Centro, Montes Claros - MG"},
	{"Shell Select Major Lopes", "Av. Major Lopes, 456 - Major Lopes, Montes Claros - MG"},
	{"BR Petrobras Ibituruna", "Av. Ibituruna, 789 - Ibituruna, Montes Claros - MG"},
	{"Ale Combustíveis", "Rua Urbino Viana, 321 - Centro, Montes Claros - MG"},
	{"Posto Bandeira Branca", "Av. Cula Mangabeira, 654 - Santo Expedito, Montes Claros - MG"},
	{"Texaco Vila Mauricéia", "Rua Coronel Celestino, 987 - Vila Mauricéia, Montes Claros - MG"},
	{"Posto do Zé - São Geraldo", "Av. São Geraldo, 147 - São Geraldo, Montes Claros - MG"},
	{"Auto Posto Eldorado", "Av. Dulce Sarmento, 258 - Eldorado, Montes Claros - MG"},
	{"Posto Universitário", "Av. Rui Braga, 369 - Vila Universitária, Montes Claros - MG"},
	{"Ipiranga Todos os Santos", "Rua Todos os Santos, 741 - Todos os Santos, Montes Claros - MG"},
	{"Shell Morrinhos", "Av. dos Morrinhos, 852 - Morrinhos, Montes Claros - MG"},
	{"BR Distribuidora Planalto", "Rua do Planalto, 963 - Planalto, Montes Claros - MG"},
	{"Posto Cidade Nova", "Av. Cidade Nova, 159 - Cidade Nova, Montes Claros - MG"},
	{"Auto Posto JK", "Av. Juscelino Kubitschek, 357 - JK, Montes Claros - MG"},
	{"Petrobras Vila Atlântida", "Rua Vila Atlântida, 486 - Vila Atlântida, Montes Claros - MG"},
}

// Band is a price range in BRL per liter.
type Band struct {
	Min float64
	Max float64
}

// PriceBands holds the realistic price range per canonical fuel type.
var PriceBands = map[string]Band{
	models.FuelRegular:   {5.20, 5.80},
	models.FuelPremium:   {5.40, 6.00},
	models.FuelEthanol:   {3.80, 4.40},
	models.FuelDiesel:    {5.80, 6.40},
	models.FuelDieselS10: {6.00, 6.60},
}

var fallbackBand = Band{5.00, 6.00}

const (
	minFuelTypesPerStation = 2
	maxFuelTypesPerStation = 4
)

// Generator produces sample price records.
type Generator struct {
	rng    *rand.Rand
	now    func() time.Time
	maxAge time.Duration
}

// NewGenerator creates a Generator. The same seed yields the same records for
// the same clock.
func NewGenerator(seed int64, maxAge time.Duration) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		now:    time.Now,
		maxAge: maxAge,
	}
}

// SetClock replaces the reference time for generated timestamps.
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

// Generate returns two to four records per catalog station, each with a
// distinct fuel type.
func (g *Generator) Generate() []models.PriceRecord {
	now := g.now().UTC()
	records := make([]models.PriceRecord, 0, len(Stations)*maxFuelTypesPerStation)

	for _, st := range Stations {
		n := minFuelTypesPerStation + g.rng.IntN(maxFuelTypesPerStation-minFuelTypesPerStation+1)
		for _, idx := range g.rng.Perm(len(models.CanonicalFuelTypes))[:n] {
			fuelType := models.CanonicalFuelTypes[idx]
			records = append(records, models.PriceRecord{
				StationName: st.Name,
				Address:     st.Address,
				Price:       g.Price(fuelType),
				FuelType:    fuelType,
				UpdatedAt:   g.timestamp(now),
			})
		}
	}

	return records
}

// Price draws a price from the fuel type's band, rounded to cents.
func (g *Generator) Price(fuelType string) float64 {
	band, ok := PriceBands[fuelType]
	if !ok {
		band = fallbackBand
	}
	v := band.Min + g.rng.Float64()*(band.Max-band.Min)
	return math.Round(v*100) / 100
}

// timestamp picks a minute-aligned moment within maxAge before now.
func (g *Generator) timestamp(now time.Time) time.Time {
	minutes := int64(g.maxAge / time.Minute)
	if minutes <= 0 {
		return now
	}
	return now.Add(-time.Duration(g.rng.Int64N(minutes+1)) * time.Minute)
}
