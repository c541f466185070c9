package http

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/andygrunwald/fuel-prices/internal/models"
	"github.com/andygrunwald/fuel-prices/internal/prices"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index", "tabela", "estatisticas", "adicionar", "editar", "api_docs", "erro"}

// view is the data handed to every page template.
type view struct {
	Title  string
	Flash  *flashMessage
	Error  string
	Prices []models.PriceRecord
	Record models.PriceRecord
	Form   prices.Input
	Report models.Report
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer(locale string) (*renderer, error) {
	tag := language.BrazilianPortuguese
	if locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("parsing locale %q: %w", locale, err)
		}
		tag = parsed
	}

	funcs := template.FuncMap{
		"money": func(v float64) string {
			return message.NewPrinter(tag).Sprintf("R$ %.2f", v)
		},
		"datetime": func(t time.Time) string {
			return t.Local().Format("02/01/2006 15:04")
		},
		"fuelOptions": fuelOptions,
	}

	r := &renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

func (r *renderer) execute(w io.Writer, page string, v view) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.Execute(w, v)
}

// fuelOptions lists the canonical fuel types plus current when it is not one
// of them, so editing a record never silently changes its type.
func fuelOptions(current string) []string {
	if current == "" || models.IsCanonicalFuelType(current) {
		return models.CanonicalFuelTypes
	}
	return append([]string{current}, models.CanonicalFuelTypes...)
}

// formFromRecord pre-fills the edit form.
func formFromRecord(p models.PriceRecord) prices.Input {
	return prices.Input{
		StationName: p.StationName,
		Address:     p.Address,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		FuelType:    p.FuelType,
	}
}
