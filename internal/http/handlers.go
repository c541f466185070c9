package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/andygrunwald/fuel-prices/internal/models"
	"github.com/andygrunwald/fuel-prices/internal/prices"
)

const (
	msgAdded       = "Preço adicionado com sucesso!"
	msgUpdated     = "Preço atualizado com sucesso!"
	msgDeleted     = "Preço removido com sucesso!"
	msgAddFailed   = "Erro ao adicionar preço. Tente novamente."
	msgEditFailed  = "Erro ao atualizar preço. Tente novamente."
	msgDelFailed   = "Erro ao remover preço. Tente novamente."
	msgLoadFailed  = "Erro ao carregar os preços. Tente novamente."
	msgNotFound    = "Preço não encontrado."
	msgInvalidForm = "Formulário inválido."
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderList(w, r, "index", "Preços de Combustível")
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	s.renderList(w, r, "tabela", "Tabela de Preços")
}

func (s *Server) renderList(w http.ResponseWriter, r *http.Request, page, title string) {
	list, err := s.prices.List(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("listing prices")
		s.renderError(w, r, http.StatusInternalServerError, msgLoadFailed)
		return
	}
	s.render(w, r, http.StatusOK, page, view{Title: title, Prices: list})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Compute(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("computing statistics")
		s.renderError(w, r, http.StatusInternalServerError, msgLoadFailed)
		return
	}
	s.render(w, r, http.StatusOK, "estatisticas", view{Title: "Estatísticas", Report: report})
}

func (s *Server) handleAPIDocs(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "api_docs", view{Title: "Documentação da API"})
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "adicionar", view{
		Title: "Adicionar Preço",
		Form:  prices.Input{FuelType: models.DefaultFuelType},
	})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, msgInvalidForm)
		return
	}
	in := formInput(r)

	_, err := s.prices.Add(r.Context(), in)
	if err != nil {
		status, msg := s.formFailure(r, err, msgAddFailed)
		s.render(w, r, status, "adicionar", view{Title: "Adicionar Preço", Form: in, Error: msg})
		return
	}

	setFlash(w, flashSuccess, msgAdded)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	p, err := s.prices.Get(r.Context(), id)
	if errors.Is(err, prices.ErrNotFound) {
		s.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("id", id).Msg("loading price")
		s.renderError(w, r, http.StatusInternalServerError, msgLoadFailed)
		return
	}

	s.render(w, r, http.StatusOK, "editar", view{Title: "Editar Preço", Record: p, Form: formFromRecord(p)})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, msgInvalidForm)
		return
	}
	in := formInput(r)

	_, err := s.prices.Edit(r.Context(), id, in)
	if errors.Is(err, prices.ErrNotFound) {
		s.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		status, msg := s.formFailure(r, err, msgEditFailed)
		s.render(w, r, status, "editar", view{
			Title:  "Editar Preço",
			Record: models.PriceRecord{ID: id},
			Form:   in,
			Error:  msg,
		})
		return
	}

	setFlash(w, flashSuccess, msgUpdated)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	}

	err := s.prices.Delete(r.Context(), id)
	switch {
	case errors.Is(err, prices.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, msgNotFound)
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("id", id).Msg("deleting price")
		setFlash(w, flashError, msgDelFailed)
	default:
		setFlash(w, flashSuccess, msgDeleted)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formFailure maps an add/edit error to a status code and user message.
func (s *Server) formFailure(r *http.Request, err error, storeMsg string) (int, string) {
	var verr *prices.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "Dados inválidos: " + verr.Message + "."
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("saving price")
	return http.StatusInternalServerError, storeMsg
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	v.Flash = popFlash(w, r)

	var buf bytes.Buffer
	if err := s.templates.execute(&buf, page, v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("rendering template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("writing response")
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.render(w, r, status, "erro", view{Title: http.StatusText(status), Error: msg})
}

func formInput(r *http.Request) prices.Input {
	return prices.Input{
		StationName: r.PostFormValue("posto"),
		Address:     r.PostFormValue("endereco"),
		Price:       r.PostFormValue("preco"),
		FuelType:    r.PostFormValue("tipo_combustivel"),
	}
}

// pathID parses the {id} wildcard. Non-numeric ids are treated as unknown.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
