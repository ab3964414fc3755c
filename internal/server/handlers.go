package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/Konsultn-Engineering/valueset/binding"
	"github.com/Konsultn-Engineering/valueset/catalog"
	"github.com/Konsultn-Engineering/valueset/resolver"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type templateView struct {
	Query        string     `json:"query"`
	Placeholders []string   `json:"placeholders"`
	Columns      [][]string `json:"columns,omitempty"`
}

type tableView struct {
	TableID   string         `json:"tableId"`
	Templates []templateView `json:"templates"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: RequestID(r.Context())})
}

// handleLookup resolves the query string parameters. tableId restricts the
// search and every other key is a parameter. No parameters at all is a valid
// lookup: only templates without placeholders are eligible.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	query, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	tables := query[catalog.KeyTableID]
	params := binding.FromValues(query, catalog.KeyTableID)

	res, err := s.reloader.Engine().ResolveTables(r.Context(), tables, params)
	if err != nil {
		var unknown *resolver.UnknownTableError
		switch {
		case errors.As(err, &unknown):
			s.writeError(w, r, http.StatusNotFound, err)
		default:
			s.logger.Error("lookup failed", "request_id", RequestID(r.Context()), "error", err)
			s.writeError(w, r, http.StatusBadGateway, err)
		}
		return
	}
	if !res.Found() {
		writeJSON(w, http.StatusNotFound, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, res.Strings())
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	cat := s.reloader.Engine().Catalog()
	views := make([]tableView, 0, cat.Len())
	for _, t := range cat.Tables() {
		tv := tableView{TableID: t.ID, Templates: make([]templateView, 0, len(t.Templates))}
		for _, tmpl := range t.Templates {
			placeholders := tmpl.Placeholders
			if placeholders == nil {
				placeholders = []string{}
			}
			tv.Templates = append(tv.Templates, templateView{
				Query:        tmpl.Text,
				Placeholders: placeholders,
				Columns:      tmpl.Columns,
			})
		}
		views = append(views, tv)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
