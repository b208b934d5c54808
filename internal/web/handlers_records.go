package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/giftcrm/internal/record"
)

// kindParam validates the {kind} URL parameter, answering 400 itself when
// it is not a live collection.
func kindParam(w http.ResponseWriter, r *http.Request) (record.Kind, bool) {
	kind, err := record.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return "", false
	}
	return kind, true
}

func nonNil(recs []record.Record) []record.Record {
	if recs == nil {
		return []record.Record{}
	}
	return recs
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	includeDeleted, _ := strconv.ParseBool(r.URL.Query().Get("includeDeleted"))

	recs, err := s.service.LoadRecords(r.Context(), kind, includeDeleted)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}

// handleReplaceRecords overwrites the whole collection with the body.
func (s *Server) handleReplaceRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var recs []record.Record
	if err := decodeJSON(r, &recs); err != nil {
		respondError(w, r, err, 0)
		return
	}

	if err := s.service.SaveRecords(withClient(r), kind, nonNil(recs)); err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": len(recs)})
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var rec record.Record
	if err := decodeJSON(r, &rec); err != nil {
		respondError(w, r, err, 0)
		return
	}

	added, err := s.service.AddRecord(withClient(r), kind, rec)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

type bulkEditRequest struct {
	IDs    []record.ID       `json:"ids"`
	Fields map[string]string `json:"fields"`
}

func (s *Server) handleBulkEdit(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var req bulkEditRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err, 0)
		return
	}

	n, err := s.service.BulkEdit(withClient(r), kind, req.IDs, req.Fields)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// handleDeleteRecord soft-deletes one record.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id := record.ID(chi.URLParam(r, "id"))

	if err := s.service.SoftDelete(withClient(r), kind, id); err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListDeleted(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.LoadDeleted(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(recs))
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	id := record.ID(chi.URLParam(r, "id"))

	var kind record.Kind
	if q := r.URL.Query().Get("kind"); q != "" {
		k, err := record.ParseKind(q)
		if err != nil {
			respondError(w, r, err, 0)
			return
		}
		kind = k
	}

	rec, err := s.service.Restore(withClient(r), kind, id)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.service.Settings(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handlePutSettings stores the body and answers with the normalized form.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var st record.Settings
	if err := decodeJSON(r, &st); err != nil {
		respondError(w, r, err, 0)
		return
	}

	saved, err := s.service.SaveSettings(withClient(r), st)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
