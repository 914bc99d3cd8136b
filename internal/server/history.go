package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/entity"
	"github.com/na2kera/ai-rent-navi/internal/form"
	"github.com/na2kera/ai-rent-navi/internal/history"
)

type historyListResponse struct {
	Items []entity.HistoryItem `json:"items"`
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context())
	if err != nil {
		// degraded storage reads as an empty history, never a dead screen
		s.logger.Warn("history.list_degraded", "error", err)
		items = nil
	}
	if items == nil {
		items = []entity.HistoryItem{}
	}
	writeJSON(w, http.StatusOK, historyListResponse{Items: items})
}

func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteOne(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearAll(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type restoreResponse struct {
	Values map[string]string `json:"values"`
}

// handleHistoryRestore returns a past judgement's input as stringified form
// values, ready to seed the form again.
func (s *Server) handleHistoryRestore(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, err := s.findItem(r, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	values := form.ValuesFromInput(history.Restore(item))
	out := make(map[string]string, len(values))
	for field, v := range values {
		out[string(field)] = v
	}
	writeJSON(w, http.StatusOK, restoreResponse{Values: out})
}

func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := history.ExportXLSX(items, s.logger)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("rent-judgements-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) findItem(r *http.Request, id string) (entity.HistoryItem, error) {
	items, err := s.store.List(r.Context())
	if err != nil {
		return entity.HistoryItem{}, err
	}
	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}
	return entity.HistoryItem{}, common.NewAppError("HISTORY_NOT_FOUND", "history item not found", common.ErrNotFound)
}
