package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/na2kera/ai-rent-navi/internal/address"
	"github.com/na2kera/ai-rent-navi/internal/entity"
	"github.com/na2kera/ai-rent-navi/internal/extract"
	"github.com/na2kera/ai-rent-navi/internal/history"
)

// Predictor asks the external model for a rent estimate.
type Predictor interface {
	Predict(ctx context.Context, input entity.PropertyInput) (entity.PredictionResult, error)
}

// AddressLookup resolves a 7-digit postal code to an address.
type AddressLookup interface {
	Lookup(ctx context.Context, code string) (address.Address, error)
}

// Server wires the judgment pipeline behind a JSON HTTP surface.
// Optional collaborators (lookup, extractor) may be nil; their routes then
// answer with a feature-disabled payload instead of failing at startup.
type Server struct {
	predictor Predictor
	lookup    AddressLookup
	extractor extract.FieldExtractor
	store     history.Store
	logger    *slog.Logger
}

func New(predictor Predictor, lookup AddressLookup, extractor extract.FieldExtractor, store history.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		predictor: predictor,
		lookup:    lookup,
		extractor: extractor,
		store:     store,
		logger:    logger,
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/form/validate", s.handleFormValidate)
		r.Post("/judgements", s.handleJudge)

		r.Get("/history", s.handleHistoryList)
		r.Delete("/history", s.handleHistoryClear)
		r.Get("/history/export", s.handleHistoryExport)
		r.Delete("/history/{id}", s.handleHistoryDelete)
		r.Get("/history/{id}/form", s.handleHistoryRestore)

		r.Post("/address/lookup", s.handleAddressLookup)
		r.Post("/extract", s.handleExtract)
		r.Get("/meta", s.handleMeta)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
