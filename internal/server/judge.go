package server

import (
	"encoding/json"
	"net/http"

	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/entity"
	"github.com/na2kera/ai-rent-navi/internal/form"
)

type validateRequest struct {
	Values       map[string]string `json:"values"`
	ChangedField string            `json:"changed_field,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
}

type validateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

func toFormValues(in map[string]string) form.Values {
	values := make(form.Values, len(in))
	for k, v := range in {
		values[form.Field(k)] = v
	}
	return values
}

func toFormErrors(in map[string]string) form.Errors {
	errs := make(form.Errors, len(in))
	for k, v := range in {
		errs[form.Field(k)] = v
	}
	return errs
}

// handleFormValidate runs one validation pass. With changed_field set only
// that field is revalidated and merged into the submitted error map, the
// same incremental behavior the form applies on every keystroke.
func (s *Server) handleFormValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.NewAppError("BAD_REQUEST", "invalid JSON body", common.ErrInvalidInput))
		return
	}

	errs := form.Validate(toFormValues(req.Values), toFormErrors(req.Errors), form.Field(req.ChangedField))
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:  len(errs) == 0,
		Errors: fieldErrors(errs),
	})
}

type judgeRequest struct {
	Values map[string]string `json:"values"`
}

type judgeResponse struct {
	Item entity.HistoryItem `json:"item"`
}

// handleJudge is the full submission path: validate, predict, record.
func (s *Server) handleJudge(w http.ResponseWriter, r *http.Request) {
	var req judgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.NewAppError("BAD_REQUEST", "invalid JSON body", common.ErrInvalidInput))
		return
	}

	state := form.NewStateFromValues(toFormValues(req.Values))
	input, err := state.Submit()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.predictor.Predict(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	item, err := s.store.Append(r.Context(), input, result)
	if err != nil {
		// the judgment succeeded; losing the history row should not hide it
		s.logger.Error("history.append_failed", "error", err)
		item = entity.HistoryItem{Input: input, Result: result}
	}

	writeJSON(w, http.StatusCreated, judgeResponse{Item: item})
}
