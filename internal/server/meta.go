package server

import (
	"net/http"

	"github.com/na2kera/ai-rent-navi/constants"
)

type metaResponse struct {
	Prefectures []string            `json:"prefectures"`
	Regions     map[string][]string `json:"regions"`
	Structures  map[int]string      `json:"structures"`
	Layouts     map[int]string      `json:"layouts"`
}

// handleMeta publishes the label dictionaries the form renders its select
// inputs from, so the vocabulary lives in exactly one place.
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metaResponse{
		Prefectures: constants.Prefectures,
		Regions:     constants.RegionMapping(),
		Structures:  constants.StructureLabels(),
		Layouts:     constants.LayoutLabels(),
	})
}
