package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/extract"
)

type lookupRequest struct {
	PostalCode string `json:"postal_code"`
}

type lookupResponse struct {
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Town       string `json:"town,omitempty"`
}

func (s *Server) handleAddressLookup(w http.ResponseWriter, r *http.Request) {
	if s.lookup == nil {
		s.writeError(w, r, common.NewAppError("FEATURE_DISABLED", "住所検索は現在利用できません。", common.ErrFeatureOff))
		return
	}

	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.NewAppError("BAD_REQUEST", "invalid JSON body", common.ErrInvalidInput))
		return
	}

	addr, err := s.lookup.Lookup(r.Context(), req.PostalCode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{
		Prefecture: addr.Prefecture,
		City:       addr.City,
		Town:       addr.Town,
	})
}

type extractHTTPRequest struct {
	ImageBase64 string `json:"image_base64"`
	MIMEType    string `json:"mime_type"`
}

type extractHTTPResponse struct {
	Values map[string]string `json:"values"`
}

// handleExtract decodes the uploaded image, hands it to the field extractor
// and answers with form values ready to merge into the form. Fields the
// model could not read are simply absent.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.writeError(w, r, common.NewAppError("FEATURE_DISABLED", "画像読み取りは現在利用できません。", common.ErrFeatureOff))
		return
	}

	var req extractHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, common.NewAppError("BAD_REQUEST", "invalid JSON body", common.ErrInvalidInput))
		return
	}
	if req.ImageBase64 == "" {
		s.writeError(w, r, common.NewAppError("BAD_REQUEST", "image_base64 is required", common.ErrInvalidInput))
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		s.writeError(w, r, common.NewAppError("BAD_REQUEST", "image_base64 is not valid base64", common.ErrInvalidInput))
		return
	}
	mime := req.MIMEType
	if mime == "" {
		mime = http.DetectContentType(data)
	}

	fields, _, err := s.extractor.ExtractFields(r.Context(), extract.ExtractRequest{
		ImageData: data,
		MIMEType:  mime,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	values := fields.FormValues()
	out := make(map[string]string, len(values))
	for field, v := range values {
		out[string(field)] = v
	}
	writeJSON(w, http.StatusOK, extractHTTPResponse{Values: out})
}
