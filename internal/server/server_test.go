package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/na2kera/ai-rent-navi/internal/address"
	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/entity"
	"github.com/na2kera/ai-rent-navi/internal/extract"
	"github.com/na2kera/ai-rent-navi/internal/history"
)

type fakePredictor struct {
	result entity.PredictionResult
	err    error
	got    entity.PropertyInput
}

func (f *fakePredictor) Predict(_ context.Context, input entity.PropertyInput) (entity.PredictionResult, error) {
	f.got = input
	return f.result, f.err
}

type fakeLookup struct {
	addr address.Address
	err  error
}

func (f *fakeLookup) Lookup(context.Context, string) (address.Address, error) {
	return f.addr, f.err
}

type fakeExtractor struct {
	fields extract.PropertyFields
	err    error
}

func (f *fakeExtractor) ExtractFields(context.Context, extract.ExtractRequest) (extract.PropertyFields, []byte, error) {
	return f.fields, nil, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, predictor Predictor, lookup AddressLookup, extractor extract.FieldExtractor) (*httptest.Server, history.Store) {
	t.Helper()
	store := history.NewSlotStore(filepath.Join(t.TempDir(), "history.json"), 50, testLogger())
	srv := New(predictor, lookup, extractor, store, testLogger())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func cleanFormValues() map[string]string {
	return map[string]string{
		"prefecture":            "東京都",
		"city":                  "杉並区",
		"nearest_station":       "阿佐ヶ谷駅",
		"distance_from_station": "5",
		"area":                  "25",
		"age":                   "10",
		"structure":             "3",
		"layout":                "2",
		"rent":                  "90000",
	}
}

func marketResult() entity.PredictionResult {
	return entity.PredictionResult{
		PredictedRent:   85000,
		ReasonableRange: entity.ReasonableRange{Min: 80000, Max: 90000},
		PriceEvaluation: 3,
		Difference:      5000,
		IsReasonable:    true,
		Message:         "現在の家賃は相場通り",
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{}, nil, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestFormValidateFullPass(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{}, nil, nil)

	resp := postJSON(t, ts.URL+"/api/v1/form/validate", map[string]any{
		"values": map[string]string{"rent": "abc"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}](t, resp)

	if body.Valid {
		t.Fatal("form with bad rent must not be valid")
	}
	if body.Errors["rent"] != "半角数字のみ入力してください。(小数不可)" {
		t.Errorf("rent error = %q", body.Errors["rent"])
	}
	if body.Errors["prefecture"] != "必須項目です。" {
		t.Errorf("prefecture error = %q", body.Errors["prefecture"])
	}
}

func TestFormValidateScoped(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{}, nil, nil)

	// only rent changed; the existing prefecture error must survive untouched
	resp := postJSON(t, ts.URL+"/api/v1/form/validate", map[string]any{
		"values":        map[string]string{"rent": "90000"},
		"changed_field": "rent",
		"errors":        map[string]string{"prefecture": "必須項目です。", "rent": "必須項目です。"},
	})
	body := decodeBody[struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}](t, resp)

	if _, ok := body.Errors["rent"]; ok {
		t.Errorf("rent error should be cleared, got %q", body.Errors["rent"])
	}
	if body.Errors["prefecture"] != "必須項目です。" {
		t.Errorf("prefecture error lost: %v", body.Errors)
	}
}

func TestFormValidateAcceptsCleanFixture(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{}, nil, nil)

	resp := postJSON(t, ts.URL+"/api/v1/form/validate", map[string]any{
		"values": cleanFormValues(),
	})
	body := decodeBody[struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}](t, resp)

	if !body.Valid {
		t.Fatalf("clean form reported invalid: %v", body.Errors)
	}
}

func TestJudgeRejectsDecimalArea(t *testing.T) {
	ts, store := newTestServer(t, &fakePredictor{result: marketResult()}, nil, nil)

	values := cleanFormValues()
	values["area"] = "25.5"
	resp := postJSON(t, ts.URL+"/api/v1/judgements", map[string]any{"values": values})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody[struct {
		Errors map[string]string `json:"errors"`
	}](t, resp)
	if body.Errors["area"] != "半角数字のみ入力してください。(小数不可)" {
		t.Errorf("area error = %q", body.Errors["area"])
	}

	items, _ := store.List(context.Background())
	if len(items) != 0 {
		t.Fatal("rejected submission must not reach the history")
	}
}

func TestJudgeHappyPath(t *testing.T) {
	predictor := &fakePredictor{result: marketResult()}
	ts, store := newTestServer(t, predictor, nil, nil)

	resp := postJSON(t, ts.URL+"/api/v1/judgements", map[string]any{"values": cleanFormValues()})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	body := decodeBody[struct {
		Item entity.HistoryItem `json:"item"`
	}](t, resp)

	if body.Item.ID == "" {
		t.Fatal("judgement must carry a history id")
	}
	if body.Item.Result.PredictedRent != 85000 {
		t.Errorf("predicted rent = %d, want 85000", body.Item.Result.PredictedRent)
	}
	// station suffix is stripped before prediction
	if predictor.got.NearestStation != "阿佐ヶ谷" {
		t.Errorf("station sent to predictor = %q", predictor.got.NearestStation)
	}

	items, _ := store.List(context.Background())
	if len(items) != 1 {
		t.Fatalf("history has %d items, want 1", len(items))
	}
}

func TestJudgeValidationFailure(t *testing.T) {
	ts, store := newTestServer(t, &fakePredictor{result: marketResult()}, nil, nil)

	values := cleanFormValues()
	values["rent"] = ""
	resp := postJSON(t, ts.URL+"/api/v1/judgements", map[string]any{"values": values})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody[struct {
		Errors map[string]string `json:"errors"`
	}](t, resp)
	if body.Errors["rent"] != "必須項目です。" {
		t.Errorf("rent error = %q", body.Errors["rent"])
	}

	items, _ := store.List(context.Background())
	if len(items) != 0 {
		t.Fatal("rejected submission must not reach the history")
	}
}

func TestJudgeUnsupportedRegion(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{result: marketResult()}, nil, nil)

	values := cleanFormValues()
	values["city"] = "港区"
	resp := postJSON(t, ts.URL+"/api/v1/judgements", map[string]any{"values": values})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody[struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}](t, resp)
	if body.Code != "REGION_NOT_SUPPORTED" {
		t.Errorf("code = %q", body.Code)
	}
	if !strings.Contains(body.Error, "杉並区") {
		t.Errorf("error must enumerate valid cities, got %q", body.Error)
	}
}

func TestJudgePredictorDown(t *testing.T) {
	predictor := &fakePredictor{err: common.TransportError("接続エラー", nil)}
	ts, _ := newTestServer(t, predictor, nil, nil)

	resp := postJSON(t, ts.URL+"/api/v1/judgements", map[string]any{"values": cleanFormValues()})
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestHistoryLifecycle(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{result: marketResult()}, nil, nil)

	for i := 0; i < 2; i++ {
		resp := postJSON(t, ts.URL+"/api/v1/judgements", map[string]any{"values": cleanFormValues()})
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/v1/history")
	if err != nil {
		t.Fatal(err)
	}
	list := decodeBody[struct {
		Items []entity.HistoryItem `json:"items"`
	}](t, resp)
	if len(list.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(list.Items))
	}

	// delete one
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/history/"+list.Items[0].ID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", delResp.StatusCode)
	}

	// restore the remaining one as form values
	resp, err = http.Get(ts.URL + "/api/v1/history/" + list.Items[1].ID + "/form")
	if err != nil {
		t.Fatal(err)
	}
	restored := decodeBody[struct {
		Values map[string]string `json:"values"`
	}](t, resp)
	if restored.Values["city"] != "杉並区" {
		t.Errorf("restored city = %q", restored.Values["city"])
	}
	if restored.Values["rent"] != "90000" {
		t.Errorf("restored rent = %q", restored.Values["rent"])
	}

	// clear all
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/history", nil)
	clrResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	clrResp.Body.Close()
	if clrResp.StatusCode != http.StatusNoContent {
		t.Fatalf("clear status = %d, want 204", clrResp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/v1/history")
	if err != nil {
		t.Fatal(err)
	}
	list = decodeBody[struct {
		Items []entity.HistoryItem `json:"items"`
	}](t, resp)
	if len(list.Items) != 0 {
		t.Fatalf("got %d items after clear, want 0", len(list.Items))
	}
}

func TestHistoryRestoreUnknownID(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{}, nil, nil)
	resp, err := http.Get(ts.URL + "/api/v1/history/nope/form")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHistoryExport(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{result: marketResult()}, nil, nil)
	postJSON(t, ts.URL+"/api/v1/judgements", map[string]any{"values": cleanFormValues()}).Body.Close()

	resp, err := http.Get(ts.URL + "/api/v1/history/export")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}
	data, _ := io.ReadAll(resp.Body)
	if len(data) == 0 {
		t.Fatal("empty export body")
	}
}

func TestAddressLookup(t *testing.T) {
	lookup := &fakeLookup{addr: address.Address{Prefecture: "東京都", City: "杉並区", Town: "阿佐谷南"}}
	ts, _ := newTestServer(t, &fakePredictor{}, lookup, nil)

	resp := postJSON(t, ts.URL+"/api/v1/address/lookup", map[string]string{"postal_code": "1660004"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[struct {
		Prefecture string `json:"prefecture"`
		City       string `json:"city"`
	}](t, resp)
	if body.Prefecture != "東京都" || body.City != "杉並区" {
		t.Errorf("got %+v", body)
	}
}

func TestAddressLookupInvalidCode(t *testing.T) {
	lookup := &fakeLookup{err: common.NewAppError("POSTAL_CODE_INVALID", address.MsgInvalidPostalCode, common.ErrInvalidInput)}
	ts, _ := newTestServer(t, &fakePredictor{}, lookup, nil)

	resp := postJSON(t, ts.URL+"/api/v1/address/lookup", map[string]string{"postal_code": "166"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decodeBody[struct {
		Error string `json:"error"`
	}](t, resp)
	if body.Error != address.MsgInvalidPostalCode {
		t.Errorf("error = %q", body.Error)
	}
}

func TestAddressLookupDisabled(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{}, nil, nil)
	resp := postJSON(t, ts.URL+"/api/v1/address/lookup", map[string]string{"postal_code": "1660004"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestExtract(t *testing.T) {
	rent := 90000
	city := "杉並区"
	extractor := &fakeExtractor{fields: extract.PropertyFields{City: &city, Rent: &rent}}
	ts, _ := newTestServer(t, &fakePredictor{}, nil, extractor)

	resp := postJSON(t, ts.URL+"/api/v1/extract", map[string]string{
		"image_base64": base64.StdEncoding.EncodeToString([]byte("fake image bytes")),
		"mime_type":    "image/png",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[struct {
		Values map[string]string `json:"values"`
	}](t, resp)
	if body.Values["city"] != "杉並区" || body.Values["rent"] != "90000" {
		t.Errorf("values = %v", body.Values)
	}
	if _, ok := body.Values["area"]; ok {
		t.Error("absent fields must stay absent")
	}
}

func TestExtractDisabled(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{}, nil, nil)
	resp := postJSON(t, ts.URL+"/api/v1/extract", map[string]string{"image_base64": "aGk="})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
}

func TestExtractBadBase64(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{}, nil, &fakeExtractor{})
	resp := postJSON(t, ts.URL+"/api/v1/extract", map[string]string{"image_base64": "%%%not-base64%%%"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMeta(t *testing.T) {
	ts, _ := newTestServer(t, &fakePredictor{}, nil, nil)
	resp, err := http.Get(ts.URL + "/api/v1/meta")
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody[struct {
		Prefectures []string            `json:"prefectures"`
		Regions     map[string][]string `json:"regions"`
		Structures  map[int]string      `json:"structures"`
		Layouts     map[int]string      `json:"layouts"`
	}](t, resp)

	if len(body.Prefectures) != 1 || body.Prefectures[0] != "東京都" {
		t.Errorf("prefectures = %v", body.Prefectures)
	}
	if len(body.Regions["東京都"]) != 5 {
		t.Errorf("regions = %v", body.Regions)
	}
	if body.Structures[3] != "RC造 (鉄筋コンクリート造)" {
		t.Errorf("structures = %v", body.Structures)
	}
	if body.Layouts[12] != "4LDK以上" {
		t.Errorf("layouts = %v", body.Layouts)
	}
}
