package rounding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*Handler, *echo.Echo) {
	t.Helper()
	svc, _ := newTestService(t)
	return NewHandler(svc), echo.New()
}

func newJSONContext(e *echo.Echo, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, "/", nil)
	} else {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Errorf("expected %d, got %d", code, he.Code)
	}
}

func TestHandler_ListSheets(t *testing.T) {
	h, e := newTestHandler(t)
	c, rec := newJSONContext(e, http.MethodGet, "")
	if err := h.ListSheets(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Data  []Sheet `json:"data"`
		Total int     `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 3 || len(resp.Data) != 3 {
		t.Errorf("expected 3 sheets, got %d", resp.Total)
	}
}

func TestHandler_CreateSheet(t *testing.T) {
	h, e := newTestHandler(t)
	c, rec := newJSONContext(e, http.MethodPost, `{"patient_name":"Walk In"}`)
	if err := h.CreateSheet(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var s Sheet
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.PatientName != "Walk In" || s.Checklist.Len() != len(DefaultChecklist) {
		t.Errorf("unexpected sheet: %+v", s)
	}
}

func TestHandler_CreateSheet_BlankName(t *testing.T) {
	h, e := newTestHandler(t)
	c, _ := newJSONContext(e, http.MethodPost, `{"patient_name":""}`)
	expectHTTPError(t, h.CreateSheet(c), http.StatusBadRequest)
}

func TestHandler_GetSheet(t *testing.T) {
	h, e := newTestHandler(t)
	s := firstSheet(t, h.svc)

	c, rec := newJSONContext(e, http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	if err := h.GetSheet(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetSheet_Errors(t *testing.T) {
	h, e := newTestHandler(t)

	c, _ := newJSONContext(e, http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	expectHTTPError(t, h.GetSheet(c), http.StatusBadRequest)

	c, _ = newJSONContext(e, http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	expectHTTPError(t, h.GetSheet(c), http.StatusNotFound)
}

func TestHandler_GetNote(t *testing.T) {
	h, e := newTestHandler(t)
	s := firstSheet(t, h.svc)

	c, rec := newJSONContext(e, http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	if err := h.GetNote(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMETextPlain) {
		t.Errorf("expected text/plain, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), s.PatientName) {
		t.Errorf("note does not mention %q", s.PatientName)
	}
}

func TestHandler_UpdateSheet(t *testing.T) {
	h, e := newTestHandler(t)
	s := firstSheet(t, h.svc)

	c, rec := newJSONContext(e, http.MethodPatch, `{"labs":"Na 141","vitals":{"map":80,"peep":0}}`)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	if err := h.UpdateSheet(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Sheet
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Labs != "Na 141" {
		t.Errorf("expected labs updated, got %q", got.Labs)
	}
	if got.Vitals.PEEP == nil || *got.Vitals.PEEP != 0 {
		t.Error("expected PEEP of 0 to be kept as a present value")
	}
}

func TestHandler_UpdateSheet_ClearDayOfAdmit(t *testing.T) {
	h, e := newTestHandler(t)
	s := firstSheet(t, h.svc)

	c, rec := newJSONContext(e, http.MethodPatch, `{"clear_day_of_admit":true}`)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	if err := h.UpdateSheet(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Sheet
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DayOfAdmit != nil {
		t.Errorf("expected day of admit absent, got %d", *got.DayOfAdmit)
	}
}

func TestHandler_UpdateSheet_Invalid(t *testing.T) {
	h, e := newTestHandler(t)
	s := firstSheet(t, h.svc)

	c, _ := newJSONContext(e, http.MethodPatch, `{"neuro_exam":{"gcs_total":2}}`)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	expectHTTPError(t, h.UpdateSheet(c), http.StatusBadRequest)
}

func TestHandler_ToggleChecklist(t *testing.T) {
	h, e := newTestHandler(t)
	s := firstSheet(t, h.svc)

	c, rec := newJSONContext(e, http.MethodPost, `{"label":"Family update"}`)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	if err := h.ToggleChecklist(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, _ = newJSONContext(e, http.MethodPost, `{"label":"Nope"}`)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	expectHTTPError(t, h.ToggleChecklist(c), http.StatusBadRequest)
}

func TestHandler_ApplyDiagnosis(t *testing.T) {
	h, e := newTestHandler(t)
	s := firstSheet(t, h.svc)

	c, rec := newJSONContext(e, http.MethodPost, `{"diagnosis_type":"seizure"}`)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	if err := h.ApplyDiagnosis(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"diagnosis_type":"seizure"`) {
		t.Errorf("expected seizure tag in %s", rec.Body.String())
	}
}

func TestHandler_ProblemsAndTasks(t *testing.T) {
	h, e := newTestHandler(t)
	s := firstSheet(t, h.svc)

	c, rec := newJSONContext(e, http.MethodPost, `{"title":"Hyponatremia","plan":"- Na q6h"}`)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	if err := h.AddProblem(c); err != nil {
		t.Fatalf("AddProblem: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Sheet
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	pid := got.Problems[len(got.Problems)-1].ID

	c, _ = newJSONContext(e, http.MethodDelete, "")
	c.SetParamNames("id", "pid")
	c.SetParamValues(s.ID.String(), pid.String())
	if err := h.RemoveProblem(c); err != nil {
		t.Fatalf("RemoveProblem: %v", err)
	}

	c, rec = newJSONContext(e, http.MethodPost, `{"text":"Repeat CTA","due":"PM","priority":"urgent"}`)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())
	if err := h.AddTask(c); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	tid := got.Tasks[len(got.Tasks)-1].ID

	c, rec = newJSONContext(e, http.MethodPatch, `{"done":true}`)
	c.SetParamNames("id", "tid")
	c.SetParamValues(s.ID.String(), tid.String())
	if err := h.UpdateTask(c); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	got = Sheet{}
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if last := got.Tasks[len(got.Tasks)-1]; !last.Done || last.Priority != "urgent" {
		t.Errorf("unexpected task: %+v", last)
	}

	c, _ = newJSONContext(e, http.MethodDelete, "")
	c.SetParamNames("id", "tid")
	c.SetParamValues(s.ID.String(), uuid.New().String())
	expectHTTPError(t, h.RemoveTask(c), http.StatusNotFound)
}

func TestHandler_DeleteSheet_LastIsConflict(t *testing.T) {
	h, e := newTestHandler(t)
	items, _, _ := h.svc.ListSheets(context.Background(), 0, 0)

	for i, s := range items {
		c, rec := newJSONContext(e, http.MethodDelete, "")
		c.SetParamNames("id")
		c.SetParamValues(s.ID.String())
		err := h.DeleteSheet(c)
		if i == len(items)-1 {
			expectHTTPError(t, err, http.StatusConflict)
			continue
		}
		if err != nil {
			t.Fatalf("DeleteSheet: %v", err)
		}
		if rec.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rec.Code)
		}
	}
}

func TestHandler_ResetWorkspace(t *testing.T) {
	h, e := newTestHandler(t)
	c, rec := newJSONContext(e, http.MethodPost, "")
	if err := h.ResetWorkspace(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
