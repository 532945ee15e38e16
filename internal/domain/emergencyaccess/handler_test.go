package emergencyaccess

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/recordgate/recordgate/internal/platform/auth"
)

func authed(req *http.Request, identity string, roles ...string) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserIDKey, identity)
	ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
	return req.WithContext(ctx)
}

func TestHandlerGrant(t *testing.T) {
	rec := sensitiveRecord()
	svc, _, _, _ := newTestService(rec)
	h := NewHandler(svc)

	e := echo.New()
	body := `{"reason":"patient unresponsive in ED"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = authed(req, "dr-er", "EMERGENCY")
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)
	c.SetParamNames("id")
	c.SetParamValues(rec.ID.String())

	if err := h.Grant(c); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"break_glass_access":true`) {
		t.Errorf("response missing break glass flag: %s", w.Body.String())
	}
}

// Break glass may be armed only by EMERGENCY_ACCESS, EMERGENCY or PHYSICIAN
// (plus the blanket ADMIN override). Other clinical roles go through the
// normal policy instead.
func TestGrantRouteRoleGate(t *testing.T) {
	tests := []struct {
		role       string
		wantStatus int
	}{
		{"EMERGENCY_ACCESS", http.StatusOK},
		{"EMERGENCY", http.StatusOK},
		{"PHYSICIAN", http.StatusOK},
		{"NURSE_PRACTITIONER", http.StatusForbidden},
		{"NURSE", http.StatusForbidden},
		{"SPECIALIST", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			rec := sensitiveRecord()
			svc, _, _, _ := newTestService(rec)
			e := echo.New()
			NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))

			target := "/api/v1/medical-records/" + rec.ID.String() + "/emergency-access"
			req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(`{"reason":"patient unresponsive"}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req = authed(req, "clinician-1", tt.role)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestHandlerGrantRequiresReason(t *testing.T) {
	rec := sensitiveRecord()
	svc, _, _, _ := newTestService(rec)
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = authed(req, "dr-er", "EMERGENCY")
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)
	c.SetParamNames("id")
	c.SetParamValues(rec.ID.String())

	err := h.Grant(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandlerGrantUnknownRecord(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	h := NewHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"code blue"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = authed(req, "dr-er", "EMERGENCY")
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.Grant(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandlerHistory(t *testing.T) {
	rec := sensitiveRecord()
	svc, _, _, _ := newTestService(rec)
	h := NewHandler(svc)

	ctx := context.Background()
	if _, err := svc.Grant(ctx, requesterWith("dr-er", "EMERGENCY"), rec.ID,
		GrantRequest{Reason: "cardiac arrest"}); err != nil {
		t.Fatalf("seed grant: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = authed(req, "auditor-1", "AUDITOR")
	w := httptest.NewRecorder()
	c := e.NewContext(req, w)
	c.SetParamNames("id")
	c.SetParamValues(rec.ID.String())

	if err := h.History(c); err != nil {
		t.Fatalf("History: %v", err)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "cardiac arrest") {
		t.Errorf("history missing grant reason: %s", w.Body.String())
	}
}
