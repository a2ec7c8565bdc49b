package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tabswitch/internal/infrastructure/errors"
	"tabswitch/internal/types"
)

type stubService struct {
	tabs        []types.Tab
	discoverErr error
	activateOK  bool
	activateErr error
	closeOK     bool
	previewErr  error
	lastID      string
}

func (s *stubService) DiscoverTabs(ctx context.Context) ([]types.Tab, error) {
	return s.tabs, s.discoverErr
}

func (s *stubService) ActivateTab(id string) (bool, error) {
	s.lastID = id
	return s.activateOK, s.activateErr
}

func (s *stubService) CloseTab(id string) (bool, error) {
	s.lastID = id
	return s.closeOK, nil
}

func (s *stubService) PreviewTab(id string) (*types.TabPreview, error) {
	if s.previewErr != nil {
		return nil, s.previewErr
	}
	return &types.TabPreview{TabID: id, URL: "https://example.com"}, nil
}

func TestHealth(t *testing.T) {
	h := NewHandler(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestListTabs(t *testing.T) {
	svc := &stubService{tabs: []types.Tab{
		{ID: "100:0:1", Title: "Example - Google Chrome", URLOrTitle: "Example", Browser: "Google Chrome"},
		{ID: "100:1:2", Title: "Docs - Google Chrome", URLOrTitle: "Docs", Browser: "Google Chrome"},
	}}

	h := NewHandler(svc, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tabs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var payload struct {
		Tabs []types.Tab `json:"tabs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(payload.Tabs) != 2 {
		t.Errorf("tabs = %d, want 2", len(payload.Tabs))
	}
}

func TestListTabs_CancelledMapsToTimeout(t *testing.T) {
	svc := &stubService{discoverErr: errors.NewAutomationError("discover",
		fmt.Errorf("context canceled"), errors.ErrCodeCancelled)}

	h := NewHandler(svc, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tabs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want %d", w.Code, http.StatusGatewayTimeout)
	}
}

func TestActivateTab(t *testing.T) {
	svc := &stubService{activateOK: true}
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tabs/100:0:1/activate", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if svc.lastID != "100:0:1" {
		t.Errorf("routed id = %q", svc.lastID)
	}
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestActivateTab_StaleMapsToNotFound(t *testing.T) {
	svc := &stubService{activateErr: errors.NewAutomationError("activate_tab",
		fmt.Errorf("element vanished"), errors.ErrCodeStaleElement)}
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tabs/100:0:1/activate", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCloseTab_ReportsFailureAsSuccessFalse(t *testing.T) {
	svc := &stubService{closeOK: false}
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tabs/100:0:1/close", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"success":false`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestPreviewTab_ValidationMapsToBadRequest(t *testing.T) {
	svc := &stubService{previewErr: errors.NewAutomationError("preview_tab",
		fmt.Errorf("no fetchable URL"), errors.ErrCodeValidation)}
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tabs/100:0:1/preview", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
