package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUIHandler_Index(t *testing.T) {
	handler := NewUIHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.Index(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q, want %q", contentType, "text/html; charset=utf-8")
	}

	if got := w.Body.String(); got != "<p>Hello, World!</p>" {
		t.Errorf("body = %q, want %q", got, "<p>Hello, World!</p>")
	}
}
