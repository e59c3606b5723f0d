package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

var errorPages = fstest.MapFS{
	"404.html": &fstest.MapFile{Data: []byte("<html>custom not found</html>")},
	"500.html": &fstest.MapFile{Data: []byte("<html>custom error</html>")},
}

func TestErrorHandlerNotFound(t *testing.T) {
	h := ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}), errorPages)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/missing.html", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "custom not found") {
		t.Errorf("Expected the custom page, got %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Unexpected content type %q", ct)
	}
}

func TestErrorHandlerInternalError(t *testing.T) {
	h := ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}), errorPages)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "custom error") {
		t.Errorf("Expected the custom page, got %q", body)
	}
	if strings.Contains(body, "boom") {
		t.Errorf("Original body should be suppressed, got %q", body)
	}
}

func TestErrorHandlerPassThrough(t *testing.T) {
	h := ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}), errorPages)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected 418, got %d", rec.Code)
	}
	if rec.Body.String() != "short and stout" {
		t.Errorf("Body was %q", rec.Body.String())
	}
}

func TestErrorHandlerMissingPage(t *testing.T) {
	// without a 404.html the handler leaves the response alone
	h := ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}), fstest.MapFS{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/missing.html", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "404 page not found") {
		t.Errorf("Expected the default body, got %q", rec.Body.String())
	}
}
