package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestGetContent(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.content.Save(context.Background(), "privacy", "Privacy Policy", "<p>{LegalBusinessName} of {City}, {State}</p>"); err != nil {
		t.Fatalf("failed to save content: %v", err)
	}

	w := s.get("/api/content/privacy")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var payload struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		HTMLContent string `json:"htmlContent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode content: %v", err)
	}
	if payload.ID != "privacy" || payload.Title != "Privacy Policy" {
		t.Fatalf("unexpected content %#v", payload)
	}
	if payload.HTMLContent != "<p>Avantgarde Partners LLC of Austin, TX</p>" {
		t.Fatalf("unexpected html %q", payload.HTMLContent)
	}

	for _, target := range []string{"/api/content/missing", "/api/content/%20privacy%20", "/api/content/Privacy"} {
		if w := s.get(target); w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", target, w.Code)
		}
	}
}
