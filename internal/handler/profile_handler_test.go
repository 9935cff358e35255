package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/mfportal/internal/service"
)

func seedTeamMember(t *testing.T, s *testServer) string {
	t.Helper()
	ctx := context.Background()

	user, err := s.profiles.CreateUser(ctx, service.ProfileInput{
		FirstName:   "Mary Ann",
		LastName:    "Van Dyke",
		Email:       "maryann@avantgarde.test",
		PhoneNumber: "555-0101",
		Title:       "Asset Manager",
		Bio:         "Manages the Austin portfolio.",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	provider, err := s.profiles.EnsureProvider(ctx, "LinkedIn", "fab fa-linkedin", "https://www.linkedin.com/in/{0}")
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	if _, err := s.profiles.AddSocialLink(ctx, user.ID, provider.ID, "maryann"); err != nil {
		t.Fatalf("failed to add link: %v", err)
	}
	return user.ID
}

func TestGetUserProfile(t *testing.T) {
	s := newTestServer(t)
	id := seedTeamMember(t, s)

	w := s.get("/api/about/profile/Mary%20Ann/Van%20Dyke")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var payload struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		Title       string `json:"title"`
		Links       []struct {
			Icon string `json:"icon"`
			Name string `json:"name"`
			Link string `json:"link"`
		} `json:"links"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if payload.ID != id || payload.DisplayName != "Mary Ann Van Dyke" || payload.Title != "Asset Manager" {
		t.Fatalf("unexpected profile %#v", payload)
	}
	if len(payload.Links) != 1 || payload.Links[0].Link != "https://www.linkedin.com/in/maryann" {
		t.Fatalf("unexpected links %#v", payload.Links)
	}

	if w := s.get("/api/about/profile/mary%20ann/Van%20Dyke"); w.Code != http.StatusNotFound {
		t.Fatalf("expected case-sensitive lookup to miss, got %d", w.Code)
	}
}

func TestDownloadVCard(t *testing.T) {
	s := newTestServer(t)
	id := seedTeamMember(t, s)

	w := s.get("/api/about/profile/vcard/" + id)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != service.VCardMIMEType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "MaryAnnVanDyke.vcf") || !strings.HasPrefix(cd, "attachment") {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	body := w.Body.String()
	for _, want := range []string{"BEGIN:VCARD", "ORG:Avantgarde Partners LLC", "Asset Manager", "Austin", "X-SOCIALPROFILE"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in vcard:\n%s", want, body)
		}
	}
}

func TestDownloadVCardMissingRedirects(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/api/about/profile/vcard/does-not-exist")
	if w.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/not-found" {
		t.Fatalf("expected redirect to /not-found, got %q", loc)
	}
}

func TestListHighlightedProfiles(t *testing.T) {
	s := newTestServer(t)
	id := seedTeamMember(t, s)

	w := s.get("/api/about/highlighted")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %d %s", w.Code, w.Body.String())
	}

	if err := s.profiles.Highlight(context.Background(), id, 1); err != nil {
		t.Fatalf("highlight failed: %v", err)
	}
	w = s.get("/api/about/highlighted")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), id) {
		t.Fatalf("expected highlighted member, got %d %s", w.Code, w.Body.String())
	}
}
