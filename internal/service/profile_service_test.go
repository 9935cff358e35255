package service

import (
	"context"
	"errors"
	"testing"
)

func seedProfile(t *testing.T, svc *ProfileService) string {
	t.Helper()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, ProfileInput{
		FirstName:   "Dan",
		LastName:    "Siegel",
		Email:       "dan@avantgarde.test",
		PhoneNumber: "555-0100",
		Title:       "Managing Partner",
		Bio:         "Investor.",
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	github, err := svc.EnsureProvider(ctx, "GitHub", "fab fa-github", "https://github.com/{0}")
	if err != nil {
		t.Fatalf("ensure provider failed: %v", err)
	}
	twitter, err := svc.EnsureProvider(ctx, "Twitter", "fab fa-twitter", "https://twitter.com/{0}")
	if err != nil {
		t.Fatalf("ensure provider failed: %v", err)
	}
	if _, err := svc.AddSocialLink(ctx, user.ID, github.ID, "dansiegel"); err != nil {
		t.Fatalf("add link failed: %v", err)
	}
	if _, err := svc.AddSocialLink(ctx, user.ID, twitter.ID, "dansiegel"); err != nil {
		t.Fatalf("add link failed: %v", err)
	}
	return user.ID
}

func TestProfileServiceFindByName(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewProfileService(gdb)
	id := seedProfile(t, svc)
	ctx := context.Background()

	user, err := svc.FindByName(ctx, "Dan", "Siegel")
	if err != nil {
		t.Fatalf("find by name failed: %v", err)
	}
	if user.ID != id {
		t.Fatalf("expected id %s, got %s", id, user.ID)
	}
	if user.DisplayName != "Dan Siegel" {
		t.Fatalf("expected display name fallback, got %q", user.DisplayName)
	}
	if len(user.SocialLinks) != 2 {
		t.Fatalf("expected 2 links, got %d", len(user.SocialLinks))
	}
	if user.SocialLinks[0].SocialProvider.Name != "GitHub" || user.SocialLinks[0].URI() != "https://github.com/dansiegel" {
		t.Fatalf("unexpected first link %#v", user.SocialLinks[0])
	}

	for _, tc := range [][2]string{{"dan", "Siegel"}, {"Dan", "siegel"}, {"Dan", "Smith"}} {
		if _, err := svc.FindByName(ctx, tc[0], tc[1]); !errors.Is(err, ErrProfileNotFound) {
			t.Fatalf("expected ErrProfileNotFound for %v, got %v", tc, err)
		}
	}
}

func TestProfileServiceFindByIDAndReorder(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewProfileService(gdb)
	id := seedProfile(t, svc)
	ctx := context.Background()

	user, err := svc.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}

	ids := []uint{user.SocialLinks[1].ID, user.SocialLinks[0].ID}
	if err := svc.ReorderSocialLinks(ctx, id, ids); err != nil {
		t.Fatalf("reorder failed: %v", err)
	}

	reordered, err := svc.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find by id failed: %v", err)
	}
	if reordered.SocialLinks[0].SocialProvider.Name != "Twitter" {
		t.Fatalf("expected twitter first after reorder, got %s", reordered.SocialLinks[0].SocialProvider.Name)
	}

	if _, err := svc.FindByID(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.FindByID(ctx, " "); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound for blank id, got %v", err)
	}
}

func TestProfileServiceListHighlighted(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewProfileService(gdb)
	ctx := context.Background()
	first := seedProfile(t, svc)

	second, err := svc.CreateUser(ctx, ProfileInput{FirstName: "Jane", LastName: "Doe", Email: "jane@avantgarde.test"})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if err := svc.Highlight(ctx, first, 2); err != nil {
		t.Fatalf("highlight failed: %v", err)
	}
	if err := svc.Highlight(ctx, second.ID, 1); err != nil {
		t.Fatalf("highlight failed: %v", err)
	}

	users, err := svc.ListHighlighted(ctx)
	if err != nil {
		t.Fatalf("list highlighted failed: %v", err)
	}
	if len(users) != 2 || users[0].ID != second.ID || users[1].ID != first {
		t.Fatalf("unexpected highlighted order %#v", users)
	}
	if len(users[1].SocialLinks) != 2 {
		t.Fatalf("expected highlighted user links to be loaded")
	}

	if err := svc.Highlight(ctx, first, 0); err != nil {
		t.Fatalf("re-highlight failed: %v", err)
	}
	users, _ = svc.ListHighlighted(ctx)
	if users[0].ID != first {
		t.Fatalf("expected updated order to move first user to the top")
	}
}

func TestProfileServiceCreateUserValidation(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewProfileService(gdb)
	if _, err := svc.CreateUser(context.Background(), ProfileInput{FirstName: "Dan"}); !errors.Is(err, ErrProfileInvalidInput) {
		t.Fatalf("expected ErrProfileInvalidInput, got %v", err)
	}
}
