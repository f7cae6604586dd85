package service

import (
	"context"
	"errors"
	"testing"
)

func newProjectService(t *testing.T) (*ProjectService, *UserService) {
	t.Helper()
	users := NewUserService(newFakeUserStore(), testLogger(), nil)
	projects := NewProjectService(newFakeProjectStore(), users, testLogger(), nil)
	return projects, users
}

func createTestUser(t *testing.T, users *UserService, email string) int64 {
	t.Helper()
	user, err := users.Create(context.Background(), CreateUserInput{Email: email, Password: "password1"})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user.ID
}

func TestProjectService_Add(t *testing.T) {
	projects, users := newProjectService(t)
	ctx := context.Background()
	ownerID := createTestUser(t, users, "owner@example.com")

	project, err := projects.Add(ctx, ownerID, AddProjectInput{ID: "proj-001", Name: "Partner API Integration"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if project.OwnerID != ownerID {
		t.Errorf("expected owner %d, got %d", ownerID, project.OwnerID)
	}
	if project.CreatedAt.IsZero() || project.UpdatedAt.IsZero() {
		t.Error("expected server-set timestamps")
	}
}

func TestProjectService_Add_OwnerMissing(t *testing.T) {
	projects, _ := newProjectService(t)

	_, err := projects.Add(context.Background(), 42, AddProjectInput{ID: "proj-001", Name: "Orphan"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProjectService_Add_DuplicateForSameOwner(t *testing.T) {
	projects, users := newProjectService(t)
	ctx := context.Background()
	ownerID := createTestUser(t, users, "owner@example.com")

	if _, err := projects.Add(ctx, ownerID, AddProjectInput{ID: "p1", Name: "First"}); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}

	_, err := projects.Add(ctx, ownerID, AddProjectInput{ID: "p1", Name: "Again"})
	if !errors.Is(err, ErrProjectExists) {
		t.Fatalf("expected ErrProjectExists, got %v", err)
	}

	// A distinct id for the same owner is fine.
	if _, err := projects.Add(ctx, ownerID, AddProjectInput{ID: "p2", Name: "Second"}); err != nil {
		t.Fatalf("Add with new id failed: %v", err)
	}
}

// Project ids are the storage primary key, so an id held by a different
// owner is the same conflict as re-registering your own.
func TestProjectService_Add_DuplicateAcrossOwners(t *testing.T) {
	projects, users := newProjectService(t)
	ctx := context.Background()
	ownerA := createTestUser(t, users, "a@example.com")
	ownerB := createTestUser(t, users, "b@example.com")

	if _, err := projects.Add(ctx, ownerA, AddProjectInput{ID: "shared-id", Name: "A's"}); err != nil {
		t.Fatalf("Add for owner A failed: %v", err)
	}

	_, err := projects.Add(ctx, ownerB, AddProjectInput{ID: "shared-id", Name: "B's"})
	if !errors.Is(err, ErrProjectExists) {
		t.Fatalf("expected ErrProjectExists, got %v", err)
	}
}

func TestProjectService_ListByOwner(t *testing.T) {
	projects, users := newProjectService(t)
	ctx := context.Background()
	ownerID := createTestUser(t, users, "owner@example.com")
	otherID := createTestUser(t, users, "other@example.com")

	for _, id := range []string{"p1", "p2"} {
		if _, err := projects.Add(ctx, ownerID, AddProjectInput{ID: id, Name: "Project " + id}); err != nil {
			t.Fatalf("Add(%s) failed: %v", id, err)
		}
	}
	if _, err := projects.Add(ctx, otherID, AddProjectInput{ID: "p3", Name: "Other's"}); err != nil {
		t.Fatalf("Add(p3) failed: %v", err)
	}

	list, err := projects.ListByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(list))
	}

	// Repeated reads with no intervening writes return the same set.
	again, err := projects.ListByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("second ListByOwner failed: %v", err)
	}
	if len(again) != len(list) {
		t.Fatalf("expected identical result sets, got %d then %d", len(list), len(again))
	}
	for i := range list {
		if list[i].ID != again[i].ID {
			t.Errorf("position %d: %s then %s", i, list[i].ID, again[i].ID)
		}
	}
}

func TestProjectService_ListByOwner_UnknownOwnerIsEmpty(t *testing.T) {
	projects, _ := newProjectService(t)

	list, err := projects.ListByOwner(context.Background(), 999)
	if err != nil {
		t.Fatalf("expected no error for unknown owner, got %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty slice, got %d projects", len(list))
	}
}

func TestProjectService_Update(t *testing.T) {
	projects, users := newProjectService(t)
	ctx := context.Background()
	ownerID := createTestUser(t, users, "owner@example.com")

	created, err := projects.Add(ctx, ownerID, AddProjectInput{ID: "proj-001", Name: "Partner API Integration"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	updated, err := projects.Update(ctx, ownerID, "proj-001", "Partner API v2")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Partner API v2" {
		t.Errorf("expected renamed project, got %q", updated.Name)
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Error("CreatedAt must not change on update")
	}
}

func TestProjectService_Update_NotFound(t *testing.T) {
	projects, users := newProjectService(t)
	ownerID := createTestUser(t, users, "owner@example.com")

	_, err := projects.Update(context.Background(), ownerID, "missing", "New Name")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

// Ownership mismatch is reported exactly like nonexistence so the
// caller cannot probe for other users' project ids.
func TestProjectService_Update_NotOwned(t *testing.T) {
	projects, users := newProjectService(t)
	ctx := context.Background()
	ownerA := createTestUser(t, users, "a@example.com")
	ownerB := createTestUser(t, users, "b@example.com")

	if _, err := projects.Add(ctx, ownerA, AddProjectInput{ID: "proj-a", Name: "A's"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	_, err := projects.Update(ctx, ownerB, "proj-a", "Hijack")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}
