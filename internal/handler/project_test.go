package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/partnerhub/partnerhub/internal/handler/dto"
	"github.com/partnerhub/partnerhub/internal/model"
	"github.com/partnerhub/partnerhub/internal/service"
)

type stubProjectService struct {
	addFn    func(ctx context.Context, ownerID int64, input service.AddProjectInput) (*model.ExternalProject, error)
	listFn   func(ctx context.Context, ownerID int64) ([]*model.ExternalProject, error)
	updateFn func(ctx context.Context, ownerID int64, projectID, name string) (*model.ExternalProject, error)
}

func (s *stubProjectService) Add(ctx context.Context, ownerID int64, input service.AddProjectInput) (*model.ExternalProject, error) {
	return s.addFn(ctx, ownerID, input)
}

func (s *stubProjectService) ListByOwner(ctx context.Context, ownerID int64) ([]*model.ExternalProject, error) {
	return s.listFn(ctx, ownerID)
}

func (s *stubProjectService) Update(ctx context.Context, ownerID int64, projectID, name string) (*model.ExternalProject, error) {
	return s.updateFn(ctx, ownerID, projectID, name)
}

func projectRouter(svc ProjectService) http.Handler {
	h := NewProjectHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Post("/api/users/{id}/projects", h.Add)
	r.Get("/api/users/{id}/projects", h.List)
	r.Put("/api/users/{id}/projects/{projectId}", h.Update)
	return r
}

func TestProjectHandler_Add(t *testing.T) {
	svc := &stubProjectService{
		addFn: func(_ context.Context, ownerID int64, input service.AddProjectInput) (*model.ExternalProject, error) {
			return &model.ExternalProject{ID: input.ID, OwnerID: ownerID, Name: input.Name}, nil
		},
	}

	rec := doJSON(t, projectRouter(svc), http.MethodPost, "/api/users/3/projects", dto.AddProjectRequest{
		ID:   "proj-alpha",
		Name: "Alpha",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ProjectResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "proj-alpha" || resp.Name != "Alpha" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestProjectHandler_Add_Validation(t *testing.T) {
	svc := &stubProjectService{
		addFn: func(context.Context, int64, service.AddProjectInput) (*model.ExternalProject, error) {
			t.Fatal("service must not be called for invalid input")
			return nil, nil
		},
	}

	rec := doJSON(t, projectRouter(svc), http.MethodPost, "/api/users/3/projects", dto.AddProjectRequest{})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	body := decodeErrorBody(t, rec)
	if len(body.Errors) != 2 {
		t.Errorf("expected id and name errors, got %+v", body.Errors)
	}
}

func TestProjectHandler_Add_OwnerMissing(t *testing.T) {
	svc := &stubProjectService{
		addFn: func(context.Context, int64, service.AddProjectInput) (*model.ExternalProject, error) {
			return nil, service.ErrUserNotFound
		},
	}

	rec := doJSON(t, projectRouter(svc), http.MethodPost, "/api/users/99/projects", dto.AddProjectRequest{
		ID:   "proj-alpha",
		Name: "Alpha",
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestProjectHandler_Add_Duplicate(t *testing.T) {
	svc := &stubProjectService{
		addFn: func(context.Context, int64, service.AddProjectInput) (*model.ExternalProject, error) {
			return nil, service.ErrProjectExists
		},
	}

	rec := doJSON(t, projectRouter(svc), http.MethodPost, "/api/users/3/projects", dto.AddProjectRequest{
		ID:   "proj-alpha",
		Name: "Alpha",
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestProjectHandler_List(t *testing.T) {
	svc := &stubProjectService{
		listFn: func(_ context.Context, ownerID int64) ([]*model.ExternalProject, error) {
			return []*model.ExternalProject{
				{ID: "p1", OwnerID: ownerID, Name: "One"},
				{ID: "p2", OwnerID: ownerID, Name: "Two"},
			}, nil
		},
	}

	rec := doJSON(t, projectRouter(svc), http.MethodGet, "/api/users/3/projects", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp []dto.ProjectResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("expected 2 projects, got %d", len(resp))
	}
}

func TestProjectHandler_List_EmptyIsArray(t *testing.T) {
	svc := &stubProjectService{
		listFn: func(context.Context, int64) ([]*model.ExternalProject, error) {
			return []*model.ExternalProject{}, nil
		},
	}

	rec := doJSON(t, projectRouter(svc), http.MethodGet, "/api/users/3/projects", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestProjectHandler_Update(t *testing.T) {
	svc := &stubProjectService{
		updateFn: func(_ context.Context, ownerID int64, projectID, name string) (*model.ExternalProject, error) {
			return &model.ExternalProject{ID: projectID, OwnerID: ownerID, Name: name}, nil
		},
	}

	rec := doJSON(t, projectRouter(svc), http.MethodPut, "/api/users/3/projects/proj-alpha", dto.UpdateProjectRequest{
		Name: "Renamed",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ProjectResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "Renamed" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestProjectHandler_Update_NotFound(t *testing.T) {
	svc := &stubProjectService{
		updateFn: func(context.Context, int64, string, string) (*model.ExternalProject, error) {
			return nil, service.ErrProjectNotFound
		},
	}

	rec := doJSON(t, projectRouter(svc), http.MethodPut, "/api/users/3/projects/ghost", dto.UpdateProjectRequest{
		Name: "Renamed",
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestProjectHandler_InvalidOwnerID(t *testing.T) {
	svc := &stubProjectService{}

	rec := doJSON(t, projectRouter(svc), http.MethodGet, "/api/users/abc/projects", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
