package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/partnerhub/partnerhub/internal/model"
	"github.com/partnerhub/partnerhub/internal/repository"
)

// fakeUserStore is an in-memory UserStore that mirrors the repository's
// error contract, including the unique index on email.
type fakeUserStore struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*model.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	f.nextID++
	user.ID = f.nextID
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]*model.User, error) {
	users := make([]*model.User, 0, len(f.users))
	for _, u := range f.users {
		clone := *u
		users = append(users, &clone)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (f *fakeUserStore) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

// fakeProjectStore is an in-memory ProjectStore with the primary-key
// uniqueness the real schema enforces.
type fakeProjectStore struct {
	projects map[string]*model.ExternalProject
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[string]*model.ExternalProject)}
}

func (f *fakeProjectStore) CreateProject(_ context.Context, project *model.ExternalProject) error {
	if _, ok := f.projects[project.ID]; ok {
		return repository.ErrProjectExists
	}
	clone := *project
	f.projects[project.ID] = &clone
	return nil
}

func (f *fakeProjectStore) GetProjectByID(_ context.Context, id string) (*model.ExternalProject, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeProjectStore) ListProjectsByOwner(_ context.Context, ownerID int64) ([]*model.ExternalProject, error) {
	projects := make([]*model.ExternalProject, 0)
	for _, p := range f.projects {
		if p.OwnerID == ownerID {
			clone := *p
			projects = append(projects, &clone)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (f *fakeProjectStore) UpdateProjectName(_ context.Context, project *model.ExternalProject) error {
	if _, ok := f.projects[project.ID]; !ok {
		return repository.ErrProjectNotFound
	}
	clone := *project
	f.projects[project.ID] = &clone
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
