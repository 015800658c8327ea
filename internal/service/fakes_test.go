package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"coursecatalog/internal/models"
	"coursecatalog/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  []*models.User
	nextID int64
	err    error
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	stored := *user
	r.users = append(r.users, &stored)
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByName(_ context.Context, name string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Name, name) {
			found := *u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses []models.Course
	err     error
	calls   atomic.Int32
	delay   time.Duration
}

func newSeededCourseRepo() *fakeCourseRepo {
	repo := &fakeCourseRepo{}
	for i, name := range models.SeedCourseNames {
		repo.courses = append(repo.courses, models.Course{ID: int64(i + 1), Name: name})
	}
	return repo
}

func (r *fakeCourseRepo) ListCourses(_ context.Context, limit int, search string) ([]models.Course, error) {
	r.calls.Add(1)
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []models.Course{}
	for _, c := range r.courses {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCourseRepo) SeedCourses(_ context.Context, names []string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeCourseRepo) Ping(context.Context) error {
	return r.err
}

func (r *fakeCourseRepo) rename(id int64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.courses {
		if r.courses[i].ID == id {
			r.courses[i].Name = name
		}
	}
}
