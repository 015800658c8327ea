package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"coursecatalog/internal/cache"
	"coursecatalog/internal/metrics"
	"coursecatalog/internal/models"
	"coursecatalog/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCourseLimit = 10
	MaxCourseLimit     = 50
)

var ErrStoreFailure = errors.New("failed to fetch courses")

type CourseService interface {
	// ListCourses returns the JSON payload {"courses":[...]} for q.
	ListCourses(ctx context.Context, q models.CourseQuery) ([]byte, error)
}

type courseService struct {
	repo   repository.CourseRepository
	cache  cache.Store
	group  singleflight.Group
	logger *zap.Logger
}

func NewCourseService(repo repository.CourseRepository, store cache.Store, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, cache: store, logger: logger}
}

// ParseCourseQuery normalizes raw query parameters. Empty, non-numeric and
// non-positive limits fall back to the default; large ones are capped.
func ParseCourseQuery(rawLimit, rawSearch string) models.CourseQuery {
	limit, err := strconv.Atoi(strings.TrimSpace(rawLimit))
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && limit > 0 {
		// Atoi saturates out-of-range input, so the sign survives.
		limit = MaxCourseLimit
	} else if err != nil || limit <= 0 {
		limit = DefaultCourseLimit
	}
	if limit > MaxCourseLimit {
		limit = MaxCourseLimit
	}
	return models.CourseQuery{Limit: limit, Search: strings.TrimSpace(rawSearch)}
}

func (s *courseService) ListCourses(ctx context.Context, q models.CourseQuery) ([]byte, error) {
	key := cache.Key(q.Limit, q.Search)

	if payload, ok := s.cache.Get(ctx, key); ok {
		metrics.CacheHit()
		return payload, nil
	}
	metrics.CacheMiss()

	// Concurrent misses on one key share a single store read. The shared
	// fetch is detached from any one caller's cancellation.
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)

		courses, err := s.repo.ListCourses(fetchCtx, q.Limit, q.Search)
		if err != nil {
			return nil, err
		}
		if courses == nil {
			courses = []models.Course{}
		}

		payload, err := json.Marshal(models.CourseList{Courses: courses})
		if err != nil {
			return nil, err
		}
		s.cache.Set(fetchCtx, key, payload)
		return payload, nil
	})
	if err != nil {
		s.logger.Error("Failed to fetch courses",
			zap.Int("limit", q.Limit), zap.String("search", q.Search), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	return v.([]byte), nil
}
