package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"coursecatalog/internal/cache"
	"coursecatalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeCourses(t *testing.T, payload []byte) []models.Course {
	t.Helper()
	var list models.CourseList
	require.NoError(t, json.Unmarshal(payload, &list))
	return list.Courses
}

func TestParseCourseQuery(t *testing.T) {
	tests := []struct {
		limit, search string
		want          models.CourseQuery
	}{
		{"", "", models.CourseQuery{Limit: 10}},
		{"5", "", models.CourseQuery{Limit: 5}},
		{" 7 ", "", models.CourseQuery{Limit: 7}},
		{"1", "", models.CourseQuery{Limit: 1}},
		{"50", "", models.CourseQuery{Limit: 50}},
		{"51", "", models.CourseQuery{Limit: 50}},
		{"500", "", models.CourseQuery{Limit: 50}},
		{"100000000000000000000", "", models.CourseQuery{Limit: 50}},
		{"-100000000000000000000", "", models.CourseQuery{Limit: 10}},
		{"0", "", models.CourseQuery{Limit: 10}},
		{"-3", "", models.CourseQuery{Limit: 10}},
		{"abc", "", models.CourseQuery{Limit: 10}},
		{"2.5", "", models.CourseQuery{Limit: 10}},
		{"10", "  java ", models.CourseQuery{Limit: 10, Search: "java"}},
		{"10", "   ", models.CourseQuery{Limit: 10}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCourseQuery(tt.limit, tt.search), "limit=%q search=%q", tt.limit, tt.search)
	}
}

func TestListCourses_LimitAndOrder(t *testing.T) {
	svc := NewCourseService(newSeededCourseRepo(), cache.NewMemory(16, time.Minute), zap.NewNop())

	payload, err := svc.ListCourses(context.Background(), models.CourseQuery{Limit: 5})
	require.NoError(t, err)

	courses := decodeCourses(t, payload)
	require.Len(t, courses, 5)
	for i := 1; i < len(courses); i++ {
		assert.Less(t, courses[i-1].ID, courses[i].ID)
	}
}

func TestListCourses_SearchJava(t *testing.T) {
	svc := NewCourseService(newSeededCourseRepo(), cache.NewMemory(16, time.Minute), zap.NewNop())

	payload, err := svc.ListCourses(context.Background(), ParseCourseQuery("10", "java"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"courses":[{"id":1,"name":"Java","enrolled":0},{"id":2,"name":"JavaScript","enrolled":0}]}`, string(payload))
}

func TestListCourses_CacheServesStalePayload(t *testing.T) {
	repo := newSeededCourseRepo()
	svc := NewCourseService(repo, cache.NewMemory(16, time.Minute), zap.NewNop())
	ctx := context.Background()
	q := models.CourseQuery{Limit: 3}

	first, err := svc.ListCourses(ctx, q)
	require.NoError(t, err)

	repo.rename(1, "Java 21")

	second, err := svc.ListCourses(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), repo.calls.Load())
}

func TestListCourses_DistinctKeysMiss(t *testing.T) {
	repo := newSeededCourseRepo()
	svc := NewCourseService(repo, cache.NewMemory(16, time.Minute), zap.NewNop())
	ctx := context.Background()

	_, err := svc.ListCourses(ctx, models.CourseQuery{Limit: 3})
	require.NoError(t, err)
	_, err = svc.ListCourses(ctx, models.CourseQuery{Limit: 4})
	require.NoError(t, err)
	_, err = svc.ListCourses(ctx, models.CourseQuery{Limit: 3, Search: "go"})
	require.NoError(t, err)

	assert.Equal(t, int32(3), repo.calls.Load())
}

func TestListCourses_RefreshesAfterTTL(t *testing.T) {
	repo := newSeededCourseRepo()
	svc := NewCourseService(repo, cache.NewMemory(16, 50*time.Millisecond), zap.NewNop())
	ctx := context.Background()
	q := models.CourseQuery{Limit: 1}

	_, err := svc.ListCourses(ctx, q)
	require.NoError(t, err)

	repo.rename(1, "Java 21")
	time.Sleep(150 * time.Millisecond)

	payload, err := svc.ListCourses(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "Java 21", decodeCourses(t, payload)[0].Name)
	assert.Equal(t, int32(2), repo.calls.Load())
}

func TestListCourses_EmptyResultIsArray(t *testing.T) {
	svc := NewCourseService(newSeededCourseRepo(), cache.NewMemory(16, time.Minute), zap.NewNop())

	payload, err := svc.ListCourses(context.Background(), models.CourseQuery{Limit: 10, Search: "cobol"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"courses":[]}`, string(payload))
}

func TestListCourses_StoreFailure(t *testing.T) {
	repo := newSeededCourseRepo()
	repo.err = errors.New("relation \"courses\" does not exist")
	store := cache.NewMemory(16, time.Minute)
	svc := NewCourseService(repo, store, zap.NewNop())

	_, err := svc.ListCourses(context.Background(), models.CourseQuery{Limit: 10})
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Equal(t, 0, store.Len(), "failures are not cached")
}

func TestListCourses_CollapsesConcurrentMisses(t *testing.T) {
	repo := newSeededCourseRepo()
	repo.delay = 100 * time.Millisecond
	svc := NewCourseService(repo, cache.NewMemory(16, time.Minute), zap.NewNop())

	var wg sync.WaitGroup
	results := make([][]byte, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload, err := svc.ListCourses(context.Background(), models.CourseQuery{Limit: 10})
			assert.NoError(t, err)
			results[i] = payload
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), repo.calls.Load())
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}
