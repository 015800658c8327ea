package repository

import (
	"context"
	"strings"

	"coursecatalog/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type CourseRepository interface {
	ListCourses(ctx context.Context, limit int, search string) ([]models.Course, error)
	SeedCourses(ctx context.Context, names []string) ([]string, error)
	Ping(ctx context.Context) error
}

type courseRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCourseRepository(db *sqlx.DB, logger *zap.Logger) CourseRepository {
	return &courseRepository{db: db, logger: logger}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListCourses returns up to limit courses ordered by id. A non-empty search
// filters on a case-insensitive substring of the name.
func (r *courseRepository) ListCourses(ctx context.Context, limit int, search string) ([]models.Course, error) {
	courses := []models.Course{}

	if search == "" {
		query := `SELECT id, name, enrolled FROM courses ORDER BY id ASC LIMIT $1`
		if err := r.db.SelectContext(ctx, &courses, query, limit); err != nil {
			return nil, err
		}
		return courses, nil
	}

	query := `SELECT id, name, enrolled FROM courses WHERE name ILIKE '%' || $1 || '%' ORDER BY id ASC LIMIT $2`
	if err := r.db.SelectContext(ctx, &courses, query, likeEscaper.Replace(search), limit); err != nil {
		return nil, err
	}
	return courses, nil
}

// SeedCourses inserts the given names, skipping ones already present, and
// returns the names that were actually inserted.
func (r *courseRepository) SeedCourses(ctx context.Context, names []string) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `INSERT INTO courses (name, enrolled) VALUES ($1, 0) ON CONFLICT (name) DO NOTHING`
	var inserted []string
	for _, name := range names {
		res, err := tx.ExecContext(ctx, query, name)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted = append(inserted, name)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	r.logger.Info("Seeded courses", zap.Strings("inserted", inserted), zap.Int("skipped", len(names)-len(inserted)))
	return inserted, nil
}

func (r *courseRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
