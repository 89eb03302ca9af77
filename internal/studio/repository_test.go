// internal/studio/repository_test.go
//
// Repository tests over go-sqlmock; no MySQL needed.
//
// Run: go test ./internal/studio -v

package studio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

var recordColumns = []string{"id", "slug", "title", "product_handle", "hero_image", "body", "updated_at"}

func TestGetBySlug_Found(t *testing.T) {
	repo, mock := newMockRepo(t)

	updated := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, slug, title, product_handle, hero_image, body, updated_at").
		WithArgs("bench-notes").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(7, "bench-notes", "Notes From the Bench", "signet-ring", "/img/bench.jpg", "…", updated))

	rec, err := repo.GetBySlug(context.Background(), "bench-notes")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if rec.ID != 7 || rec.Title != "Notes From the Bench" {
		t.Errorf("record = %+v", rec)
	}
	if !rec.UpdatedAt.Equal(updated) {
		t.Errorf("updatedAt = %v, want %v", rec.UpdatedAt, updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetBySlug_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, slug, title").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(recordColumns))

	_, err := repo.GetBySlug(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetBySlug() error = %v, want ErrNotFound", err)
	}
}

func TestGetBySlug_QueryFault(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, slug, title").
		WithArgs("bench-notes").
		WillReturnError(errors.New("driver: bad connection"))

	_, err := repo.GetBySlug(context.Background(), "bench-notes")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("GetBySlug() error = %v, want a transport fault", err)
	}
}

func TestListByProduct(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, slug, title, product_handle").
		WithArgs("signet-ring").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(2, "care-guide", "Care Guide", "signet-ring", "", "…", time.Now()).
			AddRow(1, "bench-notes", "Notes From the Bench", "signet-ring", "", "…", time.Now()))

	recs, err := repo.ListByProduct(context.Background(), "signet-ring")
	if err != nil {
		t.Fatalf("ListByProduct() error = %v", err)
	}
	if len(recs) != 2 || recs[0].Slug != "care-guide" {
		t.Errorf("records = %+v", recs)
	}
}

func TestListByProduct_Empty(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, slug, title, product_handle").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows(recordColumns))

	recs, err := repo.ListByProduct(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("ListByProduct() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("records = %+v, want none", recs)
	}
}
