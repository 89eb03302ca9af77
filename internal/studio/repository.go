// internal/studio/repository.go
//
// Studio auxiliary-record store.
//
// Context
// -------
//   The commerce platform holds the catalog; the studio database holds
//   what the platform cannot: editorial records for the jewellery studio
//   pages (bench photography, maker notes, care instructions) keyed to a
//   slug and optionally to a product handle.  Read-mostly, written by an
//   internal CMS that is not part of this service.
//
//   Queries go through sqlx against MySQL.  Absence is ErrNotFound, not
//   a bare sql.ErrNoRows, so handlers can map it to 404 without
//   importing database/sql.
//
//------------------------------------------------------------------------------

package studio

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no record matches the lookup.
var ErrNotFound = errors.New("studio record not found")

// Record is one editorial entry for a studio page.
type Record struct {
	ID            int64     `db:"id"            json:"id"`
	Slug          string    `db:"slug"          json:"slug"`
	Title         string    `db:"title"         json:"title"`
	ProductHandle string    `db:"product_handle" json:"productHandle,omitempty"`
	HeroImage     string    `db:"hero_image"    json:"heroImage,omitempty"`
	Body          string    `db:"body"          json:"body"`
	UpdatedAt     time.Time `db:"updated_at"    json:"updatedAt"`
}

// Repository reads studio records.  Safe for concurrent use.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open handle from internal/database.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const bySlugQuery = `
SELECT id, slug, title, product_handle, hero_image, body, updated_at
FROM studio_record
WHERE slug = ? AND published_at IS NOT NULL`

// GetBySlug returns the published record for slug, or ErrNotFound.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Record, error) {
	var rec Record
	if err := r.db.GetContext(ctx, &rec, bySlugQuery, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

const byProductQuery = `
SELECT id, slug, title, product_handle, hero_image, body, updated_at
FROM studio_record
WHERE product_handle = ? AND published_at IS NOT NULL
ORDER BY updated_at DESC`

// ListByProduct returns every published record attached to a product
// handle, newest first.  An empty result is not an error.
func (r *Repository) ListByProduct(ctx context.Context, handle string) ([]Record, error) {
	var recs []Record
	if err := r.db.SelectContext(ctx, &recs, byProductQuery, handle); err != nil {
		return nil, err
	}
	return recs, nil
}
