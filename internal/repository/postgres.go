package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"listingguide/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const listingColumns = `
	id, listing_uuid, property_type, price, bedrooms, bathrooms, square_feet,
	address, description, form_data, created_at, updated_at`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int, logger *zap.Logger) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresRepository{db: db, logger: logger}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Migrate applies the embedded schema migrations
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, r.db.DB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, res := range results {
		r.logger.Info("migration applied",
			zap.String("source", res.Source.Path),
			zap.Duration("took", res.Duration),
		)
	}
	return nil
}

// SaveListing stores a listing with its photos and synthesis in one transaction
// and returns the new listing id
func (r *PostgresRepository) SaveListing(ctx context.Context, listing *model.Listing, images []model.ListingImage, synthesis *model.ListingSynthesis) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var embedding any
	if len(listing.Embedding.Slice()) > 0 {
		embedding = listing.Embedding
	}

	var id int64
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO listings (listing_uuid, property_type, price, bedrooms, bathrooms, square_feet,
			address, description, form_data, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, listing.ListingUUID, listing.PropertyType, listing.Price, listing.Bedrooms, listing.Bathrooms,
		listing.SquareFeet, listing.Address, listing.Description, listing.FormData, embedding,
	).Scan(&id, &listing.CreatedAt, &listing.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert listing: %w", err)
	}

	if len(images) > 0 {
		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO listing_images (listing_id, image_url, object_key, content_type, analysis, order_index)
			VALUES ($1, $2, $3, $4, $5, $6)
		`)
		if err != nil {
			return 0, fmt.Errorf("failed to prepare image insert: %w", err)
		}
		defer stmt.Close()

		for i, img := range images {
			if _, err := stmt.ExecContext(ctx, id, img.ImageURL, img.ObjectKey, img.ContentType, img.Analysis, img.OrderIndex); err != nil {
				return 0, fmt.Errorf("failed to insert image %d: %w", i, err)
			}
		}
	}

	if synthesis != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO listing_syntheses (listing_id, total_rooms, layout_type, unified_description,
				room_breakdown, property_overview, interior_features, exterior_features)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, synthesis.TotalRooms, synthesis.LayoutType, synthesis.UnifiedDescription,
			synthesis.RoomBreakdown, synthesis.PropertyOverview, synthesis.InteriorFeatures, synthesis.ExteriorFeatures)
		if err != nil {
			return 0, fmt.Errorf("failed to insert synthesis: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	listing.ID = id
	return id, nil
}

// GetListing retrieves a listing with its photos and synthesis; nil when it does not exist
func (r *PostgresRepository) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.GetContext(ctx, &listing, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	err = r.db.SelectContext(ctx, &listing.Images, `
		SELECT id, listing_id, image_url, object_key, content_type, analysis, order_index, created_at
		FROM listing_images
		WHERE listing_id = $1
		ORDER BY order_index, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get listing images: %w", err)
	}

	var synthesis model.ListingSynthesis
	err = r.db.GetContext(ctx, &synthesis, `
		SELECT listing_id, total_rooms, layout_type, unified_description, room_breakdown,
			property_overview, interior_features, exterior_features, created_at
		FROM listing_syntheses
		WHERE listing_id = $1
	`, id)
	switch {
	case err == nil:
		listing.Synthesis = &synthesis
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to get listing synthesis: %w", err)
	}

	return &listing, nil
}

// SimilarListings returns the listings whose embedding is closest to the given
// listing's, by cosine distance. Listings without an embedding are skipped.
func (r *PostgresRepository) SimilarListings(ctx context.Context, id int64, limit int) ([]model.Listing, error) {
	var listings []model.Listing
	err := r.db.SelectContext(ctx, &listings, `
		SELECT l.id, l.listing_uuid, l.property_type, l.price, l.bedrooms, l.bathrooms, l.square_feet,
			l.address, l.description, l.form_data, l.created_at, l.updated_at,
			l.embedding <=> src.embedding AS distance
		FROM listings l
		JOIN listings src ON src.id = $1
		WHERE l.id <> src.id
			AND l.embedding IS NOT NULL
			AND src.embedding IS NOT NULL
		ORDER BY distance
		LIMIT $2
	`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar listings: %w", err)
	}
	return listings, nil
}

// ListingsMissingEmbedding returns listings that have a description to embed but no vector yet.
// A non-empty ids restricts the lookup to those listings, embedded or not.
func (r *PostgresRepository) ListingsMissingEmbedding(ctx context.Context, ids []int64, limit int) ([]model.Listing, error) {
	var (
		listings []model.Listing
		err      error
	)
	if len(ids) > 0 {
		query, args, qerr := sqlx.In(`SELECT `+listingColumns+` FROM listings WHERE id IN (?) ORDER BY id LIMIT ?`, ids, limit)
		if qerr != nil {
			return nil, fmt.Errorf("failed to build listing query: %w", qerr)
		}
		err = r.db.SelectContext(ctx, &listings, r.db.Rebind(query), args...)
	} else {
		err = r.db.SelectContext(ctx, &listings, `
			SELECT `+listingColumns+`
			FROM listings
			WHERE embedding IS NULL
			ORDER BY id
			LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list listings without embedding: %w", err)
	}

	// The unified description is what gets embedded, so attach it
	for i := range listings {
		var unified string
		err := r.db.GetContext(ctx, &unified, `SELECT unified_description FROM listing_syntheses WHERE listing_id = $1`, listings[i].ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("failed to get synthesis for listing %d: %w", listings[i].ID, err)
		}
		listings[i].Synthesis = &model.ListingSynthesis{ListingID: listings[i].ID, UnifiedDescription: unified}
	}
	return listings, nil
}

// BatchUpdateEmbeddings updates embeddings for multiple listings
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errs []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errs
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE listings SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errs
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		if _, err := stmt.ExecContext(ctx, vec, item.ListingID); err != nil {
			errs = append(errs, fmt.Sprintf("listing %d: %v", item.ListingID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errs = append(errs, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errs
	}

	return success, errs
}

// CreateDescription stores a free-text description
func (r *PostgresRepository) CreateDescription(ctx context.Context, text string) (*model.Description, error) {
	var d model.Description
	err := r.db.GetContext(ctx, &d, `INSERT INTO descriptions (text) VALUES ($1) RETURNING id, text, created_at`, text)
	if err != nil {
		return nil, fmt.Errorf("failed to create description: %w", err)
	}
	return &d, nil
}

// LatestDescription returns the newest description; nil when there is none
func (r *PostgresRepository) LatestDescription(ctx context.Context) (*model.Description, error) {
	var d model.Description
	err := r.db.GetContext(ctx, &d, `SELECT id, text, created_at FROM descriptions ORDER BY created_at DESC, id DESC LIMIT 1`)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest description: %w", err)
	}
	return &d, nil
}

// ListDescriptions returns up to limit descriptions, newest first
func (r *PostgresRepository) ListDescriptions(ctx context.Context, limit int) ([]model.Description, error) {
	descriptions := []model.Description{}
	err := r.db.SelectContext(ctx, &descriptions, `
		SELECT id, text, created_at
		FROM descriptions
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptions: %w", err)
	}
	return descriptions, nil
}
