package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"epaper-clip/internal/domain"
)

// PgxIface is the subset of pgxpool.Pool used here; pgxmock satisfies it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const clipImagesSchema = `CREATE TABLE IF NOT EXISTS clip_images (
	image_key    TEXT PRIMARY KEY,
	content_type TEXT NOT NULL,
	image_data   BYTEA NOT NULL,
	width        INTEGER NOT NULL,
	height       INTEGER NOT NULL,
	size_bytes   INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// ClipImageRepository stores encoded clips in PostgreSQL, content-addressed
// by SHA-256, and serves them back under publicBaseURL.
type ClipImageRepository struct {
	pool          PgxIface
	publicBaseURL string
	logger        *slog.Logger
}

func NewClipImageRepository(pool PgxIface, publicBaseURL string, logger *slog.Logger) *ClipImageRepository {
	return &ClipImageRepository{
		pool:          pool,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// EnsureSchema creates the clip_images table when missing.
func (r *ClipImageRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, clipImagesSchema); err != nil {
		return fmt.Errorf("failed to create clip_images table: %w", err)
	}
	return nil
}

// ImageKey derives the storage key for an encoded image.
func ImageKey(img *domain.EncodedImage) string {
	sum := sha256.Sum256(img.Data)
	return hex.EncodeToString(sum[:16]) + "." + string(img.Format)
}

func (r *ClipImageRepository) SaveClipImage(ctx context.Context, img *domain.EncodedImage) (string, error) {
	key := ImageKey(img)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO clip_images (image_key, content_type, image_data, width, height, size_bytes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (image_key) DO NOTHING`,
		key,
		img.ContentType(),
		img.Data,
		img.Width,
		img.Height,
		len(img.Data),
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save clip image", "error", err, "key", key)
		return "", fmt.Errorf("save clip image: %w", err)
	}
	return r.publicBaseURL + "/v1/clip-images/" + key, nil
}

func (r *ClipImageRepository) GetClipImage(ctx context.Context, key string) (*domain.StoredClipImage, error) {
	var img domain.StoredClipImage
	err := r.pool.QueryRow(ctx,
		`SELECT image_key, content_type, image_data, width, height, created_at
		 FROM clip_images
		 WHERE image_key = $1`,
		key,
	).Scan(
		&img.Key,
		&img.ContentType,
		&img.Data,
		&img.Width,
		&img.Height,
		&img.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClipImageNotFound
		}
		return nil, fmt.Errorf("get clip image: %w", err)
	}
	return &img, nil
}
