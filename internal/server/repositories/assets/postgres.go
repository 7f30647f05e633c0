package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/dbx"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
)

const (
	assetColumns = `i.id, i.s3_key, i.url, i.content_type, i.size, i.user_id, i.created_at, i.updated_at`
	ownerColumns = `u.first_name, u.last_name`
)

// PostgresRepository implements asset metadata storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an asset row. The filename column mirrors the object key.
func (r *PostgresRepository) Create(ctx context.Context, in models.NewAsset) (*models.Asset, error) {
	query := `
		INSERT INTO images (filename, s3_key, url, content_type, size, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	a := &models.Asset{
		Key:         in.Key,
		URL:         in.URL,
		ContentType: in.ContentType,
		Size:        in.Size,
		UserID:      in.UserID,
	}

	err := r.db.QueryRowContext(ctx, query, in.Key, in.Key, in.URL, in.ContentType, in.Size, in.UserID).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM images i
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC`

	return r.list(ctx, false, query, ownerID)
}

func (r *PostgresRepository) ListPublic(ctx context.Context) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + `, ` + ownerColumns + ` FROM images i
		JOIN users u ON i.user_id = u.id
		WHERE u.is_active = TRUE
		ORDER BY i.created_at DESC`

	return r.list(ctx, true, query)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + `, ` + ownerColumns + ` FROM images i
		JOIN users u ON i.user_id = u.id
		WHERE i.id = $1 AND u.is_active = TRUE`

	return r.getOne(r.db.QueryRowContext(ctx, query, id), true)
}

func (r *PostgresRepository) GetByIDAndOwner(ctx context.Context, id, ownerID int64) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM images i
		WHERE i.id = $1 AND i.user_id = $2`

	return r.getOne(r.db.QueryRowContext(ctx, query, id, ownerID), false)
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM images WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListKeysByOwner(ctx context.Context, ownerID int64) ([]string, error) {
	query := `SELECT s3_key FROM images WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID int64) (int64, error) {
	query := `DELETE FROM images WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) list(ctx context.Context, withOwner bool, query string, args ...any) ([]*models.Asset, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select images: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows, withOwner)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) getOne(row *sql.Row, withOwner bool) (*models.Asset, error) {
	a, err := scanAsset(row, withOwner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func scanAsset(s scanner, withOwner bool) (*models.Asset, error) {
	var (
		a           models.Asset
		contentType sql.NullString
		size        sql.NullInt64
	)

	dest := []any{&a.ID, &a.Key, &a.URL, &contentType, &size, &a.UserID, &a.CreatedAt, &a.UpdatedAt}

	var owner models.Owner
	if withOwner {
		dest = append(dest, &owner.FirstName, &owner.LastName)
	}

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	if contentType.Valid {
		a.ContentType = &contentType.String
	}
	if size.Valid {
		a.Size = &size.Int64
	}
	if withOwner {
		a.Owner = &owner
	}

	return &a, nil
}
