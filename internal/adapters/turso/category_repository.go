package turso

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type CategoryRepository struct {
	db DBTX
}

func (r *CategoryRepository) EnsureCategory(ctx context.Context, ownerID, name string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE owner_id = ? AND name = ?`, ownerID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("lookup category: %w", err)
	}

	id = uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, owner_id, name) VALUES (?, ?, ?)`, id, ownerID, name); err != nil {
		return "", fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

func (r *CategoryRepository) EnsureSubcategory(ctx context.Context, categoryID, name string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM subcategories WHERE category_id = ? AND name = ?`, categoryID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("lookup subcategory: %w", err)
	}

	id = uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO subcategories (id, category_id, name) VALUES (?, ?, ?)`, id, categoryID, name); err != nil {
		return "", fmt.Errorf("insert subcategory: %w", err)
	}
	return id, nil
}
