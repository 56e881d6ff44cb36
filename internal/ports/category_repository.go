package ports

import "context"

// CategoryRepository maintains the category/subcategory taxonomy referenced
// by log entries. Ensure-style methods create on first use, which is how
// bulk import materializes categories found in CSV rows.
type CategoryRepository interface {
	EnsureCategory(ctx context.Context, ownerID, name string) (string, error)
	EnsureSubcategory(ctx context.Context, categoryID, name string) (string, error)
}
