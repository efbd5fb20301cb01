package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jordanhale/storefront-backend/pkg/db/models"
	"github.com/jordanhale/storefront-backend/pkg/enums"
	"github.com/jordanhale/storefront-backend/pkg/pagination"
)

// ErrStockConflict reports that a conditional stock decrement matched no row:
// the product exists but its stock_quantity is below the requested amount.
// Callers translate it into their own error surface; it never crosses the API
// boundary as-is.
var ErrStockConflict = errors.New("stock conflict")

// Repository provides product persistence, including the conditional stock
// operations checkout relies on.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves an existing product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DecrementStock subtracts qty from the product's stock in a single
// conditional UPDATE. The WHERE clause guards the non-negative invariant: when
// stock is already below qty no row matches and nothing is written. Returns
// gorm.ErrRecordNotFound when the product does not exist and ErrStockConflict
// when it exists but cannot cover qty.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return errors.New("qty must be positive")
	}

	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// No row matched: distinguish a missing product from a stock shortfall.
	var exists int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStockConflict
}

// AdjustStock applies a signed delta to the product's stock. Negative deltas
// carry the same non-negative guard as DecrementStock.
func (r *Repository) AdjustStock(ctx context.Context, productID uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	if delta < 0 {
		return r.DecrementStock(ctx, productID, -delta)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListQuery describes a catalog page request.
type ListQuery struct {
	Pagination pagination.Params
	Search     string
	Status     *enums.ProductStatus
	Tag        string
}

// ListResult is one page of products plus the cursor for the next page.
type ListResult struct {
	Items      []models.Product
	NextCursor string
	HasMore    bool
}

// List returns a cursor-paginated page of products ordered newest first.
func (r *Repository) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Product{})

	if query.Status != nil {
		qb = qb.Where("status = ?", *query.Status)
	}
	if term := strings.TrimSpace(query.Search); term != "" {
		qb = qb.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	if tag := strings.TrimSpace(query.Tag); tag != "" {
		qb = qb.Where("? = ANY(tags)", tag)
	}
	if cursor != nil {
		qb = qb.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Product
	err = qb.
		Order("created_at DESC, id DESC").
		Limit(limitWithBuffer).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: rows}
	if len(rows) > pageSize {
		result.Items = rows[:pageSize]
		result.HasMore = true
		last := result.Items[len(result.Items)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}
