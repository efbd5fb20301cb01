package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jordanhale/storefront-backend/pkg/db/models"
)

// Repository manages persistent cart lines keyed by owner.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindItems returns the owner's cart lines in insertion order.
func (r *Repository) FindItems(ctx context.Context, ownerKey string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("owner_key = ?", ownerKey).
		Order("created_at ASC, id ASC").
		Find(&items).
		Error
	return items, err
}

// FindItem returns the owner's line for one product, if present.
func (r *Repository) FindItem(ctx context.Context, ownerKey string, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("owner_key = ? AND product_id = ?", ownerKey, productID).
		First(&item).
		Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new cart line.
func (r *Repository) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateQuantity sets the quantity on an existing line.
func (r *Repository) UpdateQuantity(ctx context.Context, ownerKey string, productID uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("owner_key = ? AND product_id = ?", ownerKey, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Remove deletes the owner's line for one product.
func (r *Repository) Remove(ctx context.Context, ownerKey string, productID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("owner_key = ? AND product_id = ?", ownerKey, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Clear removes every line for the owner in a single statement. Clearing an
// already-empty cart is not an error.
func (r *Repository) Clear(ctx context.Context, ownerKey string) error {
	return r.db.WithContext(ctx).
		Where("owner_key = ?", ownerKey).
		Delete(&models.CartItem{}).
		Error
}

// MergeOwner moves every line from one owner key to another. Lines for
// products already present on the target are summed into the target line and
// the source line dropped. Callers run this inside a transaction.
func (r *Repository) MergeOwner(ctx context.Context, fromKey, toKey string) error {
	if fromKey == "" || toKey == "" {
		return errors.New("both owner keys required")
	}
	if fromKey == toKey {
		return nil
	}

	source, err := r.FindItems(ctx, fromKey)
	if err != nil {
		return err
	}

	for i := range source {
		item := source[i]
		existing, err := r.FindItem(ctx, toKey, item.ProductID)
		switch {
		case err == nil:
			if err := r.UpdateQuantity(ctx, toKey, item.ProductID, existing.Quantity+item.Quantity); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			err := r.db.WithContext(ctx).
				Model(&models.CartItem{}).
				Where("id = ?", item.ID).
				Update("owner_key", toKey).
				Error
			if err != nil {
				return err
			}
			continue
		default:
			return err
		}
	}

	return r.Clear(ctx, fromKey)
}
