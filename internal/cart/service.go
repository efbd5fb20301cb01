package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jordanhale/storefront-backend/pkg/db/models"
	"github.com/jordanhale/storefront-backend/pkg/enums"
	pkgerrors "github.com/jordanhale/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart operations keyed by owner (session id for guests,
// user id once authenticated).
type Service interface {
	GetCart(ctx context.Context, ownerKey string) (*CartDTO, error)
	AddItem(ctx context.Context, ownerKey string, productID uuid.UUID, quantity int) (*CartDTO, error)
	UpdateItemQuantity(ctx context.Context, ownerKey string, productID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, ownerKey string, productID uuid.UUID) (*CartDTO, error)
	ClearCart(ctx context.Context, ownerKey string) error
	MergeOnLogin(ctx context.Context, sessionKey, userKey string) error
}

type service struct {
	repo     *Repository
	tx       txRunner
	products productLoader
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// GetCart returns the owner's cart with lines in the order they were added.
// Lines whose product has since gone inactive or out of stock stay in the
// cart but are flagged unavailable; checkout is where they hard-fail.
func (s *service) GetCart(ctx context.Context, ownerKey string) (*CartDTO, error) {
	if err := validateOwnerKey(ownerKey); err != nil {
		return nil, err
	}

	items, err := s.repo.FindItems(ctx, ownerKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart items")
	}
	if len(items) == 0 {
		return emptyCartDTO(), nil
	}

	dto := emptyCartDTO()
	cache := map[uuid.UUID]*models.Product{}
	for _, item := range items {
		line := ItemDTO{
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: lineTotal(item),
		}

		product, err := s.loadProduct(ctx, item.ProductID, cache)
		switch {
		case err == nil:
			line.ProductName = product.Name
			line.Available = product.Status == enums.ProductStatusActive &&
				product.StockQuantity >= item.Quantity
		case errors.Is(err, gorm.ErrRecordNotFound):
			// product deleted since it was added
			line.Available = false
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart product")
		}

		dto.Items = append(dto.Items, line)
		dto.Subtotal = dto.Subtotal.Add(line.LineTotal)
		dto.ItemCount += line.Quantity
	}
	return dto, nil
}

// AddItem adds a product to the cart or increments the existing line. The
// unit price is captured on first add and kept through later increments. The
// stock check here is advisory; the authoritative one happens at checkout.
func (s *service) AddItem(ctx context.Context, ownerKey string, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if err := validateOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if product.Status != enums.ProductStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	existing, err := s.repo.FindItem(ctx, ownerKey, productID)
	switch {
	case err == nil:
		target := existing.Quantity + quantity
		if target > product.StockQuantity {
			return nil, insufficientStock(productID, target, product.StockQuantity)
		}
		if err := s.repo.UpdateQuantity(ctx, ownerKey, productID, target); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating cart line")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if quantity > product.StockQuantity {
			return nil, insufficientStock(productID, quantity, product.StockQuantity)
		}
		item := &models.CartItem{
			OwnerKey:  ownerKey,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		if _, err := s.repo.Create(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating cart line")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart line")
	}

	return s.GetCart(ctx, ownerKey)
}

// UpdateItemQuantity sets an absolute quantity on a line. Zero removes it.
func (s *service) UpdateItemQuantity(ctx context.Context, ownerKey string, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if err := validateOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, ownerKey, productID)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	if quantity > product.StockQuantity {
		return nil, insufficientStock(productID, quantity, product.StockQuantity)
	}

	if err := s.repo.UpdateQuantity(ctx, ownerKey, productID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating cart line")
	}
	return s.GetCart(ctx, ownerKey)
}

// RemoveItem deletes one line from the cart.
func (s *service) RemoveItem(ctx context.Context, ownerKey string, productID uuid.UUID) (*CartDTO, error) {
	if err := validateOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	if err := s.repo.Remove(ctx, ownerKey, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "removing cart line")
	}
	return s.GetCart(ctx, ownerKey)
}

// ClearCart empties the cart. Clearing an empty cart succeeds.
func (s *service) ClearCart(ctx context.Context, ownerKey string) error {
	if err := validateOwnerKey(ownerKey); err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, ownerKey); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

// MergeOnLogin folds the guest session cart into the user's cart so nothing
// is lost when a shopper signs in mid-browse.
func (s *service) MergeOnLogin(ctx context.Context, sessionKey, userKey string) error {
	if err := validateOwnerKey(sessionKey); err != nil {
		return err
	}
	if err := validateOwnerKey(userKey); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).MergeOwner(ctx, sessionKey, userKey)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merging carts")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID, cache map[uuid.UUID]*models.Product) (*models.Product, error) {
	if product, ok := cache[productID]; ok {
		return product, nil
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	cache[productID] = product
	return product, nil
}

func validateOwnerKey(ownerKey string) error {
	if strings.TrimSpace(ownerKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	return nil
}

func insufficientStock(productID uuid.UUID, requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		})
}
