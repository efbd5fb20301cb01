package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jordanhale/storefront-backend/internal/cart"
	"github.com/jordanhale/storefront-backend/internal/catalog"
	"github.com/jordanhale/storefront-backend/internal/orders"
	"github.com/jordanhale/storefront-backend/pkg/db"
	"github.com/jordanhale/storefront-backend/pkg/db/models"
	"github.com/jordanhale/storefront-backend/pkg/enums"
	pkgerrors "github.com/jordanhale/storefront-backend/pkg/errors"
	"github.com/jordanhale/storefront-backend/pkg/logger"
	"github.com/jordanhale/storefront-backend/pkg/metrics"
	"github.com/jordanhale/storefront-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service executes checkout: it converts a cart into an order, decrements
// stock, and clears the cart, all inside one transaction. Either every effect
// lands or none do.
type Service interface {
	Execute(ctx context.Context, input Input) (*orders.OrderDTO, error)
}

// Input captures the validated checkout request.
type Input struct {
	OwnerKey        string
	UserID          *uuid.UUID
	PaymentMethod   enums.PaymentMethod
	ShippingAddress types.Address
	BillingAddress  *types.Address
}

type service struct {
	tx             txRunner
	cartRepo       *cart.Repository
	catalogRepo    *catalog.Repository
	ordersRepo     *orders.Repository
	validate       *validator.Validate
	logg           *logger.Logger
	checkoutMx     *metrics.CheckoutMetrics
	numberAttempts int
}

// NewService builds the checkout service. numberAttempts bounds how many
// order numbers are tried before giving up on a same-second collision storm.
func NewService(
	tx txRunner,
	cartRepo *cart.Repository,
	catalogRepo *catalog.Repository,
	ordersRepo *orders.Repository,
	logg *logger.Logger,
	checkoutMx *metrics.CheckoutMetrics,
	numberAttempts int,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if numberAttempts <= 0 {
		numberAttempts = 5
	}
	return &service{
		tx:             tx,
		cartRepo:       cartRepo,
		catalogRepo:    catalogRepo,
		ordersRepo:     ordersRepo,
		validate:       validator.New(),
		logg:           logg,
		checkoutMx:     checkoutMx,
		numberAttempts: numberAttempts,
	}, nil
}

func (s *service) Execute(ctx context.Context, input Input) (*orders.OrderDTO, error) {
	started := time.Now()
	ctx = s.logg.WithCartOwner(ctx, input.OwnerKey)

	dto, err := s.execute(ctx, input)
	elapsed := time.Since(started)
	if err != nil {
		reason := "internal"
		if typed := pkgerrors.As(err); typed != nil {
			reason = strings.ToLower(string(typed.Code()))
		}
		s.checkoutMx.IncFailure(reason)
		s.checkoutMx.ObserveDuration("failure", elapsed)
		return nil, err
	}

	s.checkoutMx.IncSuccess()
	s.checkoutMx.ObserveDuration("success", elapsed)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":     dto.ID,
		"order_number": dto.OrderNumber,
		"total":        dto.TotalAmount,
	}), "checkout completed")
	return dto, nil
}

func (s *service) execute(ctx context.Context, input Input) (*orders.OrderDTO, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}

	// A duplicate order number aborts the whole transaction (Postgres rejects
	// further statements after an error), so the retry wraps the transaction
	// rather than the insert.
	for attempt := 0; attempt < s.numberAttempts; attempt++ {
		number, err := orders.NewOrderNumber(time.Now())
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating order number")
		}

		dto, err := s.attempt(ctx, input, number)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_orders_order_number") {
				continue
			}
			return nil, err
		}
		return dto, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique order number")
}

// attempt runs one full checkout transaction under the given order number.
func (s *service) attempt(ctx context.Context, input Input, orderNumber string) (*orders.OrderDTO, error) {
	var result *orders.OrderDTO

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		catalogRepo := s.catalogRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		items, err := cartRepo.FindItems(ctx, input.OwnerKey)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart items")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
		}

		products, err := s.loadAndCheckProducts(ctx, catalogRepo, items)
		if err != nil {
			return err
		}

		totals := ComputeTotals(items)
		order := buildOrder(input, orderNumber, totals, items, products)

		created, err := ordersRepo.Create(ctx, order)
		if err != nil {
			// surfaced as-is so the retry loop can spot the number collision
			return err
		}

		// Conditional decrements are the authoritative stock check; the
		// pre-check above only produces friendlier errors for the common case.
		for _, item := range items {
			if err := catalogRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return s.decrementError(ctx, catalogRepo, item, err)
			}
		}

		if err := cartRepo.Clear(ctx, input.OwnerKey); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
		}

		loaded, err := ordersRepo.FindByID(ctx, created.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reloading order")
		}
		result = orders.ToOrderDTO(loaded)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) validateInput(input *Input) error {
	if strings.TrimSpace(input.OwnerKey) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart owner required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	input.ShippingAddress.Normalize()
	if err := s.validate.Struct(input.ShippingAddress); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address").
			WithDetails(addressDetails("shipping_address", err))
	}

	if input.BillingAddress == nil || input.BillingAddress.IsZero() {
		billing := input.ShippingAddress
		input.BillingAddress = &billing
		return nil
	}
	input.BillingAddress.Normalize()
	if err := s.validate.Struct(*input.BillingAddress); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid billing address").
			WithDetails(addressDetails("billing_address", err))
	}
	return nil
}

// loadAndCheckProducts verifies every cart line references a live product
// with enough stock, and returns the products keyed by ID for snapshotting.
func (s *service) loadAndCheckProducts(
	ctx context.Context,
	catalogRepo *catalog.Repository,
	items []models.CartItem,
) (map[uuid.UUID]*models.Product, error) {
	products := make(map[uuid.UUID]*models.Product, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart line").
				WithDetails(map[string]any{"product_id": item.ProductID, "reason": "quantity must be positive"})
		}

		product, err := catalogRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart references a missing product").
					WithDetails(map[string]any{"product_id": item.ProductID, "reason": "product no longer exists"})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
		}
		if product.Status != enums.ProductStatusActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart references an inactive product").
				WithDetails(map[string]any{"product_id": item.ProductID, "reason": "product is inactive"})
		}
		if product.StockQuantity < item.Quantity {
			return nil, insufficientStock(item.ProductID, item.Quantity, product.StockQuantity)
		}
		products[item.ProductID] = product
	}
	return products, nil
}

// decrementError translates a failed conditional decrement. A stock conflict
// here means a concurrent checkout won the race after our pre-check.
func (s *service) decrementError(
	ctx context.Context,
	catalogRepo *catalog.Repository,
	item models.CartItem,
	err error,
) error {
	switch {
	case errors.Is(err, catalog.ErrStockConflict):
		available := 0
		if product, readErr := catalogRepo.FindByID(ctx, item.ProductID); readErr == nil {
			available = product.StockQuantity
		}
		return insufficientStock(item.ProductID, item.Quantity, available)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeValidation, "cart references a missing product").
			WithDetails(map[string]any{"product_id": item.ProductID, "reason": "product no longer exists"})
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrementing stock")
	}
}

func buildOrder(
	input Input,
	orderNumber string,
	totals Totals,
	items []models.CartItem,
	products map[uuid.UUID]*models.Product,
) *models.Order {
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product := products[item.ProductID]
		productID := item.ProductID
		snapshot := types.ProductSnapshot{
			Name:  product.Name,
			Price: product.Price,
		}
		if product.ImageURL != nil {
			snapshot.ImageURL = *product.ImageURL
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID:       &productID,
			ProductName:     product.Name,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
			TotalPrice:      item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			ProductSnapshot: snapshot,
		})
	}

	return &models.Order{
		OrderNumber:     orderNumber,
		UserID:          input.UserID,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.Tax,
		ShippingAmount:  totals.Shipping,
		TotalAmount:     totals.Total,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  *input.BillingAddress,
		Items:           orderItems,
	}
}

func insufficientStock(productID uuid.UUID, requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		})
}

func addressDetails(field string, err error) map[string]any {
	details := map[string]any{"field": field}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			missing = append(missing, strings.ToLower(fe.Field()))
		}
		details["invalid_fields"] = missing
	}
	return details
}
