package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanhale/storefront-backend/pkg/db/models"
	"github.com/jordanhale/storefront-backend/pkg/enums"
	pkgerrors "github.com/jordanhale/storefront-backend/pkg/errors"
)

func newCatalogService(t *testing.T) (Service, *Repository) {
	t.Helper()
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	return svc, repo
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestServiceGetProductHidesInactive(t *testing.T) {
	svc, repo := newCatalogService(t)
	ctx := context.Background()

	inactive := &models.Product{
		ID:            uuid.New(),
		Name:          "Retired Chair",
		Price:         decimal.RequireFromString("55.00"),
		StockQuantity: 2,
		Status:        enums.ProductStatusInactive,
	}
	_, err := repo.Create(ctx, inactive)
	require.NoError(t, err)

	_, err = svc.GetProduct(ctx, inactive.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.GetProduct(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceCreateProductValidation(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{Name: "   "})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateProduct(ctx, CreateProductInput{
		Name:  "Bad Price",
		Price: decimal.RequireFromString("-1.00"),
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateProduct(ctx, CreateProductInput{
		Name:          "Bad Stock",
		Price:         decimal.RequireFromString("1.00"),
		StockQuantity: -3,
	})
	requireCode(t, err, pkgerrors.CodeValidation)

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:          "Pine Stool",
		Price:         decimal.RequireFromString("24.99"),
		StockQuantity: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ProductStatusActive, created.Status)
	assert.Equal(t, 7, created.StockQuantity)
	assert.True(t, created.InStock)
}

func TestServiceUpdateProduct(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:          "Floor Lamp",
		Price:         decimal.RequireFromString("75.00"),
		StockQuantity: 3,
	})
	require.NoError(t, err)

	newName := "Floor Lamp v2"
	newPrice := decimal.RequireFromString("82.50")
	inactive := enums.ProductStatusInactive
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{
		Name:   &newName,
		Price:  &newPrice,
		Status: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Floor Lamp v2", updated.Name)
	assert.True(t, updated.Price.Equal(newPrice))
	assert.Equal(t, enums.ProductStatusInactive, updated.Status)

	// hidden from the public read path once inactive
	_, err = svc.GetProduct(ctx, created.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.UpdateProduct(ctx, uuid.New(), UpdateProductInput{Name: &newName})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestServiceAdjustStock(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:          "Bookend Pair",
		Price:         decimal.RequireFromString("18.00"),
		StockQuantity: 1,
	})
	require.NoError(t, err)

	restocked, err := svc.AdjustStock(ctx, created.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, restocked.StockQuantity)

	_, err = svc.AdjustStock(ctx, created.ID, -6)
	requireCode(t, err, pkgerrors.CodeInsufficientStock)

	_, err = svc.AdjustStock(ctx, created.ID, 0)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.AdjustStock(ctx, uuid.New(), 2)
	requireCode(t, err, pkgerrors.CodeNotFound)
}
