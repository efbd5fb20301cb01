package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanhale/storefront-backend/pkg/enums"
	pkgerrors "github.com/jordanhale/storefront-backend/pkg/errors"
	"github.com/jordanhale/storefront-backend/pkg/pagination"
)

func newOrdersService(t *testing.T) (Service, *Repository) {
	t.Helper()
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected coded error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestServiceGetOrderNotFound(t *testing.T) {
	svc, _ := newOrdersService(t)
	ctx := context.Background()

	_, err := svc.GetOrder(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.GetOrder(ctx, uuid.Nil)
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceUpdateStatusGuardsTerminalStates(t *testing.T) {
	svc, repo := newOrdersService(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, buildTestOrder(nil, "ORD-20250901150000-bbbbbb"))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, created.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)

	updated, err = svc.UpdateStatus(ctx, created.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)

	// delivered is terminal
	_, err = svc.UpdateStatus(ctx, created.ID, enums.OrderStatusPending)
	requireCode(t, err, pkgerrors.CodeConflict)

	// setting the same terminal status again is a no-op, not a conflict
	updated, err = svc.UpdateStatus(ctx, created.ID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)

	_, err = svc.UpdateStatus(ctx, created.ID, enums.OrderStatus("bogus"))
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestServicePaymentPaidAdvancesFulfillment(t *testing.T) {
	svc, repo := newOrdersService(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, buildTestOrder(nil, "ORD-20250901160000-cccccc"))
	require.NoError(t, err)

	updated, err := svc.UpdatePaymentStatus(ctx, created.ID, enums.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, updated.PaymentStatus)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)

	// a failed payment later does not touch fulfillment
	updated, err = svc.UpdatePaymentStatus(ctx, created.ID, enums.PaymentStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, updated.PaymentStatus)
	assert.Equal(t, enums.OrderStatusProcessing, updated.Status)
}

func TestServiceListUserOrders(t *testing.T) {
	svc, repo := newOrdersService(t)
	ctx := context.Background()

	userID := uuid.New()
	order := buildTestOrder(&userID, "ORD-20250901170000-dddddd")
	_, err := repo.Create(ctx, order)
	require.NoError(t, err)

	page, err := svc.ListUserOrders(ctx, userID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ORD-20250901170000-dddddd", page.Items[0].OrderNumber)
	require.Len(t, page.Items[0].Items, 1)
}
