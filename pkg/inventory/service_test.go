package inventory

import (
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartsupplypro/inventory/pkg/audit"
	"github.com/smartsupplypro/inventory/pkg/authz"
	"github.com/smartsupplypro/inventory/pkg/observability"
)

// memorySink captures audit events for assertions.
type memorySink struct {
	mu     sync.Mutex
	events []*audit.Event
}

func (s *memorySink) Record(_ context.Context, event *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *memorySink) Close() error { return nil }

func (s *memorySink) last(t *testing.T) *audit.Event {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.events, "expected at least one audit event")
	return s.events[len(s.events)-1]
}

func setupService(t *testing.T) (*Service, *memorySink, *Item) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	store := NewSQLStore(db)

	supplier := &Supplier{Name: "Acme Metals"}
	require.NoError(t, store.CreateSupplier(context.Background(), supplier))

	item := &Item{
		Name:            "Steel Bolt",
		SupplierID:      supplier.ID,
		Quantity:        100,
		Price:           1.50,
		MinimumQuantity: 10,
	}
	require.NoError(t, store.CreateItem(context.Background(), item))

	sink := &memorySink{}
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	service := NewService(store, authz.DefaultItemFieldPolicy(), sink, logger, nil)
	return service, sink, item
}

func userCtx() authz.Context {
	return authz.Context{Role: authz.RoleUser, Authenticated: true}
}

func adminCtx() authz.Context {
	return authz.Context{Role: authz.RoleAdmin, Authenticated: true}
}

func TestUpdateItemUserAdjustsStockAndPrice(t *testing.T) {
	service, sink, item := setupService(t)

	updated, err := service.UpdateItem(context.Background(), userCtx(), item.ID, ItemUpdate{
		Name:            item.Name,
		SupplierID:      item.SupplierID,
		Quantity:        80,
		Price:           1.75,
		MinimumQuantity: item.MinimumQuantity,
	})
	require.NoError(t, err)
	assert.Equal(t, 80, updated.Quantity)
	assert.Equal(t, 1.75, updated.Price)
	assert.Equal(t, "Steel Bolt", updated.Name)

	event := sink.last(t)
	assert.False(t, event.Denied)
	assert.Equal(t, audit.OperationUpdate, event.Operation)
	assert.ElementsMatch(t, []string{"price", "quantity"}, event.FieldsChanged)
	assert.Equal(t, audit.SeverityMedium, event.Severity)
}

func TestUpdateItemUserCannotRename(t *testing.T) {
	service, sink, item := setupService(t)

	_, err := service.UpdateItem(context.Background(), userCtx(), item.ID, ItemUpdate{
		Name:            "Renamed Bolt",
		SupplierID:      item.SupplierID,
		Quantity:        item.Quantity,
		Price:           item.Price,
		MinimumQuantity: item.MinimumQuantity,
	})
	require.Error(t, err)

	var restricted *ErrFieldsRestricted
	require.ErrorAs(t, err, &restricted)
	assert.Equal(t, []string{"name"}, restricted.Fields)

	event := sink.last(t)
	assert.True(t, event.Denied)
	assert.Equal(t, audit.SeverityCritical, event.Severity)

	// nothing persisted
	got, err := service.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Steel Bolt", got.Name)
}

func TestUpdateItemUnchangedRestrictedFieldIsNoViolation(t *testing.T) {
	service, _, item := setupService(t)

	// Full payload re-submits the existing name verbatim while the user
	// only changes quantity. This must not be a violation.
	updated, err := service.UpdateItem(context.Background(), userCtx(), item.ID, ItemUpdate{
		Name:            item.Name,
		SupplierID:      item.SupplierID,
		Quantity:        42,
		Price:           item.Price,
		MinimumQuantity: item.MinimumQuantity,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, updated.Quantity)
}

func TestUpdateItemNoChangesIsNoOp(t *testing.T) {
	service, sink, item := setupService(t)

	before := len(sink.events)
	_, err := service.UpdateItem(context.Background(), adminCtx(), item.ID, ItemUpdate{
		Name:            item.Name,
		SupplierID:      item.SupplierID,
		Quantity:        item.Quantity,
		Price:           item.Price,
		MinimumQuantity: item.MinimumQuantity,
	})
	require.NoError(t, err)
	assert.Len(t, sink.events, before, "no-op update should not be audited")
}

func TestUpdateItemAdminRenames(t *testing.T) {
	service, sink, item := setupService(t)

	updated, err := service.UpdateItem(context.Background(), adminCtx(), item.ID, ItemUpdate{
		Name:            "Titanium Bolt",
		SupplierID:      item.SupplierID,
		Quantity:        item.Quantity,
		Price:           item.Price,
		MinimumQuantity: item.MinimumQuantity,
	})
	require.NoError(t, err)
	assert.Equal(t, "Titanium Bolt", updated.Name)

	event := sink.last(t)
	assert.False(t, event.Denied)
	assert.Equal(t, audit.SeverityHigh, event.Severity)
}

func TestUpdateItemNotFound(t *testing.T) {
	service, _, _ := setupService(t)

	_, err := service.UpdateItem(context.Background(), adminCtx(), "missing", ItemUpdate{
		Name: "Anything", SupplierID: "s", Quantity: 1, Price: 1, MinimumQuantity: 1,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItemRejectsInvalidPayload(t *testing.T) {
	service, _, item := setupService(t)

	_, err := service.UpdateItem(context.Background(), adminCtx(), item.ID, ItemUpdate{
		Name: "", Quantity: 1, Price: 1,
	})
	assert.Error(t, err)

	_, err = service.UpdateItem(context.Background(), adminCtx(), item.ID, ItemUpdate{
		Name: "Bolt", Quantity: -1, Price: 1,
	})
	assert.Error(t, err)
}

func TestDeleteItemAuditedAsIdentityMutation(t *testing.T) {
	service, sink, item := setupService(t)

	require.NoError(t, service.DeleteItem(context.Background(), adminCtx(), item.ID))

	event := sink.last(t)
	assert.Equal(t, audit.OperationDelete, event.Operation)
	assert.Equal(t, audit.SeverityHigh, event.Severity)

	_, err := service.GetItem(context.Background(), item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateItemUnknownSupplier(t *testing.T) {
	service, _, _ := setupService(t)

	_, err := service.CreateItem(context.Background(), adminCtx(), &Item{
		Name:       "Orphan Widget",
		SupplierID: "no-such-supplier",
		Quantity:   1,
		Price:      1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCreateSupplierBlankName(t *testing.T) {
	service, _, _ := setupService(t)

	_, err := service.CreateSupplier(context.Background(), adminCtx(), &Supplier{Name: "   "})
	assert.Error(t, err)
}

func TestSummaryAggregates(t *testing.T) {
	service, _, item := setupService(t)

	summary, err := service.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ItemCount)
	assert.Equal(t, 1, summary.SupplierCount)
	assert.Equal(t, item.Quantity, summary.TotalUnits)
	assert.InDelta(t, float64(item.Quantity)*item.Price, summary.TotalValue, 0.001)
	assert.Equal(t, 0, summary.BelowMinimum)
}
