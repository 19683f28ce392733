package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartsupplypro/inventory/pkg/audit"
	"github.com/smartsupplypro/inventory/pkg/authz"
	"github.com/smartsupplypro/inventory/pkg/contextkeys"
	"github.com/smartsupplypro/inventory/pkg/observability"
)

// ErrFieldsRestricted is returned when an update changes fields outside
// the caller's role. The HTTP layer maps it to 403 with the offending
// field names.
type ErrFieldsRestricted struct {
	Fields []string
	Role   authz.Role
}

func (e *ErrFieldsRestricted) Error() string {
	return fmt.Sprintf("role %s may not change: %s", e.Role, strings.Join(e.Fields, ", "))
}

// Service is the inventory write service. It assumes the request policy
// has already allowed the request at the HTTP-method level; the field
// policy applied here is a second, finer-grained gate.
type Service struct {
	store       Store
	fieldPolicy *authz.FieldPolicy
	auditSink   audit.Sink
	logger      *observability.Logger
	metrics     *observability.Metrics
}

// NewService creates the inventory service. metrics may be nil.
func NewService(store Store, fieldPolicy *authz.FieldPolicy, auditSink audit.Sink, logger *observability.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:       store,
		fieldPolicy: fieldPolicy,
		auditSink:   auditSink,
		logger:      logger,
		metrics:     metrics,
	}
}

func (s *Service) GetItem(ctx context.Context, id string) (*Item, error) {
	return s.store.GetItem(ctx, id)
}

func (s *Service) ListItems(ctx context.Context) ([]*Item, error) {
	return s.store.ListItems(ctx)
}

func (s *Service) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	return s.store.ListSuppliers(ctx)
}

func (s *Service) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	return s.store.GetSupplier(ctx, id)
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	return s.store.Summary(ctx)
}

// CreateItem persists a new item and records the mutation.
func (s *Service) CreateItem(ctx context.Context, authCtx authz.Context, item *Item) (*Item, error) {
	if _, err := s.store.GetSupplier(ctx, item.SupplierID); err != nil {
		if err == ErrNotFound {
			return nil, fmt.Errorf("supplier %s does not exist", item.SupplierID)
		}
		return nil, err
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.record(ctx, authCtx, audit.OperationCreate, audit.ResourceTypeItem, item.ID, nil, false)
	return item, nil
}

// UpdateItem applies an update through the field mutation policy. Only
// fields that actually differ are evaluated and applied; re-submitting
// unchanged restricted values is a no-op, not a violation.
func (s *Service) UpdateItem(ctx context.Context, authCtx authz.Context, id string, update ItemUpdate) (*Item, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := s.fieldPolicy.AuthorizeFields(authCtx.Role, existing.Snapshot(), update.Snapshot())
	if !decision.Allowed {
		if s.metrics != nil {
			s.metrics.FieldDenialsTotal.WithLabelValues(string(authCtx.Role)).Inc()
		}
		s.record(ctx, authCtx, audit.OperationUpdate, audit.ResourceTypeItem, id,
			decision.ChangedFields, true)
		return nil, &ErrFieldsRestricted{Fields: decision.RestrictedFields, Role: authCtx.Role}
	}

	if len(decision.ChangedFields) == 0 {
		return existing, nil
	}

	applyChangedFields(existing, update, decision.ChangedFields)
	if err := s.store.UpdateItem(ctx, existing); err != nil {
		return nil, err
	}

	s.record(ctx, authCtx, audit.OperationUpdate, audit.ResourceTypeItem, id,
		decision.ChangedFields, false)
	return existing, nil
}

// DeleteItem removes an item and records the mutation. A delete removes
// the identity-defining fields with the record, so it is audited as an
// identity-field mutation.
func (s *Service) DeleteItem(ctx context.Context, authCtx authz.Context, id string) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.record(ctx, authCtx, audit.OperationDelete, audit.ResourceTypeItem, id,
		[]string{authz.FieldName, authz.FieldSupplierID}, false)
	return nil
}

// CreateSupplier persists a new supplier and records the mutation.
func (s *Service) CreateSupplier(ctx context.Context, authCtx authz.Context, supplier *Supplier) (*Supplier, error) {
	if strings.TrimSpace(supplier.Name) == "" {
		return nil, fmt.Errorf("supplier name must not be blank")
	}
	if err := s.store.CreateSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	s.record(ctx, authCtx, audit.OperationCreate, audit.ResourceTypeSupplier, supplier.ID, nil, false)
	return supplier, nil
}

// DeleteSupplier removes a supplier and records the mutation.
func (s *Service) DeleteSupplier(ctx context.Context, authCtx authz.Context, id string) error {
	if err := s.store.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.record(ctx, authCtx, audit.OperationDelete, audit.ResourceTypeSupplier, id,
		[]string{authz.FieldName}, false)
	return nil
}

// applyChangedFields copies only the diffed fields onto the persisted
// entity, so unchanged fields keep their stored values verbatim.
func applyChangedFields(item *Item, update ItemUpdate, changed []string) {
	for _, field := range changed {
		switch field {
		case authz.FieldName:
			item.Name = update.Name
		case authz.FieldSupplierID:
			item.SupplierID = update.SupplierID
		case authz.FieldQuantity:
			item.Quantity = update.Quantity
		case authz.FieldPrice:
			item.Price = update.Price
		case authz.FieldMinimumQuantity:
			item.MinimumQuantity = update.MinimumQuantity
		}
	}
}

// record hands a classified mutation event to the audit sink. Audit is
// advisory: a sink failure is logged, never surfaced to the caller.
func (s *Service) record(ctx context.Context, authCtx authz.Context, op audit.Operation, resourceType audit.ResourceType, resourceID string, fields []string, denied bool) {
	event := audit.NewEvent(authCtx.Role, op, resourceType, resourceID, fields, denied)
	event.ActorEmail = contextkeys.GetActorEmail(ctx)
	event.RequestID = contextkeys.GetRequestID(ctx)
	if denied {
		event.Message = "field mutation denied by policy"
	}

	if s.metrics != nil {
		s.metrics.AuditEventsTotal.WithLabelValues(string(event.Severity)).Inc()
	}
	if err := s.auditSink.Record(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"operation":   string(op),
			"resource_id": resourceID,
		}).Error("failed to record audit event")
	}
}
