// Package audit records authorization-relevant mutations: who changed
// what, whether the change was denied, and how severe the event is.
// Classification is advisory metadata; it never blocks a request and runs
// only after the authorization decision is final.
package audit

import (
	"encoding/json"
	"time"

	"github.com/smartsupplypro/inventory/pkg/authz"
)

// Severity grades an audit event. Derived by the classifier, never
// stored independently of the event it classifies.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Operation is the mutation kind being audited.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// ResourceType represents the type of resource being mutated.
type ResourceType string

const (
	ResourceTypeItem     ResourceType = "inventory_item"
	ResourceTypeSupplier ResourceType = "supplier"
	ResourceTypeUser     ResourceType = "user"
)

// Event is a single audit log entry.
type Event struct {
	ID            string       `json:"id,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
	ActorEmail    string       `json:"actor_email,omitempty"`
	Role          authz.Role   `json:"role"`
	Operation     Operation    `json:"operation"`
	ResourceType  ResourceType `json:"resource_type"`
	ResourceID    string       `json:"resource_id,omitempty"`
	FieldsChanged []string     `json:"fields_changed,omitempty"`
	Denied        bool         `json:"denied"`
	Severity      Severity     `json:"severity"`
	Message       string       `json:"message,omitempty"`
	RequestID     string       `json:"request_id,omitempty"`
}

// ToJSON converts the audit event to JSON
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON parses an audit event from JSON
func FromJSON(data []byte) (*Event, error) {
	var event Event
	err := json.Unmarshal(data, &event)
	return &event, err
}

// SearchFilter represents filters for searching audit logs
type SearchFilter struct {
	StartTime  *time.Time
	EndTime    *time.Time
	ActorEmail string
	Severity   *Severity
	Denied     *bool
	Limit      int
	Offset     int
}
