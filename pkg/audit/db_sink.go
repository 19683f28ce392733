package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartsupplypro/inventory/pkg/authz"
)

// DBSink persists audit events to a SQL database (postgres in
// production, sqlite in tests).
type DBSink struct {
	db *sql.DB
}

// NewDBSink creates a database-backed audit sink and ensures the
// audit_events table exists.
func NewDBSink(db *sql.DB) (*DBSink, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	sink := &DBSink{db: db}
	if err := sink.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure audit_events table: %w", err)
	}
	return sink, nil
}

func (s *DBSink) ensureTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			actor_email TEXT,
			role TEXT NOT NULL,
			operation TEXT NOT NULL,
			resource_type TEXT NOT NULL,
			resource_id TEXT,
			fields_changed TEXT,
			denied BOOLEAN NOT NULL,
			severity TEXT NOT NULL,
			message TEXT,
			request_id TEXT
		)
	`)
	return err
}

// Record inserts the event.
func (s *DBSink) Record(ctx context.Context, event *Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	fields, err := json.Marshal(event.FieldsChanged)
	if err != nil {
		return fmt.Errorf("failed to encode changed fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events
			(id, timestamp, actor_email, role, operation, resource_type, resource_id,
			 fields_changed, denied, severity, message, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, event.ID, event.Timestamp, event.ActorEmail, string(event.Role), string(event.Operation),
		string(event.ResourceType), event.ResourceID, string(fields),
		event.Denied, string(event.Severity), event.Message, event.RequestID)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// Search retrieves audit events matching the filter, newest first.
func (s *DBSink) Search(ctx context.Context, filter SearchFilter) ([]*Event, error) {
	query := `
		SELECT id, timestamp, actor_email, role, operation, resource_type,
		       resource_id, fields_changed, denied, severity, message, request_id
		FROM audit_events
		WHERE 1=1
	`
	args := []interface{}{}
	idx := 1

	addCond := func(cond string, value interface{}) {
		query += fmt.Sprintf(" AND %s $%d", cond, idx)
		args = append(args, value)
		idx++
	}

	if filter.StartTime != nil {
		addCond("timestamp >=", *filter.StartTime)
	}
	if filter.EndTime != nil {
		addCond("timestamp <=", *filter.EndTime)
	}
	if filter.ActorEmail != "" {
		addCond("actor_email =", filter.ActorEmail)
	}
	if filter.Severity != nil {
		addCond("severity =", string(*filter.Severity))
	}
	if filter.Denied != nil {
		addCond("denied =", *filter.Denied)
	}

	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", idx)
		args = append(args, filter.Limit)
		idx++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		event := &Event{}
		var role, fieldsJSON string
		err := rows.Scan(&event.ID, &event.Timestamp, &event.ActorEmail, &role,
			&event.Operation, &event.ResourceType, &event.ResourceID,
			&fieldsJSON, &event.Denied, &event.Severity, &event.Message,
			&event.RequestID)
		if err != nil {
			return nil, err
		}
		event.Role = authz.RoleOrUser(role)
		if fieldsJSON != "" {
			if err := json.Unmarshal([]byte(fieldsJSON), &event.FieldsChanged); err != nil {
				event.FieldsChanged = nil
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// DeleteOlderThan removes events past the retention horizon and returns
// the number of rows deleted.
func (s *DBSink) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM audit_events WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired audit events: %w", err)
	}
	return result.RowsAffected()
}

// Close is a no-op; the sink does not own the database handle.
func (s *DBSink) Close() error { return nil }
