package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// AuditEntry is one stored administrative action.
type AuditEntry struct {
	ID         string
	ActorID    string
	Action     string
	Resource   string
	ResourceID string
	IPAddress  string
	CreatedAt  time.Time
}

// AuditFilters narrows an audit log listing. Nil fields are ignored.
type AuditFilters struct {
	ActorID *string
	Action  *string
	Since   *time.Time
	Limit   int
}

// AuditRepository defines operations for audit log data
type AuditRepository interface {
	Create(ctx context.Context, entry *AuditEntry) error
	FindAll(ctx context.Context, filters AuditFilters) ([]AuditEntry, error)
}

type auditRepository struct {
	db DBTX
}

// NewAuditRepository creates a Postgres-backed AuditRepository
func NewAuditRepository(db DBTX) AuditRepository {
	return &auditRepository{db: db}
}

// Create inserts a new audit entry
func (r *auditRepository) Create(ctx context.Context, e *AuditEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	sql := `INSERT INTO audit_logs (id, actor_id, action, resource, resource_id, ip_address, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.Exec(ctx, sql, e.ID, e.ActorID, e.Action, e.Resource, e.ResourceID, e.IPAddress, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

// FindAll retrieves audit entries with optional filters, newest first
func (r *auditRepository) FindAll(ctx context.Context, filters AuditFilters) ([]AuditEntry, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, actor_id, action, resource, resource_id, ip_address, created_at FROM audit_logs`)

	args := []any{}
	argCount := 1
	var conditions []string

	if filters.ActorID != nil && *filters.ActorID != "" {
		conditions = append(conditions, fmt.Sprintf("actor_id = $%d", argCount))
		args = append(args, *filters.ActorID)
		argCount++
	}
	if filters.Action != nil && *filters.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argCount))
		args = append(args, *filters.Action)
		argCount++
	}
	if filters.Since != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argCount))
		args = append(args, *filters.Since)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")
	if filters.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.Limit)
	}

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Resource, &e.ResourceID, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit rows: %w", err)
	}
	return entries, nil
}

// MemoryAuditRepository keeps audit entries in process.
type MemoryAuditRepository struct {
	mu      sync.RWMutex
	entries []AuditEntry
}

func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{}
}

func (r *MemoryAuditRepository) Create(_ context.Context, e *AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *MemoryAuditRepository) FindAll(_ context.Context, filters AuditFilters) ([]AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []AuditEntry
	for _, e := range r.entries {
		if filters.ActorID != nil && *filters.ActorID != "" && e.ActorID != *filters.ActorID {
			continue
		}
		if filters.Action != nil && *filters.Action != "" && e.Action != *filters.Action {
			continue
		}
		if filters.Since != nil && e.CreatedAt.Before(*filters.Since) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}
