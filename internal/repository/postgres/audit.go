package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-assistant/internal/domain"
)

// TurnAuditRepository implements domain.TurnAuditRepository
type TurnAuditRepository struct {
	pool *pgxpool.Pool
}

// NewTurnAuditRepository creates a new turn audit repository
func NewTurnAuditRepository(db *DB) *TurnAuditRepository {
	return &TurnAuditRepository{pool: db.Pool}
}

// Create inserts one completed chat turn. The table is append-only.
func (r *TurnAuditRepository) Create(ctx context.Context, audit *domain.TurnAudit) error {
	query := `
		INSERT INTO chat_turn_audit
			(id, user_id, role, variant, scope_kind, department, subject, question, sources_count, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		audit.ID,
		audit.UserID,
		audit.Role,
		audit.Variant,
		audit.ScopeKind,
		audit.Department,
		audit.Subject,
		audit.Question,
		audit.SourcesCount,
		audit.Outcome,
		audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create turn audit: %w", err)
	}

	return nil
}

// ListByUser retrieves the most recent audited turns for a user
func (r *TurnAuditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]domain.TurnAudit, error) {
	query := `
		SELECT id, user_id, role, variant, scope_kind, department, subject, question, sources_count, outcome, created_at
		FROM chat_turn_audit
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list turn audits: %w", err)
	}
	defer rows.Close()

	var audits []domain.TurnAudit
	for rows.Next() {
		var a domain.TurnAudit
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Role,
			&a.Variant,
			&a.ScopeKind,
			&a.Department,
			&a.Subject,
			&a.Question,
			&a.SourcesCount,
			&a.Outcome,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan turn audit: %w", err)
		}
		audits = append(audits, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turn audits: %w", err)
	}

	return audits, nil
}
