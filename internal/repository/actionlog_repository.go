package repository

import (
	"context"

	"go-cinema-booking/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ActionLogRepository interface {
	Create(ctx context.Context, event *model.AuditEvent) error
	ListRecent(ctx context.Context, limit int) ([]*model.ActionLog, error)
}

type ActionLogRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewActionLogRepository(pool *pgxpool.Pool) ActionLogRepository {
	return &ActionLogRepositoryImpl{
		pool: pool,
	}
}

func (r *ActionLogRepositoryImpl) Create(ctx context.Context, event *model.AuditEvent) error {
	query := `
		INSERT INTO action_logs (user_id, action, entity_type, entity_id, details, ip_address, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		event.UserID, event.Action, event.EntityType,
		event.EntityID, event.Details, event.IPAddress, event.OccurredAt,
	)
	return err
}

func (r *ActionLogRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*model.ActionLog, error) {
	query := `
		SELECT id, user_id, action, entity_type, entity_id, details, ip_address, occurred_at, created_at
		FROM action_logs
		ORDER BY occurred_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*model.ActionLog, 0)
	for rows.Next() {
		var l model.ActionLog
		err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.Action,
			&l.EntityType,
			&l.EntityID,
			&l.Details,
			&l.IPAddress,
			&l.OccurredAt,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return logs, nil
}
