package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/upb/llm-datagen/models"
	"github.com/upb/llm-datagen/repositories"
	"go.uber.org/zap"
)

// UsageRepository implements the repositories.UsageRepository interface
type UsageRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *sql.DB, logger *zap.Logger) repositories.UsageRepository {
	return &UsageRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new usage log entry
func (r *UsageRepository) Insert(ctx context.Context, log *models.UsageLog) error {
	query := `
		INSERT INTO usage_logs (
			id, principal, action, provider, model,
			prompt_tokens, completion_tokens, total_tokens,
			latency_ms, request_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		log.ID,
		log.Principal,
		log.Action,
		log.Provider,
		log.Model,
		log.PromptTokens,
		log.CompletionTokens,
		log.TotalTokens,
		log.LatencyMs,
		log.RequestID,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage log: %w", err)
	}

	r.logger.Debug("usage log inserted", zap.String("id", log.ID.String()), zap.String("provider", log.Provider))
	return nil
}

// ListByPrincipal retrieves usage logs for a principal with pagination
func (r *UsageRepository) ListByPrincipal(ctx context.Context, principal string, limit, offset int) ([]*models.UsageLog, error) {
	query := `
		SELECT id, principal, action, provider, model,
		       prompt_tokens, completion_tokens, total_tokens,
		       latency_ms, request_id, created_at
		FROM usage_logs
		WHERE principal = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, principal, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.UsageLog
	for rows.Next() {
		log := &models.UsageLog{}
		err := rows.Scan(
			&log.ID,
			&log.Principal,
			&log.Action,
			&log.Provider,
			&log.Model,
			&log.PromptTokens,
			&log.CompletionTokens,
			&log.TotalTokens,
			&log.LatencyMs,
			&log.RequestID,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage logs: %w", err)
	}

	return logs, nil
}
