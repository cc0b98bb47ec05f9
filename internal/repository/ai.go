package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AIRepository struct {
	db *pgxpool.Pool
}

// AIRequestLog is one engine call made on behalf of a user.
type AIRequestLog struct {
	UserID          uuid.UUID
	RequestType     string
	Engine          string
	Provider        string
	Model           string
	Prompt          string
	RawResponse     string
	ResponsePayload []byte
	Success         bool
	ErrorMessage    *string
	DurationMS      int64
}

func NewAIRepository(db *pgxpool.Pool) *AIRepository {
	return &AIRepository{db: db}
}

// LogRequest stores an engine call. Raw payloads that are not JSON are kept as text only.
func (r *AIRepository) LogRequest(ctx context.Context, log AIRequestLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ai_requests
		 (user_id, request_type, engine, provider, model, prompt, raw_response, response_payload, success, error_message, duration_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, '')::jsonb, $9, $10, $11)`,
		log.UserID,
		log.RequestType,
		log.Engine,
		log.Provider,
		log.Model,
		log.Prompt,
		log.RawResponse,
		string(log.ResponsePayload),
		log.Success,
		log.ErrorMessage,
		log.DurationMS,
	)
	return err
}
