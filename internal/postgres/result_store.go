package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentiwatch/watchdog/internal/domain"
)

// ErrResultNotFound is returned when no result exists for a ticket ID.
var ErrResultNotFound = errors.New("result not found")

// ResultStore implements domain.ResultStore on a pgx pool. Nested
// result parts are stored as jsonb, so the pipeline core stays free of
// schema knowledge.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) Save(ctx context.Context, result domain.ProcessResult) error {
	sentiment, err := marshalNullable(result.Sentiment)
	if err != nil {
		return fmt.Errorf("failed to encode sentiment: %w", err)
	}
	decision, err := marshalNullable(result.Decision)
	if err != nil {
		return fmt.Errorf("failed to encode decision: %w", err)
	}
	recommendation, err := json.Marshal(result.Recommendation)
	if err != nil {
		return fmt.Errorf("failed to encode recommendation: %w", err)
	}
	notifications, err := json.Marshal(result.Notifications)
	if err != nil {
		return fmt.Errorf("failed to encode notifications: %w", err)
	}
	annotations, err := json.Marshal(result.Annotations)
	if err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO ticket_results (ticket_id, state, sentiment, decision, recommendation, notifications, annotations, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticket_id) DO UPDATE SET
			state = EXCLUDED.state,
			sentiment = EXCLUDED.sentiment,
			decision = EXCLUDED.decision,
			recommendation = EXCLUDED.recommendation,
			notifications = EXCLUDED.notifications,
			annotations = EXCLUDED.annotations,
			processed_at = EXCLUDED.processed_at
	`, result.TicketID, string(result.State), sentiment, decision,
		string(recommendation), string(notifications), string(annotations), result.ProcessedAt)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

// GetByTicketID loads one saved result.
func (s *ResultStore) GetByTicketID(ctx context.Context, ticketID uuid.UUID) (*domain.ProcessResult, error) {
	var (
		result         domain.ProcessResult
		state          string
		sentiment      *string
		decision       *string
		recommendation string
		notifications  string
		annotations    string
	)

	err := s.pool.QueryRow(ctx, `
		SELECT ticket_id, state, sentiment, decision, recommendation, notifications, annotations, processed_at
		FROM ticket_results
		WHERE ticket_id = $1
	`, ticketID).Scan(&result.TicketID, &state, &sentiment, &decision,
		&recommendation, &notifications, &annotations, &result.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	result.State = domain.TicketState(state)
	if err := unmarshalNullable(sentiment, &result.Sentiment); err != nil {
		return nil, fmt.Errorf("failed to decode sentiment: %w", err)
	}
	if err := unmarshalNullable(decision, &result.Decision); err != nil {
		return nil, fmt.Errorf("failed to decode decision: %w", err)
	}
	if err := json.Unmarshal([]byte(recommendation), &result.Recommendation); err != nil {
		return nil, fmt.Errorf("failed to decode recommendation: %w", err)
	}
	if err := json.Unmarshal([]byte(notifications), &result.Notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	if err := json.Unmarshal([]byte(annotations), &result.Annotations); err != nil {
		return nil, fmt.Errorf("failed to decode annotations: %w", err)
	}

	return &result, nil
}

func marshalNullable[T any](v *T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func unmarshalNullable[T any](raw *string, dst **T) error {
	if raw == nil {
		*dst = nil
		return nil
	}
	var v T
	if err := json.Unmarshal([]byte(*raw), &v); err != nil {
		return err
	}
	*dst = &v
	return nil
}
