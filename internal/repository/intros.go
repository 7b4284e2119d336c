package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Helmus101/confluence/internal/entity"
)

var (
	// ErrIntroRequestNotFound indicates no request exists for the identifier.
	ErrIntroRequestNotFound = errors.New("intro request not found")
	// ErrStatusMismatch is returned by conditional transitions when the stored
	// status differs from the expected one.
	ErrStatusMismatch = errors.New("intro request status mismatch")
)

// IntroRequestsRepository persists introduction requests.
type IntroRequestsRepository interface {
	Create(ctx context.Context, req entity.NewIntroRequest) (*entity.IntroRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.IntroRequest, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]entity.IntroRequest, error)
	ListByConnector(ctx context.Context, connectorID uuid.UUID) ([]entity.IntroRequest, error)
	// Transition moves the request from one status to another atomically.
	Transition(ctx context.Context, id uuid.UUID, from, to entity.IntroStatus) (*entity.IntroRequest, error)
	SetMessages(ctx context.Context, id uuid.UUID, messages entity.IntroMessages) error
	CountByStatus(ctx context.Context) (map[entity.IntroStatus]int, error)
}

// PGXIntroRequestsRepository implements IntroRequestsRepository using pgx.
type PGXIntroRequestsRepository struct {
	pool pgxPool
}

// NewPGXIntroRequestsRepository wires a pgx backed repository.
func NewPGXIntroRequestsRepository(pool *pgxpool.Pool) *PGXIntroRequestsRepository {
	return &PGXIntroRequestsRepository{pool: pool}
}

const introColumns = `id, requester_id, connector_user_id, contact_id, target_company, target_company_normalized,
            reason, essay, status, messages, created_at, updated_at`

func scanIntro(row pgx.Row) (*entity.IntroRequest, error) {
	var (
		req      entity.IntroRequest
		status   string
		messages []byte
	)
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.ConnectorUserID,
		&req.ContactID,
		&req.TargetCompany,
		&req.TargetCompanyNormalized,
		&req.Reason,
		&req.Essay,
		&status,
		&messages,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Status = entity.IntroStatus(status)
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &req.Messages); err != nil {
			return nil, fmt.Errorf("unmarshal messages: %w", err)
		}
	}
	return &req, nil
}

func scanIntros(rows pgx.Rows) ([]entity.IntroRequest, error) {
	defer rows.Close()
	out := make([]entity.IntroRequest, 0)
	for rows.Next() {
		req, err := scanIntro(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intro request: %w", err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intro requests: %w", err)
	}
	return out, nil
}

// Create inserts a pending request.
func (r *PGXIntroRequestsRepository) Create(ctx context.Context, in entity.NewIntroRequest) (*entity.IntroRequest, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO intro_requests (
            requester_id, connector_user_id, contact_id, target_company,
            target_company_normalized, reason, essay, status
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
        RETURNING `+introColumns,
		in.RequesterID, in.ConnectorUserID, in.ContactID, in.TargetCompany,
		in.TargetCompanyNormalized, in.Reason, stringOrNil(in.Essay))
	req, err := scanIntro(row)
	if err != nil {
		return nil, fmt.Errorf("insert intro request: %w", err)
	}
	return req, nil
}

// FindByID fetches one request.
func (r *PGXIntroRequestsRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.IntroRequest, error) {
	req, err := scanIntro(r.pool.QueryRow(ctx, `SELECT `+introColumns+` FROM intro_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIntroRequestNotFound
		}
		return nil, fmt.Errorf("query intro request: %w", err)
	}
	return req, nil
}

// ListByRequester returns requests sent by the user, newest first.
func (r *PGXIntroRequestsRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]entity.IntroRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+introColumns+` FROM intro_requests WHERE requester_id = $1 ORDER BY created_at DESC`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list sent intro requests: %w", err)
	}
	return scanIntros(rows)
}

// ListByConnector returns requests addressed to the user, newest first.
func (r *PGXIntroRequestsRepository) ListByConnector(ctx context.Context, connectorID uuid.UUID) ([]entity.IntroRequest, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+introColumns+` FROM intro_requests WHERE connector_user_id = $1 ORDER BY created_at DESC`, connectorID)
	if err != nil {
		return nil, fmt.Errorf("list received intro requests: %w", err)
	}
	return scanIntros(rows)
}

// Transition performs a compare-and-set on status. When no row is updated it
// distinguishes a missing request from one in a different state.
func (r *PGXIntroRequestsRepository) Transition(ctx context.Context, id uuid.UUID, from, to entity.IntroStatus) (*entity.IntroRequest, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE intro_requests SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status = $3
        RETURNING `+introColumns,
		string(to), id, string(from))
	req, err := scanIntro(row)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transition intro request: %w", err)
	}
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, ErrStatusMismatch
}

// SetMessages stores generated messages on the request.
func (r *PGXIntroRequestsRepository) SetMessages(ctx context.Context, id uuid.UUID, messages entity.IntroMessages) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE intro_requests SET messages = $1::jsonb, updated_at = NOW() WHERE id = $2`, string(payload), id)
	if err != nil {
		return fmt.Errorf("update intro messages: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrIntroRequestNotFound
	}
	return nil
}

// CountByStatus groups request counts by status.
func (r *PGXIntroRequestsRepository) CountByStatus(ctx context.Context) (map[entity.IntroStatus]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM intro_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count intro requests: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.IntroStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan intro count: %w", err)
		}
		counts[entity.IntroStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intro counts: %w", err)
	}
	return counts, nil
}
