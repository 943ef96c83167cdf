package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound         = errors.New("lead not found")
	ErrFollowUpNotFound = errors.New("follow-up not found")
	ErrAgentNotFound    = errors.New("agent not found")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is a row of the leads table. The four follow-up cache columns
// (next_follow_up_due, follow_up_completed, follow_up_overdue,
// follow_up_state) are a projection of the lead's follow-up log and are
// written only through UpdateScheduleCache and MarkFollowUpOverdue.
type Lead struct {
	ID                uuid.UUID
	Phone             string
	ContactName       string
	OwningAgentID     uuid.UUID
	OriginalAgentID   uuid.UUID
	PipelineState     string
	Active            bool
	NextFollowUpDue   *time.Time
	FollowUpCompleted bool
	FollowUpOverdue   bool
	FollowUpState     string
	LastFollowUpAt    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const leadColumns = `id, phone, contact_name, owning_agent_id, original_agent_id,
		pipeline_state, active, next_follow_up_due, follow_up_completed,
		follow_up_overdue, follow_up_state, last_follow_up_at, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.Phone, &lead.ContactName, &lead.OwningAgentID, &lead.OriginalAgentID,
		&lead.PipelineState, &lead.Active, &lead.NextFollowUpDue, &lead.FollowUpCompleted,
		&lead.FollowUpOverdue, &lead.FollowUpState, &lead.LastFollowUpAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func (r *Repository) GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

// FindLeadsByPhone returns every lead registered under the normalized phone,
// terminal or not, newest first. The conflict resolver classifies them.
func (r *Repository) FindLeadsByPhone(ctx context.Context, phone string) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE phone = $1
		ORDER BY created_at DESC
	`, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}

	return leads, rows.Err()
}

// FindActiveLeadIDs returns the ids of active leads still in a non-terminal
// pipeline state. This is the id set SynchronizeAllActive operates on.
func (r *Repository) FindActiveLeadIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM leads
		WHERE active = true
		  AND pipeline_state NOT IN ('Won', 'Lost')
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ScheduleCacheParams is the full replacement value for a lead's follow-up
// cache. The cache is always overwritten wholesale, never patched.
type ScheduleCacheParams struct {
	NextFollowUpDue   *time.Time
	FollowUpCompleted bool
	FollowUpOverdue   bool
	FollowUpState     string
	LastFollowUpAt    *time.Time
}

func (r *Repository) UpdateScheduleCache(ctx context.Context, leadID uuid.UUID, params ScheduleCacheParams) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET next_follow_up_due = $2,
		    follow_up_completed = $3,
		    follow_up_overdue = $4,
		    follow_up_state = $5,
		    last_follow_up_at = COALESCE($6, last_follow_up_at),
		    updated_at = now()
		WHERE id = $1
	`, leadID, params.NextFollowUpDue, params.FollowUpCompleted,
		params.FollowUpOverdue, params.FollowUpState, params.LastFollowUpAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInterestedProducts returns the product codes a lead is registered for.
func (r *Repository) ListInterestedProducts(ctx context.Context, leadID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT product_code
		FROM interested_products
		WHERE lead_id = $1
		ORDER BY product_code ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}

// Agent is a row of the agents table, read by the notification module.
type Agent struct {
	ID       uuid.UUID
	Email    string
	FullName string
}

func (r *Repository) GetAgentByID(ctx context.Context, id uuid.UUID) (Agent, error) {
	var agent Agent
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, full_name FROM agents WHERE id = $1
	`, id).Scan(&agent.ID, &agent.Email, &agent.FullName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agent{}, ErrAgentNotFound
	}
	if err != nil {
		return Agent{}, err
	}
	return agent, nil
}

// Ping verifies database connectivity for health checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
