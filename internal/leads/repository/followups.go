package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// FollowUpRecord is a row of the follow_up_records table. Records are
// append-mostly: created when scheduled, mutated only to mark completion or
// overdue, never deleted in normal operation.
type FollowUpRecord struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	Type           string
	ScheduledAt    time.Time
	DeadlineAt     time.Time
	Completed      bool
	CompletedAt    *time.Time
	VisibleToAgent bool
	Overdue        bool
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const followUpColumns = `id, lead_id, type, scheduled_at, deadline_at, completed,
		completed_at, visible_to_agent, overdue, notes, created_at, updated_at`

func scanFollowUp(row pgx.Row) (FollowUpRecord, error) {
	var rec FollowUpRecord
	err := row.Scan(
		&rec.ID, &rec.LeadID, &rec.Type, &rec.ScheduledAt, &rec.DeadlineAt, &rec.Completed,
		&rec.CompletedAt, &rec.VisibleToAgent, &rec.Overdue, &rec.Notes,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// FindPendingFollowUps returns the lead's incomplete agent-visible records
// ordered by scheduled time ascending. The first element, when present, is
// the lead's next pending follow-up.
func (r *Repository) FindPendingFollowUps(ctx context.Context, leadID uuid.UUID) ([]FollowUpRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpColumns+`
		FROM follow_up_records
		WHERE lead_id = $1
		  AND completed = false
		  AND visible_to_agent = true
		ORDER BY scheduled_at ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]FollowUpRecord, 0)
	for rows.Next() {
		rec, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *Repository) ListFollowUpsByLead(ctx context.Context, leadID uuid.UUID) ([]FollowUpRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followUpColumns+`
		FROM follow_up_records
		WHERE lead_id = $1
		ORDER BY scheduled_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]FollowUpRecord, 0)
	for rows.Next() {
		rec, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *Repository) GetFollowUpByID(ctx context.Context, id uuid.UUID) (FollowUpRecord, error) {
	rec, err := scanFollowUp(r.pool.QueryRow(ctx, `
		SELECT `+followUpColumns+`
		FROM follow_up_records WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return FollowUpRecord{}, ErrFollowUpNotFound
	}
	if err != nil {
		return FollowUpRecord{}, err
	}
	return rec, nil
}

type CreateFollowUpParams struct {
	LeadID         uuid.UUID
	Type           string
	ScheduledAt    time.Time
	DeadlineAt     time.Time
	VisibleToAgent bool
	Notes          *string
}

func (r *Repository) CreateFollowUp(ctx context.Context, params CreateFollowUpParams) (FollowUpRecord, error) {
	rec, err := scanFollowUp(r.pool.QueryRow(ctx, `
		INSERT INTO follow_up_records (lead_id, type, scheduled_at, deadline_at, visible_to_agent, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+followUpColumns+`
	`, params.LeadID, params.Type, params.ScheduledAt, params.DeadlineAt, params.VisibleToAgent, params.Notes))
	if err != nil {
		return FollowUpRecord{}, err
	}
	return rec, nil
}

// CompleteFollowUp marks a record completed. Completing an already-completed
// record is a no-op returning the current row, so retries are safe.
func (r *Repository) CompleteFollowUp(ctx context.Context, id uuid.UUID) (FollowUpRecord, error) {
	rec, err := scanFollowUp(r.pool.QueryRow(ctx, `
		UPDATE follow_up_records
		SET completed = true,
		    completed_at = COALESCE(completed_at, now()),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+followUpColumns+`
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return FollowUpRecord{}, ErrFollowUpNotFound
	}
	if err != nil {
		return FollowUpRecord{}, err
	}
	return rec, nil
}

// OverdueLead is one row of the overdue scan: a lead whose cached due date has
// passed and still sits in a non-terminal pipeline state.
type OverdueLead struct {
	LeadID        uuid.UUID
	ContactName   string
	Phone         string
	OwningAgentID uuid.UUID
	DueAt         time.Time
}

// FindOverdueLeads selects the leads the batch processor must flip: pending,
// not yet marked overdue, due before now, and still in play.
func (r *Repository) FindOverdueLeads(ctx context.Context, now time.Time) ([]OverdueLead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, contact_name, phone, owning_agent_id, next_follow_up_due
		FROM leads
		WHERE follow_up_completed = false
		  AND follow_up_overdue = false
		  AND next_follow_up_due IS NOT NULL
		  AND next_follow_up_due < $1
		  AND pipeline_state IN ('New', 'Quoted', 'Negotiating')
		ORDER BY next_follow_up_due ASC
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]OverdueLead, 0)
	for rows.Next() {
		var item OverdueLead
		if err := rows.Scan(&item.LeadID, &item.ContactName, &item.Phone, &item.OwningAgentID, &item.DueAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// MarkFollowUpOverdue flips the lead's cached overdue flag and the overdue
// flag of its earliest pending visible record. The pending -> overdue
// transition is one-way; synchronization is the only path out of it.
func (r *Repository) MarkFollowUpOverdue(ctx context.Context, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET follow_up_overdue = true, updated_at = now()
		WHERE id = $1 AND follow_up_completed = false
	`, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE follow_up_records
		SET overdue = true, updated_at = now()
		WHERE id = (
			SELECT id FROM follow_up_records
			WHERE lead_id = $1 AND completed = false AND visible_to_agent = true
			ORDER BY scheduled_at ASC
			LIMIT 1
		)
	`, leadID)
	return err
}
