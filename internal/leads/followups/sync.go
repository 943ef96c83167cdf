package followups

import (
	"context"
	"sync"
	"time"

	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// syncConcurrency bounds the fan-out of batch synchronization. Each lead is
// synchronized independently; the surrounding system guarantees no concurrent
// follow-up mutation for the same lead id.
const syncConcurrency = 8

// SyncResult is the outcome of synchronizing one lead's cache.
type SyncResult struct {
	HasPending bool
	Next       *repository.FollowUpRecord
}

// BatchFailure records one lead that failed to synchronize.
type BatchFailure struct {
	LeadID uuid.UUID
	Err    error
}

// BatchResult aggregates a batch synchronization run. A partially failed
// batch is a normal result, never a batch-level error.
type BatchResult struct {
	Succeeded      int
	Failed         int
	WithPending    int
	WithoutPending int
	Failures       []BatchFailure
}

// Synchronize recomputes a lead's follow-up cache from its log. The earliest
// incomplete agent-visible record becomes the next pending follow-up; with no
// such record the lead is marked done. The cache is overwritten wholesale, so
// the operation is idempotent and safe to retry.
func (s *Service) Synchronize(ctx context.Context, leadID uuid.UUID) (SyncResult, error) {
	pending, err := s.repo.FindPendingFollowUps(ctx, leadID)
	if err != nil {
		return SyncResult{}, err
	}

	if len(pending) > 0 {
		next := pending[0]
		err := s.repo.UpdateScheduleCache(ctx, leadID, repository.ScheduleCacheParams{
			NextFollowUpDue:   &next.ScheduledAt,
			FollowUpCompleted: false,
			FollowUpOverdue:   next.Overdue,
			FollowUpState:     domain.FollowUpPending,
		})
		if err != nil {
			return SyncResult{}, err
		}
		return SyncResult{HasPending: true, Next: &next}, nil
	}

	now := time.Now()
	err = s.repo.UpdateScheduleCache(ctx, leadID, repository.ScheduleCacheParams{
		NextFollowUpDue:   nil,
		FollowUpCompleted: true,
		FollowUpOverdue:   false,
		FollowUpState:     domain.FollowUpDone,
		LastFollowUpAt:    &now,
	})
	if err != nil {
		return SyncResult{}, err
	}
	return SyncResult{HasPending: false, Next: nil}, nil
}

// SynchronizeMany applies Synchronize to each id independently. A failure on
// one id is recorded and does not abort the batch.
func (s *Service) SynchronizeMany(ctx context.Context, leadIDs []uuid.UUID) BatchResult {
	var (
		mu     sync.Mutex
		result BatchResult
	)

	g := new(errgroup.Group)
	g.SetLimit(syncConcurrency)

	for _, leadID := range leadIDs {
		id := leadID
		g.Go(func() error {
			syncResult, err := s.Synchronize(ctx, id)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				result.Failed++
				result.Failures = append(result.Failures, BatchFailure{LeadID: id, Err: err})
				if s.log != nil {
					s.log.SyncFailure(id.String(), err)
				}
				return nil
			}

			result.Succeeded++
			if syncResult.HasPending {
				result.WithPending++
			} else {
				result.WithoutPending++
			}
			return nil
		})
	}

	// Workers record failures instead of returning them.
	_ = g.Wait()

	return result
}

// SynchronizeAllActive resynchronizes every active lead not yet Won or Lost.
// Only the id-set lookup can fail; the batch itself reports partial failures
// through the result.
func (s *Service) SynchronizeAllActive(ctx context.Context) (BatchResult, error) {
	ids, err := s.repo.FindActiveLeadIDs(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	return s.SynchronizeMany(ctx, ids), nil
}
