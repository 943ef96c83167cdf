package overdue

import (
	"context"
	"errors"
	"testing"
	"time"

	"sales_crm_backend/internal/businesshours"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/repository"

	"github.com/google/uuid"
)

type fakeScanner struct {
	candidates []repository.OverdueLead
	scanErr    error
	markErrFor uuid.UUID
	marked     []uuid.UUID
}

func (f *fakeScanner) FindOverdueLeads(ctx context.Context, now time.Time) ([]repository.OverdueLead, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.candidates, nil
}

func (f *fakeScanner) MarkFollowUpOverdue(ctx context.Context, leadID uuid.UUID) error {
	if leadID == f.markErrFor {
		return errors.New("connection refused")
	}
	f.marked = append(f.marked, leadID)
	return nil
}

type fakeNotifier struct {
	calls  map[uuid.UUID][]events.OverdueLeadInfo
	errFor uuid.UUID
}

func (f *fakeNotifier) NotifyOverdue(ctx context.Context, agentID uuid.UUID, leads []events.OverdueLeadInfo) error {
	if agentID == f.errFor {
		return errors.New("smtp unavailable")
	}
	if f.calls == nil {
		f.calls = make(map[uuid.UUID][]events.OverdueLeadInfo)
	}
	f.calls[agentID] = leads
	return nil
}

func candidate(agentID uuid.UUID) repository.OverdueLead {
	return repository.OverdueLead{
		LeadID:        uuid.New(),
		ContactName:   "Contact",
		Phone:         "+51999000111",
		OwningAgentID: agentID,
		DueAt:         time.Now().Add(-2 * time.Hour),
	}
}

func newProcessor(repo Repository, notifier Notifier) *Processor {
	return New(repo, notifier, businesshours.New(businesshours.DefaultConfig()), nil)
}

func TestProcessGroupsNotificationsByAgent(t *testing.T) {
	agentA := uuid.New()
	agentB := uuid.New()
	scanner := &fakeScanner{candidates: []repository.OverdueLead{
		candidate(agentA), candidate(agentA), candidate(agentB),
	}}
	notifier := &fakeNotifier{}

	result, err := newProcessor(scanner, notifier).Process(context.Background())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Scanned != 3 || result.Marked != 3 || result.Failed != 0 {
		t.Errorf("result = %+v, want 3 scanned, 3 marked, 0 failed", result)
	}
	if result.AgentsNotified != 2 {
		t.Errorf("agentsNotified = %d, want 2", result.AgentsNotified)
	}
	if len(notifier.calls[agentA]) != 2 {
		t.Errorf("agent A received %d leads, want 2", len(notifier.calls[agentA]))
	}
	if len(notifier.calls[agentB]) != 1 {
		t.Errorf("agent B received %d leads, want 1", len(notifier.calls[agentB]))
	}
}

func TestProcessIsolatesMarkFailures(t *testing.T) {
	agentA := uuid.New()
	broken := candidate(agentA)
	healthy := candidate(agentA)
	scanner := &fakeScanner{
		candidates: []repository.OverdueLead{broken, healthy},
		markErrFor: broken.LeadID,
	}
	notifier := &fakeNotifier{}

	result, err := newProcessor(scanner, notifier).Process(context.Background())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Marked != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 marked, 1 failed", result)
	}
	if len(result.Failures) != 1 || result.Failures[0].LeadID != broken.LeadID {
		t.Errorf("failures = %+v, want one entry for the broken lead", result.Failures)
	}
	// The failed lead must not appear in the notification.
	if len(notifier.calls[agentA]) != 1 || notifier.calls[agentA][0].LeadID != healthy.LeadID {
		t.Errorf("notification = %+v, want only the healthy lead", notifier.calls[agentA])
	}
}

func TestProcessCountsNotifierFailures(t *testing.T) {
	agentA := uuid.New()
	agentB := uuid.New()
	scanner := &fakeScanner{candidates: []repository.OverdueLead{
		candidate(agentA), candidate(agentB),
	}}
	notifier := &fakeNotifier{errFor: agentA}

	result, err := newProcessor(scanner, notifier).Process(context.Background())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.AgentsNotified != 1 || result.NotifyFailed != 1 {
		t.Errorf("result = %+v, want 1 notified, 1 notify failure", result)
	}
	// Marking already happened; a notification failure never rolls it back.
	if result.Marked != 2 {
		t.Errorf("marked = %d, want 2", result.Marked)
	}
}

func TestProcessScanErrorAborts(t *testing.T) {
	boom := errors.New("connection refused")
	scanner := &fakeScanner{scanErr: boom}

	_, err := newProcessor(scanner, &fakeNotifier{}).Process(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestProcessWithoutNotifier(t *testing.T) {
	scanner := &fakeScanner{candidates: []repository.OverdueLead{candidate(uuid.New())}}

	result, err := newProcessor(scanner, nil).Process(context.Background())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Marked != 1 || result.AgentsNotified != 0 {
		t.Errorf("result = %+v, want 1 marked, 0 notified", result)
	}
}

func TestProcessEmptyScan(t *testing.T) {
	result, err := newProcessor(&fakeScanner{}, &fakeNotifier{}).Process(context.Background())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Scanned != 0 || result.Marked != 0 {
		t.Errorf("result = %+v, want empty run", result)
	}
}
