package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sales_crm_backend/internal/businesshours"
	"sales_crm_backend/internal/events"
	"sales_crm_backend/internal/leads/conflict"
	"sales_crm_backend/internal/leads/domain"
	"sales_crm_backend/internal/leads/followups"
	"sales_crm_backend/internal/leads/overdue"
	"sales_crm_backend/internal/leads/repository"
	"sales_crm_backend/platform/httpkit"
	"sales_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fakeStore backs every service dependency of the handler in memory.
type fakeStore struct {
	leads    map[uuid.UUID]repository.Lead
	records  map[uuid.UUID][]repository.FollowUpRecord
	products map[uuid.UUID][]string
	overdues []repository.OverdueLead
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:    make(map[uuid.UUID]repository.Lead),
		records:  make(map[uuid.UUID][]repository.FollowUpRecord),
		products: make(map[uuid.UUID][]string),
	}
}

func (f *fakeStore) GetLeadByID(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeStore) FindLeadsByPhone(ctx context.Context, phone string) ([]repository.Lead, error) {
	var out []repository.Lead
	for _, lead := range f.leads {
		if lead.Phone == phone {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeStore) FindActiveLeadIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, lead := range f.leads {
		if lead.Active && !domain.IsTerminal(lead.PipelineState) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeStore) UpdateScheduleCache(ctx context.Context, leadID uuid.UUID, params repository.ScheduleCacheParams) error {
	if _, ok := f.leads[leadID]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeStore) FindPendingFollowUps(ctx context.Context, leadID uuid.UUID) ([]repository.FollowUpRecord, error) {
	var pending []repository.FollowUpRecord
	for _, rec := range f.records[leadID] {
		if !rec.Completed && rec.VisibleToAgent {
			pending = append(pending, rec)
		}
	}
	return pending, nil
}

func (f *fakeStore) ListFollowUpsByLead(ctx context.Context, leadID uuid.UUID) ([]repository.FollowUpRecord, error) {
	return f.records[leadID], nil
}

func (f *fakeStore) GetFollowUpByID(ctx context.Context, id uuid.UUID) (repository.FollowUpRecord, error) {
	for _, recs := range f.records {
		for _, rec := range recs {
			if rec.ID == id {
				return rec, nil
			}
		}
	}
	return repository.FollowUpRecord{}, repository.ErrFollowUpNotFound
}

func (f *fakeStore) CreateFollowUp(ctx context.Context, params repository.CreateFollowUpParams) (repository.FollowUpRecord, error) {
	rec := repository.FollowUpRecord{
		ID:             uuid.New(),
		LeadID:         params.LeadID,
		Type:           params.Type,
		ScheduledAt:    params.ScheduledAt,
		DeadlineAt:     params.DeadlineAt,
		VisibleToAgent: params.VisibleToAgent,
		Notes:          params.Notes,
		CreatedAt:      time.Now(),
	}
	f.records[params.LeadID] = append(f.records[params.LeadID], rec)
	return rec, nil
}

func (f *fakeStore) CompleteFollowUp(ctx context.Context, id uuid.UUID) (repository.FollowUpRecord, error) {
	for leadID, recs := range f.records {
		for i, rec := range recs {
			if rec.ID == id {
				now := time.Now()
				rec.Completed = true
				rec.CompletedAt = &now
				f.records[leadID][i] = rec
				return rec, nil
			}
		}
	}
	return repository.FollowUpRecord{}, repository.ErrFollowUpNotFound
}

func (f *fakeStore) ListInterestedProducts(ctx context.Context, leadID uuid.UUID) ([]string, error) {
	return f.products[leadID], nil
}

func (f *fakeStore) FindOverdueLeads(ctx context.Context, now time.Time) ([]repository.OverdueLead, error) {
	return f.overdues, nil
}

func (f *fakeStore) MarkFollowUpOverdue(ctx context.Context, leadID uuid.UUID) error {
	return nil
}

func newTestRouter(store *fakeStore, agentID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cal := businesshours.New(businesshours.DefaultConfig())
	svc := followups.New(store, cal, businesshours.DefaultDeadlineRules(), events.NewInMemoryBus(nil), nil)
	resolver := conflict.New(store, nil, nil)
	processor := overdue.New(store, nil, cal, nil)
	h := New(svc, resolver, processor, validator.New())

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextAgentIDKey, agentID)
		c.Next()
	})
	h.RegisterLeadRoutes(engine.Group("/leads"))
	h.RegisterFollowUpRoutes(engine.Group("/followups"))
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCheckConflictAllowsUnknownPhone(t *testing.T) {
	engine := newTestRouter(newFakeStore(), uuid.New())

	w := doJSON(t, engine, http.MethodPost, "/leads/check-conflict", map[string]any{
		"phone": "999000111",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Outcome string `json:"outcome"`
		Allowed bool   `json:"allowed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Outcome != string(conflict.OutcomeAllowNew) || !resp.Allowed {
		t.Errorf("response = %+v, want allow_new", resp)
	}
}

func TestCheckConflictRequiresPhone(t *testing.T) {
	engine := newTestRouter(newFakeStore(), uuid.New())

	w := doJSON(t, engine, http.MethodPost, "/leads/check-conflict", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestScheduleFollowUpCreatesRecord(t *testing.T) {
	store := newFakeStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{ID: leadID, PipelineState: domain.StateNew, Active: true}
	engine := newTestRouter(store, uuid.New())

	w := doJSON(t, engine, http.MethodPost, "/leads/"+leadID.String()+"/followups", map[string]any{
		"type":        "call",
		"scheduledAt": "2026-01-05T10:00:00-05:00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID   uuid.UUID `json:"id"`
		Type string    `json:"type"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Type != "call" {
		t.Errorf("type = %q, want call", resp.Type)
	}
	if len(store.records[leadID]) != 1 {
		t.Errorf("stored records = %d, want 1", len(store.records[leadID]))
	}
}

func TestScheduleFollowUpOnClosedLead(t *testing.T) {
	store := newFakeStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{ID: leadID, PipelineState: domain.StateWon}
	engine := newTestRouter(store, uuid.New())

	w := doJSON(t, engine, http.MethodPost, "/leads/"+leadID.String()+"/followups", map[string]any{
		"type":        "call",
		"scheduledAt": "2026-01-05T10:00:00-05:00",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListFollowUpsUnknownLead(t *testing.T) {
	engine := newTestRouter(newFakeStore(), uuid.New())

	w := doJSON(t, engine, http.MethodGet, "/leads/"+uuid.NewString()+"/followups", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCompleteFollowUp(t *testing.T) {
	store := newFakeStore()
	leadID := uuid.New()
	store.leads[leadID] = repository.Lead{ID: leadID, PipelineState: domain.StateNew, Active: true}
	rec, _ := store.CreateFollowUp(context.Background(), repository.CreateFollowUpParams{
		LeadID: leadID, Type: "call", ScheduledAt: time.Now(), DeadlineAt: time.Now().Add(2 * time.Hour), VisibleToAgent: true,
	})
	engine := newTestRouter(store, uuid.New())

	w := doJSON(t, engine, http.MethodPost, "/followups/"+rec.ID.String()+"/complete", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		HasPending bool `json:"hasPending"`
		FollowUp   struct {
			Completed bool `json:"completed"`
		} `json:"followUp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.FollowUp.Completed || resp.HasPending {
		t.Errorf("response = %+v, want completed with nothing pending", resp)
	}
}

func TestSyncManyRejectsEmptySet(t *testing.T) {
	engine := newTestRouter(newFakeStore(), uuid.New())

	w := doJSON(t, engine, http.MethodPost, "/followups/sync", map[string]any{
		"leadIds": []string{},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestProcessOverdueReportsCounts(t *testing.T) {
	store := newFakeStore()
	store.overdues = []repository.OverdueLead{{
		LeadID:        uuid.New(),
		OwningAgentID: uuid.New(),
		DueAt:         time.Now().Add(-time.Hour),
	}}
	engine := newTestRouter(store, uuid.New())

	w := doJSON(t, engine, http.MethodPost, "/followups/process-overdue", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Scanned int `json:"scanned"`
		Marked  int `json:"marked"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Scanned != 1 || resp.Marked != 1 {
		t.Errorf("response = %+v, want 1 scanned and marked", resp)
	}
}
