package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
)

// LeadRepository persists order leads
type LeadRepository interface {
	SaveLead(ctx context.Context, lead *models.OrderLead) error
	ListLeads(ctx context.Context, limit int) ([]models.OrderLead, error)
	MarkLeadRead(ctx context.Context, id string) (bool, error)
}

// AuditRepository appends audit records
type AuditRepository interface {
	InsertAudit(ctx context.Context, rec *models.AuditRecord) error
}

// InMemoryLeadRepository implements LeadRepository with in-memory storage
type InMemoryLeadRepository struct {
	mu    sync.RWMutex
	leads []models.OrderLead
}

func NewInMemoryLeadRepository() *InMemoryLeadRepository {
	return &InMemoryLeadRepository{}
}

func (r *InMemoryLeadRepository) SaveLead(ctx context.Context, lead *models.OrderLead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leads = append(r.leads, *lead)
	return nil
}

// ListLeads returns the newest leads first
func (r *InMemoryLeadRepository) ListLeads(ctx context.Context, limit int) ([]models.OrderLead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	leads := append([]models.OrderLead(nil), r.leads...)
	sort.SliceStable(leads, func(i, j int) bool { return leads[i].CreatedAt.After(leads[j].CreatedAt) })
	if limit > 0 && len(leads) > limit {
		leads = leads[:limit]
	}
	if leads == nil {
		leads = []models.OrderLead{}
	}
	return leads, nil
}

func (r *InMemoryLeadRepository) MarkLeadRead(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.leads {
		if r.leads[i].ID == id {
			r.leads[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

// InMemoryAuditRepository implements AuditRepository with in-memory storage
type InMemoryAuditRepository struct {
	mu      sync.RWMutex
	records []models.AuditRecord
}

func NewInMemoryAuditRepository() *InMemoryAuditRepository {
	return &InMemoryAuditRepository{}
}

func (r *InMemoryAuditRepository) InsertAudit(ctx context.Context, rec *models.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, *rec)
	return nil
}

// Records returns a copy of the stored records
func (r *InMemoryAuditRepository) Records() []models.AuditRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.AuditRecord(nil), r.records...)
}
