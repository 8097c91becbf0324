package repository

import (
	"context"
	"sync"

	"github.com/proofpost-systems/proofpost/internal/models"
)

// InMemoryRepository keeps all aggregates in process-local maps. Writers use
// distinct generated keys, so the only guarantee needed is that a write is
// visible to a subsequent read of the same key.
type InMemoryRepository struct {
	mu               sync.RWMutex
	deliveries       map[string]*models.Delivery
	receipts         map[string]*models.Receipt
	serviceCases     map[string]*models.ServiceCase
	affidavits       map[string]*models.Affidavit
	affidavitsByCase map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		deliveries:       make(map[string]*models.Delivery),
		receipts:         make(map[string]*models.Receipt),
		serviceCases:     make(map[string]*models.ServiceCase),
		affidavits:       make(map[string]*models.Affidavit),
		affidavitsByCase: make(map[string]string),
	}
}

func (r *InMemoryRepository) SaveDelivery(_ context.Context, d *models.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries[d.ID] = d
	return nil
}

func (r *InMemoryRepository) GetDelivery(_ context.Context, id string) (*models.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deliveries[id]
	if !ok {
		return nil, ErrDeliveryNotFound
	}
	return d, nil
}

func (r *InMemoryRepository) SaveReceipt(_ context.Context, rec *models.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts[rec.ID] = rec
	return nil
}

func (r *InMemoryRepository) GetReceipt(_ context.Context, id string) (*models.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.receipts[id]
	if !ok {
		return nil, ErrReceiptNotFound
	}
	return rec, nil
}

func (r *InMemoryRepository) SaveServiceCase(_ context.Context, c *models.ServiceCase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serviceCases[c.ID] = c
	return nil
}

func (r *InMemoryRepository) GetServiceCase(_ context.Context, id string) (*models.ServiceCase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.serviceCases[id]
	if !ok {
		return nil, ErrServiceCaseNotFound
	}
	return c, nil
}

func (r *InMemoryRepository) SaveAffidavit(_ context.Context, a *models.Affidavit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.affidavits[a.ID] = a
	r.affidavitsByCase[a.ServiceCaseID] = a.ID
	return nil
}

func (r *InMemoryRepository) GetAffidavitByCase(_ context.Context, caseID string) (*models.Affidavit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.affidavitsByCase[caseID]
	if !ok {
		return nil, ErrAffidavitNotFound
	}
	return r.affidavits[id], nil
}

func (r *InMemoryRepository) Close() {}
