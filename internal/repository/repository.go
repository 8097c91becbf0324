package repository

import (
	"context"
	"errors"

	"github.com/proofpost-systems/proofpost/internal/models"
)

var (
	ErrDeliveryNotFound    = errors.New("delivery not found")
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrServiceCaseNotFound = errors.New("service case not found")
	ErrAffidavitNotFound   = errors.New("affidavit not found")
)

// Repository is the persistence contract for all aggregates. The reference
// deployment runs in-memory; the postgres twin honors the same read/write
// semantics so it can be swapped in without touching signing or scoring.
type Repository interface {
	SaveDelivery(ctx context.Context, d *models.Delivery) error
	GetDelivery(ctx context.Context, id string) (*models.Delivery, error)

	SaveReceipt(ctx context.Context, r *models.Receipt) error
	GetReceipt(ctx context.Context, id string) (*models.Receipt, error)

	SaveServiceCase(ctx context.Context, c *models.ServiceCase) error
	GetServiceCase(ctx context.Context, id string) (*models.ServiceCase, error)

	SaveAffidavit(ctx context.Context, a *models.Affidavit) error
	GetAffidavitByCase(ctx context.Context, caseID string) (*models.Affidavit, error)

	Close()
}
