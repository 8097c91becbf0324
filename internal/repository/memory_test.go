package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/proofpost-systems/proofpost/internal/models"
)

func TestInMemoryDeliveries(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetDelivery(ctx, "DD-MISSING")
	if !errors.Is(err, ErrDeliveryNotFound) {
		t.Errorf("error = %v, want ErrDeliveryNotFound", err)
	}

	d := &models.Delivery{ID: "DD-1", DocumentRef: "doc-1", Method: models.MethodEmail, CreatedAt: time.Now()}
	if err := repo.SaveDelivery(ctx, d); err != nil {
		t.Fatalf("SaveDelivery: %v", err)
	}

	got, err := repo.GetDelivery(ctx, "DD-1")
	if err != nil {
		t.Fatalf("GetDelivery: %v", err)
	}
	if got.DocumentRef != "doc-1" {
		t.Errorf("DocumentRef = %s, want doc-1", got.DocumentRef)
	}

	// A save with the same ID replaces the snapshot.
	d2 := &models.Delivery{ID: "DD-1", DocumentRef: "doc-1", Status: models.StatusSent}
	if err := repo.SaveDelivery(ctx, d2); err != nil {
		t.Fatalf("SaveDelivery: %v", err)
	}
	got, _ = repo.GetDelivery(ctx, "DD-1")
	if got.Status != models.StatusSent {
		t.Errorf("Status = %s, want SENT", got.Status)
	}
}

func TestInMemoryReceipts(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetReceipt(ctx, "DR-MISSING")
	if !errors.Is(err, ErrReceiptNotFound) {
		t.Errorf("error = %v, want ErrReceiptNotFound", err)
	}

	rec := &models.Receipt{ID: "DR-1", DeliveryID: "DD-1", Status: models.ReceiptStatusValid}
	if err := repo.SaveReceipt(ctx, rec); err != nil {
		t.Fatalf("SaveReceipt: %v", err)
	}
	got, err := repo.GetReceipt(ctx, "DR-1")
	if err != nil {
		t.Fatalf("GetReceipt: %v", err)
	}
	if got.DeliveryID != "DD-1" {
		t.Errorf("DeliveryID = %s, want DD-1", got.DeliveryID)
	}
}

func TestInMemoryServiceCasesAndAffidavits(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetServiceCase(ctx, "DS-MISSING")
	if !errors.Is(err, ErrServiceCaseNotFound) {
		t.Errorf("error = %v, want ErrServiceCaseNotFound", err)
	}

	c := &models.ServiceCase{ID: "DS-1", ServiceType: models.ServicePersonal}
	if err := repo.SaveServiceCase(ctx, c); err != nil {
		t.Fatalf("SaveServiceCase: %v", err)
	}
	if _, err := repo.GetServiceCase(ctx, "DS-1"); err != nil {
		t.Fatalf("GetServiceCase: %v", err)
	}

	_, err = repo.GetAffidavitByCase(ctx, "DS-1")
	if !errors.Is(err, ErrAffidavitNotFound) {
		t.Errorf("error = %v, want ErrAffidavitNotFound", err)
	}

	aff := &models.Affidavit{ID: "DA-1", ServiceCaseID: "DS-1", Status: models.AffidavitStatusFiled}
	if err := repo.SaveAffidavit(ctx, aff); err != nil {
		t.Fatalf("SaveAffidavit: %v", err)
	}
	got, err := repo.GetAffidavitByCase(ctx, "DS-1")
	if err != nil {
		t.Fatalf("GetAffidavitByCase: %v", err)
	}
	if got.ID != "DA-1" {
		t.Errorf("affidavit ID = %s, want DA-1", got.ID)
	}
}
