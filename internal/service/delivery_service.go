package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/proofpost-systems/proofpost/internal/archive"
	"github.com/proofpost-systems/proofpost/internal/dispatch"
	"github.com/proofpost-systems/proofpost/internal/events"
	"github.com/proofpost-systems/proofpost/internal/ids"
	"github.com/proofpost-systems/proofpost/internal/metrics"
	"github.com/proofpost-systems/proofpost/internal/models"
	"github.com/proofpost-systems/proofpost/internal/receipt"
	"github.com/proofpost-systems/proofpost/internal/repository"
	"github.com/proofpost-systems/proofpost/internal/scoring"
)

var (
	// ErrValidation marks bad or missing required input. Never retried.
	ErrValidation = errors.New("invalid request")
	// ErrDeliveryNotReceiptable rejects receipt creation for deliveries
	// that never left PENDING or terminally failed.
	ErrDeliveryNotReceiptable = errors.New("delivery is not in a receiptable state")
)

const pillarDelivery = "proof_of_delivery"

// DeliveryService drives the delivery lifecycle: send, confirm, open,
// receipt, bulk send, status. It composes the channel dispatcher, the
// scoring model, and the receipt engine.
type DeliveryService struct {
	repo       repository.Repository
	dispatcher *dispatch.Dispatcher
	receipts   *receipt.Engine
	events     events.Publisher
	archive    *archive.Client
}

func NewDeliveryService(repo repository.Repository, dispatcher *dispatch.Dispatcher, receipts *receipt.Engine, publisher events.Publisher, archiveClient *archive.Client) *DeliveryService {
	if publisher == nil {
		publisher = events.NoOpPublisher{}
	}
	return &DeliveryService{
		repo:       repo,
		dispatcher: dispatcher,
		receipts:   receipts,
		events:     publisher,
		archive:    archiveClient,
	}
}

// Send creates a delivery, dispatches it through its channel, and returns
// it with a two-entry history (PENDING then SENT) and a SENT-stage score.
func (s *DeliveryService) Send(ctx context.Context, req *models.SendRequest, actor string) (*models.Delivery, error) {
	if req == nil || req.DocumentRef == "" {
		return nil, fmt.Errorf("%w: documentRef is required", ErrValidation)
	}

	now := time.Now().UTC()
	deliveryID := ids.New(ids.PrefixDelivery)

	meta, err := s.dispatcher.Dispatch(ctx, req.Method, dispatch.Request{
		DeliveryID:  deliveryID,
		Address:     req.Address,
		DocumentRef: req.DocumentRef,
		Timestamp:   now,
	})
	if err != nil {
		return nil, err
	}

	d := &models.Delivery{
		ID:          deliveryID,
		DocumentRef: req.DocumentRef,
		Sender:      req.Sender,
		Recipient:   req.To,
		Method:      req.Method,
		Address:     req.Address,
		Dispatch:    meta,
		CreatedAt:   now,
	}
	d.AppendStatus(models.StatusPending, now, actor)
	d.AppendStatus(models.StatusSent, now, actor)
	sentAt := now
	d.SentAt = &sentAt
	d.Proof = models.Proof{
		Pillar: pillarDelivery,
		Score:  scoring.DeliveryScore(req.Method, models.StatusSent),
	}

	if err := s.repo.SaveDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("store delivery: %w", err)
	}

	metrics.DeliveriesTotal.WithLabelValues(string(req.Method), string(models.StatusSent)).Inc()
	s.events.Publish(ctx, events.SubjectDeliverySent, d)
	if s.archive != nil {
		s.archive.IndexDelivery(ctx, d)
	}
	return d, nil
}

// Confirm marks a delivery DELIVERED and returns the updated snapshot with
// a recomputed score.
func (s *DeliveryService) Confirm(ctx context.Context, deliveryID string, conf models.Confirmation, actor string) (*models.Delivery, error) {
	d, err := s.repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if conf.ConfirmedBy != "" {
		actor = conf.ConfirmedBy
	}
	d.AppendStatus(models.StatusDelivered, now, actor)
	d.DeliveredAt = &now
	d.Proof.Score = scoring.DeliveryScore(d.Method, models.StatusDelivered)
	if conf.Evidence != "" {
		if d.Dispatch == nil {
			d.Dispatch = map[string]interface{}{}
		}
		d.Dispatch["confirmationEvidence"] = conf.Evidence
	}

	if err := s.repo.SaveDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("store delivery: %w", err)
	}

	metrics.DeliveriesTotal.WithLabelValues(string(d.Method), string(models.StatusDelivered)).Inc()
	s.events.Publish(ctx, events.SubjectDeliveryDelivered, d)
	return d, nil
}

// Opened marks a delivery OPENED, capturing whatever view metadata the
// channel reported.
func (s *DeliveryService) Opened(ctx context.Context, deliveryID string, view models.ViewData, actor string) (*models.Delivery, error) {
	d, err := s.repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d.AppendStatus(models.StatusOpened, now, actor)
	d.Proof.Score = scoring.DeliveryScore(d.Method, models.StatusOpened)
	if view.IP != "" || view.UserAgent != "" {
		if d.Dispatch == nil {
			d.Dispatch = map[string]interface{}{}
		}
		d.Dispatch["openedFrom"] = map[string]interface{}{
			"ip":        view.IP,
			"userAgent": view.UserAgent,
		}
	}

	if err := s.repo.SaveDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("store delivery: %w", err)
	}

	s.events.Publish(ctx, events.SubjectDeliveryOpened, d)
	return d, nil
}

// Receipt issues a signed receipt for a delivery and transitions it to
// RECEIPTED. Deliveries that never left PENDING or terminally failed are
// rejected.
func (s *DeliveryService) Receipt(ctx context.Context, deliveryID string, req *models.ReceiptRequest) (*models.Receipt, error) {
	if req == nil || req.Signer == "" {
		return nil, fmt.Errorf("%w: signer is required", ErrValidation)
	}

	d, err := s.repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	switch d.Status {
	case models.StatusPending, models.StatusFailed, models.StatusBounced:
		return nil, fmt.Errorf("%w: status %s", ErrDeliveryNotReceiptable, d.Status)
	}

	now := time.Now().UTC()
	start := time.Now()

	var rec *models.Receipt
	if req.Method == models.ReceiptPhysical {
		rec, err = s.receipts.CreatePhysical(ctx, deliveryID, req.Signer, now)
	} else {
		rec, err = s.receipts.Create(ctx, deliveryID, req.Signer, req.Method, req.Witness, now)
	}
	if err != nil {
		return nil, err
	}
	metrics.ReceiptIssueDuration.Observe(time.Since(start).Seconds())

	d.AppendStatus(models.StatusReceipted, now, req.Signer)
	d.ReceiptedAt = &now
	d.Proof.Score = scoring.DeliveryScore(d.Method, models.StatusReceipted)
	if err := s.repo.SaveDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("store delivery: %w", err)
	}

	s.events.Publish(ctx, events.SubjectReceiptIssued, rec)
	if s.archive != nil {
		s.archive.IndexReceipt(ctx, rec)
	}
	return rec, nil
}

// BulkSend fans one document out to many recipients. Per-recipient failure
// is recorded in the batch, never thrown: partial failure is first-class.
func (s *DeliveryService) BulkSend(ctx context.Context, req *models.BulkSendRequest, actor string) (*models.BulkBatch, error) {
	if req == nil || req.DocumentRef == "" {
		return nil, fmt.Errorf("%w: documentRef is required", ErrValidation)
	}
	if len(req.Recipients) == 0 {
		return nil, fmt.Errorf("%w: recipients must be a non-empty list", ErrValidation)
	}

	batch := &models.BulkBatch{
		ID:              ids.New(ids.PrefixBulkBatch),
		DocumentRef:     req.DocumentRef,
		TotalRecipients: len(req.Recipients),
		Results:         make([]models.BulkResult, 0, len(req.Recipients)),
		CreatedAt:       time.Now().UTC(),
	}

	for _, recipient := range req.Recipients {
		d, err := s.Send(ctx, &models.SendRequest{
			DocumentRef: req.DocumentRef,
			To:          recipient.To,
			Method:      recipient.Method,
			Address:     recipient.Address,
		}, actor)
		if err != nil {
			batch.Failed++
			batch.Results = append(batch.Results, models.BulkResult{
				Recipient: recipient.To,
				Status:    models.StatusFailed,
				Error:     err.Error(),
			})
			metrics.BulkRecipientsTotal.WithLabelValues("failed").Inc()
			continue
		}
		batch.Sent++
		batch.Results = append(batch.Results, models.BulkResult{
			Recipient: recipient.To,
			Status:    d.Status,
			Delivery:  d,
		})
		metrics.BulkRecipientsTotal.WithLabelValues("sent").Inc()
	}

	return batch, nil
}

// Get returns the current delivery snapshot.
func (s *DeliveryService) Get(ctx context.Context, deliveryID string) (*models.Delivery, error) {
	return s.repo.GetDelivery(ctx, deliveryID)
}
