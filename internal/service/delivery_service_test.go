package service

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proofpost-systems/proofpost/internal/anchor"
	"github.com/proofpost-systems/proofpost/internal/dispatch"
	"github.com/proofpost-systems/proofpost/internal/models"
	"github.com/proofpost-systems/proofpost/internal/receipt"
	"github.com/proofpost-systems/proofpost/internal/repository"
	"github.com/proofpost-systems/proofpost/internal/signer"
)

func newTestDeliveryService(t *testing.T) (*DeliveryService, *repository.InMemoryRepository) {
	t.Helper()
	repo := repository.NewInMemoryRepository()
	provider := signer.New("")
	require.NoError(t, provider.Load())
	engine := receipt.NewEngine(provider, anchor.Disabled{}, repo)
	svc := NewDeliveryService(repo, dispatch.New("https://portal.test"), engine, nil, nil)
	return svc, repo
}

func TestSend(t *testing.T) {
	svc, _ := newTestDeliveryService(t)

	d, err := svc.Send(context.Background(), &models.SendRequest{
		DocumentRef: "doc-1",
		To:          "Alice",
		Method:      models.MethodEmail,
		Address:     "alice@example.com",
		Sender:      "ops@example.com",
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, models.StatusSent, d.Status)
	assert.Equal(t, 21, d.Proof.Score, "email at SENT scores 21")
	assert.Equal(t, "proof_of_delivery", d.Proof.Pillar)
	require.Len(t, d.StatusHistory, 2, "history records PENDING then SENT")
	assert.Equal(t, models.StatusPending, d.StatusHistory[0].Status)
	assert.Equal(t, models.StatusSent, d.StatusHistory[1].Status)
	assert.NotNil(t, d.SentAt)
	assert.Equal(t, "email", d.Dispatch["channel"])
}

func TestSendValidation(t *testing.T) {
	svc, _ := newTestDeliveryService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, &models.SendRequest{Method: models.MethodEmail}, "tester")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, &models.SendRequest{DocumentRef: "doc-1", Method: "fax"}, "tester")
	assert.ErrorIs(t, err, dispatch.ErrUnsupportedMethod)
}

func TestLifecycle(t *testing.T) {
	svc, _ := newTestDeliveryService(t)
	ctx := context.Background()

	d, err := svc.Send(ctx, &models.SendRequest{
		DocumentRef: "doc-1",
		Method:      models.MethodEmail,
		Address:     "alice@example.com",
	}, "tester")
	require.NoError(t, err)

	d, err = svc.Confirm(ctx, d.ID, models.Confirmation{ConfirmedBy: "smtp-gateway", Evidence: "250 OK"}, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, d.Status)
	assert.Equal(t, 42, d.Proof.Score)
	assert.NotNil(t, d.DeliveredAt)
	assert.Equal(t, "250 OK", d.Dispatch["confirmationEvidence"])

	d, err = svc.Opened(ctx, d.ID, models.ViewData{IP: "203.0.113.9", UserAgent: "Mozilla/5.0"}, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpened, d.Status)
	assert.Equal(t, 53, d.Proof.Score)

	rec, err := svc.Receipt(ctx, d.ID, &models.ReceiptRequest{Signer: "alice@example.com", Method: models.ReceiptDigital})
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptStatusValid, rec.Status)
	assert.NotNil(t, rec.Signature)

	d, err = svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceipted, d.Status)
	assert.Equal(t, 70, d.Proof.Score, "email at RECEIPTED scores the full method base")
	assert.NotNil(t, d.ReceiptedAt)
}

func TestReceiptGuards(t *testing.T) {
	svc, repo := newTestDeliveryService(t)
	ctx := context.Background()

	d, err := svc.Send(ctx, &models.SendRequest{DocumentRef: "doc-1", Method: models.MethodEmail}, "tester")
	require.NoError(t, err)

	_, err = svc.Receipt(ctx, d.ID, &models.ReceiptRequest{Method: models.ReceiptDigital})
	assert.ErrorIs(t, err, ErrValidation, "signer is required")

	// A delivery that bounced cannot be receipted.
	d.AppendStatus(models.StatusBounced, time.Now(), "smtp-gateway")
	require.NoError(t, repo.SaveDelivery(ctx, d))
	_, err = svc.Receipt(ctx, d.ID, &models.ReceiptRequest{Signer: "alice", Method: models.ReceiptDigital})
	assert.ErrorIs(t, err, ErrDeliveryNotReceiptable)

	_, err = svc.Receipt(ctx, "DD-MISSING", &models.ReceiptRequest{Signer: "alice", Method: models.ReceiptDigital})
	assert.ErrorIs(t, err, repository.ErrDeliveryNotFound)
}

func TestReceiptPhysicalMethod(t *testing.T) {
	svc, _ := newTestDeliveryService(t)
	ctx := context.Background()

	d, err := svc.Send(ctx, &models.SendRequest{DocumentRef: "doc-1", Method: models.MethodPhysical, Address: "1 Main St"}, "tester")
	require.NoError(t, err)

	rec, err := svc.Receipt(ctx, d.ID, &models.ReceiptRequest{Signer: "courier", Method: models.ReceiptPhysical})
	require.NoError(t, err)
	assert.Nil(t, rec.Signature, "physical receipts are unsigned")
	assert.Equal(t, 75, rec.Proof.Admissibility)
}

func TestBulkSendPartialFailure(t *testing.T) {
	svc, _ := newTestDeliveryService(t)
	gofakeit.Seed(11)

	recipients := []models.Recipient{
		{To: gofakeit.Name(), Method: models.MethodEmail, Address: gofakeit.Email()},
		{To: gofakeit.Name(), Method: models.MethodSMS, Address: gofakeit.Phone()},
		{To: gofakeit.Name(), Method: "telepathy", Address: "n/a"},
	}

	batch, err := svc.BulkSend(context.Background(), &models.BulkSendRequest{
		DocumentRef: "doc-bulk",
		Recipients:  recipients,
	}, "tester")
	require.NoError(t, err, "partial failure is data, not an error")

	assert.Equal(t, 3, batch.TotalRecipients)
	assert.Equal(t, 2, batch.Sent)
	assert.Equal(t, 1, batch.Failed)
	require.Len(t, batch.Results, 3)

	assert.Equal(t, models.StatusSent, batch.Results[0].Status)
	assert.NotNil(t, batch.Results[0].Delivery)
	assert.Equal(t, models.StatusFailed, batch.Results[2].Status)
	assert.Contains(t, batch.Results[2].Error, "unsupported delivery method")
	assert.Nil(t, batch.Results[2].Delivery)
}

func TestBulkSendValidation(t *testing.T) {
	svc, _ := newTestDeliveryService(t)
	ctx := context.Background()

	_, err := svc.BulkSend(ctx, &models.BulkSendRequest{Recipients: []models.Recipient{{To: "a"}}}, "tester")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.BulkSend(ctx, &models.BulkSendRequest{DocumentRef: "doc-1"}, "tester")
	assert.ErrorIs(t, err, ErrValidation)
}
