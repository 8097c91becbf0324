// Package receipt issues and verifies self-contained signed delivery
// receipts. A receipt carries its signature, the signing public key, and the
// exact signed bytes, so verification never consults a key registry.
package receipt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/proofpost-systems/proofpost/internal/anchor"
	"github.com/proofpost-systems/proofpost/internal/ids"
	"github.com/proofpost-systems/proofpost/internal/metrics"
	"github.com/proofpost-systems/proofpost/internal/models"
	"github.com/proofpost-systems/proofpost/internal/repository"
	"github.com/proofpost-systems/proofpost/internal/scoring"
	"github.com/proofpost-systems/proofpost/internal/signer"
)

const (
	pillarReceipt = "proof_of_receipt"

	// Fixed triple for non-cryptographic physical receipts.
	physicalAdmissibility = 75
	physicalTechnical     = 60
	physicalArguable      = 72
)

// Verification reason codes. A signature mismatch is a normal, reportable
// answer; a system error means the receipt could not be evaluated at all.
const (
	ReasonSignatureMismatch = "signature_mismatch"
	ReasonVerificationError = "verification_error"
)

// canonicalPayload is the deterministic serialization that gets signed.
// Field order is fixed by the struct; the marshalled bytes are stored on the
// receipt and are the only bytes ever verified.
type canonicalPayload struct {
	ReceiptID        string `json:"receiptId"`
	DeliveryID       string `json:"deliveryId"`
	Signer           string `json:"signer"`
	Method           string `json:"method"`
	Timestamp        string `json:"timestamp"`
	AnchorRound      uint64 `json:"anchorRound"`
	AnchorRandomness string `json:"anchorRandomness"`
}

// VerificationResult reports a verification outcome. Verified=false is not
// an error; SystemError marks results where verification itself failed
// (corrupt encoding, unparsable key) as opposed to a signature mismatch.
type VerificationResult struct {
	ReceiptID   string    `json:"receiptId"`
	Verified    bool      `json:"verified"`
	Reason      string    `json:"reason,omitempty"`
	SystemError string    `json:"systemError,omitempty"`
	Algorithm   string    `json:"algorithm,omitempty"`
	AnchorRound uint64    `json:"anchorRound,omitempty"`
	CheckedAt   time.Time `json:"checkedAt"`
}

// Engine composes the signature provider, the temporal anchor, and the
// receipt store.
type Engine struct {
	signer  *signer.Provider
	anchors anchor.Fetcher
	repo    repository.Repository
}

func NewEngine(provider *signer.Provider, anchors anchor.Fetcher, repo repository.Repository) *Engine {
	if anchors == nil {
		anchors = anchor.Disabled{}
	}
	return &Engine{signer: provider, anchors: anchors, repo: repo}
}

// Create issues a signed receipt for deliveryID. The anchor fetch is
// best-effort: a dead beacon yields an unanchored receipt, never an error.
func (e *Engine) Create(ctx context.Context, deliveryID, signerID string, method models.ReceiptMethod, witness *models.WitnessAttestation, ts time.Time) (*models.Receipt, error) {
	receiptID := ids.New(ids.PrefixReceipt)

	round := e.anchors.FetchLatest(ctx)
	if round == nil {
		metrics.AnchorMisses.Inc()
	}

	payload := canonicalPayload{
		ReceiptID:  receiptID,
		DeliveryID: deliveryID,
		Signer:     signerID,
		Method:     string(method),
		Timestamp:  ts.UTC().Format(time.RFC3339Nano),
	}
	if round != nil {
		payload.AnchorRound = round.Round
		payload.AnchorRandomness = round.Randomness
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode receipt payload: %w", err)
	}

	sig, pubDER, err := e.signer.Sign(payloadBytes)
	if err != nil {
		return nil, fmt.Errorf("sign receipt: %w", err)
	}

	adm, tech, arg := scoring.ReceiptScores(method)

	rec := &models.Receipt{
		ID:         receiptID,
		DeliveryID: deliveryID,
		Signer:     signerID,
		Method:     method,
		Timestamp:  ts.UTC(),
		Signature: &models.SignatureBlock{
			Algorithm:     models.SignatureAlgorithm,
			Value:         base64.StdEncoding.EncodeToString(sig),
			PublicKey:     base64.StdEncoding.EncodeToString(pubDER),
			SignedPayload: base64.StdEncoding.EncodeToString(payloadBytes),
			Valid:         true,
		},
		Witness: witness,
		Anchor:  round,
		Status:  models.ReceiptStatusValid,
		Proof: models.ReceiptProof{
			Pillar:        pillarReceipt,
			Admissibility: adm,
			Technical:     tech,
			Arguable:      arg,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := e.repo.SaveReceipt(ctx, rec); err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	metrics.ReceiptsIssued.WithLabelValues(string(method), anchoredLabel(round != nil)).Inc()
	return rec, nil
}

// CreatePhysical issues a non-cryptographic receipt for courier/mailroom
// confirmations. No signature, fixed score triple.
func (e *Engine) CreatePhysical(ctx context.Context, deliveryID, signerID string, ts time.Time) (*models.Receipt, error) {
	rec := &models.Receipt{
		ID:         ids.New(ids.PrefixReceipt),
		DeliveryID: deliveryID,
		Signer:     signerID,
		Method:     models.ReceiptPhysical,
		Timestamp:  ts.UTC(),
		Status:     models.ReceiptStatusValid,
		Proof: models.ReceiptProof{
			Pillar:        pillarReceipt,
			Admissibility: physicalAdmissibility,
			Technical:     physicalTechnical,
			Arguable:      physicalArguable,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := e.repo.SaveReceipt(ctx, rec); err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	metrics.ReceiptsIssued.WithLabelValues(string(models.ReceiptPhysical), anchoredLabel(false)).Inc()
	return rec, nil
}

// Verify checks a receipt's signature against its own embedded public key
// and stored payload bytes. When supplied is nil the receipt is loaded from
// the store; ErrReceiptNotFound surfaces if it is absent. Cryptographic
// mismatch and processing failures are both returned as results, never as
// errors.
func (e *Engine) Verify(ctx context.Context, receiptID string, supplied *models.Receipt) (*VerificationResult, error) {
	rec := supplied
	if rec == nil {
		var err error
		rec, err = e.repo.GetReceipt(ctx, receiptID)
		if err != nil {
			return nil, err
		}
	}

	result := &VerificationResult{
		ReceiptID: rec.ID,
		CheckedAt: time.Now().UTC(),
	}
	if rec.Anchor != nil {
		result.AnchorRound = rec.Anchor.Round
	}

	if rec.Signature == nil {
		result.Reason = ReasonVerificationError
		result.SystemError = "receipt carries no signature block"
		metrics.ReceiptVerifications.WithLabelValues("error").Inc()
		return result, nil
	}
	result.Algorithm = rec.Signature.Algorithm

	payload, err := base64.StdEncoding.DecodeString(rec.Signature.SignedPayload)
	if err != nil {
		return systemError(result, fmt.Sprintf("decode signed payload: %v", err)), nil
	}
	sig, err := base64.StdEncoding.DecodeString(rec.Signature.Value)
	if err != nil {
		return systemError(result, fmt.Sprintf("decode signature: %v", err)), nil
	}
	pubDER, err := base64.StdEncoding.DecodeString(rec.Signature.PublicKey)
	if err != nil {
		return systemError(result, fmt.Sprintf("decode public key: %v", err)), nil
	}

	ok, err := signer.Verify(payload, sig, pubDER)
	if err != nil {
		return systemError(result, err.Error()), nil
	}

	result.Verified = ok
	if !ok {
		result.Reason = ReasonSignatureMismatch
		slog.Warn("receipt signature mismatch", slog.String("receipt_id", rec.ID))
		metrics.ReceiptVerifications.WithLabelValues("mismatch").Inc()
	} else {
		metrics.ReceiptVerifications.WithLabelValues("verified").Inc()
	}
	return result, nil
}

func systemError(result *VerificationResult, detail string) *VerificationResult {
	result.Verified = false
	result.Reason = ReasonVerificationError
	result.SystemError = detail
	metrics.ReceiptVerifications.WithLabelValues("error").Inc()
	return result
}

func anchoredLabel(anchored bool) string {
	if anchored {
		return "anchored"
	}
	return "unanchored"
}
