package models

import "time"

// ReceiptMethod identifies how a receipt was obtained.
type ReceiptMethod string

const (
	ReceiptDigital      ReceiptMethod = "digital"
	ReceiptWitness      ReceiptMethod = "witness"
	ReceiptPhysical     ReceiptMethod = "physical"
	ReceiptNotarized    ReceiptMethod = "notarized"
	ReceiptLegalService ReceiptMethod = "legalService"
)

const ReceiptStatusValid = "VALID"

// SignatureAlgorithm tags receipts signed with the P-256 provider.
const SignatureAlgorithm = "ECDSA-P256-SHA256"

// SignatureBlock carries everything needed to verify a receipt without any
// external key registry: the signature, the public key, and the exact bytes
// that were signed (all base64).
type SignatureBlock struct {
	Algorithm     string `json:"algorithm"`
	Value         string `json:"value"`
	PublicKey     string `json:"publicKey"`
	SignedPayload string `json:"signedPayload"`
	Valid         bool   `json:"valid"`
}

// AnchorRound is a verifiable randomness-beacon round embedded in a signed
// payload to bound its creation time. Nil when the beacon was unavailable.
type AnchorRound struct {
	Round      uint64    `json:"round"`
	Randomness string    `json:"randomness"`
	Signature  string    `json:"signature"`
	ChainHash  string    `json:"chainHash,omitempty"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// WitnessAttestation records a third party present at receipt.
type WitnessAttestation struct {
	Name      string `json:"name"`
	Statement string `json:"statement,omitempty"`
}

// ReceiptProof is the three-axis evidentiary score block for a receipt.
type ReceiptProof struct {
	Pillar        string `json:"pillar"`
	Admissibility int    `json:"admissibility"`
	Technical     int    `json:"technical"`
	Arguable      int    `json:"arguable"`
}

// Receipt is a self-contained signed attestation that a named signer
// received a specific delivery. Immutable after creation.
type Receipt struct {
	ID         string              `json:"id"`
	DeliveryID string              `json:"deliveryId"`
	Signer     string              `json:"signer"`
	Method     ReceiptMethod       `json:"method"`
	Timestamp  time.Time           `json:"timestamp"`
	Signature  *SignatureBlock     `json:"signature,omitempty"`
	Witness    *WitnessAttestation `json:"witness,omitempty"`
	Anchor     *AnchorRound        `json:"anchor,omitempty"`
	Status     string              `json:"status"`
	Proof      ReceiptProof        `json:"proof"`
	CreatedAt  time.Time           `json:"createdAt"`
}
