package models

import "time"

// DeliveryMethod is the closed set of channels a document can be dispatched
// through. Anything outside this set is rejected at dispatch time.
type DeliveryMethod string

const (
	MethodEmail        DeliveryMethod = "email"
	MethodSMS          DeliveryMethod = "sms"
	MethodPortal       DeliveryMethod = "portal"
	MethodAPI          DeliveryMethod = "api"
	MethodPhysical     DeliveryMethod = "physical"
	MethodInPerson     DeliveryMethod = "inPerson"
	MethodLegalService DeliveryMethod = "legalService"
)

// Valid reports whether m is one of the seven supported channels.
func (m DeliveryMethod) Valid() bool {
	switch m {
	case MethodEmail, MethodSMS, MethodPortal, MethodAPI,
		MethodPhysical, MethodInPerson, MethodLegalService:
		return true
	}
	return false
}

type DeliveryStatus string

const (
	StatusPending      DeliveryStatus = "PENDING"
	StatusSent         DeliveryStatus = "SENT"
	StatusDelivered    DeliveryStatus = "DELIVERED"
	StatusOpened       DeliveryStatus = "OPENED"
	StatusAcknowledged DeliveryStatus = "ACKNOWLEDGED"
	StatusReceipted    DeliveryStatus = "RECEIPTED"
	StatusFailed       DeliveryStatus = "FAILED"
	StatusBounced      DeliveryStatus = "BOUNCED"
	StatusRefused      DeliveryStatus = "REFUSED"
)

// StatusEntry is one append-only line in a delivery's history log.
type StatusEntry struct {
	Status    DeliveryStatus `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Actor     string         `json:"actor"`
}

// Proof is the evidentiary block attached to a delivery.
type Proof struct {
	Pillar string `json:"pillar"`
	Score  int    `json:"score"`
}

// Delivery tracks a dispatched document from creation through confirmation.
// Status always equals the last history entry; history entries are appended,
// never rewritten.
type Delivery struct {
	ID            string                 `json:"id"`
	DocumentRef   string                 `json:"documentRef"`
	Sender        string                 `json:"sender"`
	Recipient     string                 `json:"recipient"`
	Method        DeliveryMethod         `json:"method"`
	Address       string                 `json:"address"`
	Status        DeliveryStatus         `json:"status"`
	StatusHistory []StatusEntry          `json:"statusHistory"`
	Dispatch      map[string]interface{} `json:"dispatch,omitempty"`
	Proof         Proof                  `json:"proof"`
	CreatedAt     time.Time              `json:"createdAt"`
	SentAt        *time.Time             `json:"sentAt,omitempty"`
	DeliveredAt   *time.Time             `json:"deliveredAt,omitempty"`
	ReceiptedAt   *time.Time             `json:"receiptedAt,omitempty"`
}

// AppendStatus records a transition and keeps Status in sync with the log.
func (d *Delivery) AppendStatus(status DeliveryStatus, at time.Time, actor string) {
	d.StatusHistory = append(d.StatusHistory, StatusEntry{
		Status:    status,
		Timestamp: at,
		Actor:     actor,
	})
	d.Status = status
}

// Recipient is one target of a bulk send.
type Recipient struct {
	To      string         `json:"to"`
	Method  DeliveryMethod `json:"method"`
	Address string         `json:"address"`
}

// BulkResult records the outcome for a single bulk recipient. Failures are
// data, not errors: a failed recipient never aborts the batch.
type BulkResult struct {
	Recipient string         `json:"recipient"`
	Status    DeliveryStatus `json:"status"`
	Delivery  *Delivery      `json:"delivery,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// BulkBatch is the ephemeral aggregate returned by a bulk send.
type BulkBatch struct {
	ID              string       `json:"id"`
	DocumentRef     string       `json:"documentRef"`
	TotalRecipients int          `json:"totalRecipients"`
	Sent            int          `json:"sent"`
	Failed          int          `json:"failed"`
	Results         []BulkResult `json:"results"`
	CreatedAt       time.Time    `json:"createdAt"`
}
