package models

// SendRequest creates a single delivery.
type SendRequest struct {
	DocumentRef string         `json:"documentRef"`
	To          string         `json:"to"`
	Method      DeliveryMethod `json:"method"`
	Address     string         `json:"address"`
	Sender      string         `json:"sender,omitempty"`
}

// BulkSendRequest fans one document out to many recipients.
type BulkSendRequest struct {
	DocumentRef string      `json:"documentRef"`
	Recipients  []Recipient `json:"recipients"`
}

// Confirmation carries optional channel evidence for a DELIVERED transition.
type Confirmation struct {
	ConfirmedBy string `json:"confirmedBy,omitempty"`
	Evidence    string `json:"evidence,omitempty"`
}

// ViewData captures what is known about an OPENED transition.
type ViewData struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// ReceiptRequest creates a signed receipt for a delivery.
type ReceiptRequest struct {
	Signer  string              `json:"signer"`
	Method  ReceiptMethod       `json:"method"`
	Witness *WitnessAttestation `json:"witness,omitempty"`
}

// InitiateServiceRequest opens a service-of-process case.
type InitiateServiceRequest struct {
	DocumentRef    string      `json:"documentRef"`
	Respondent     string      `json:"respondent"`
	ServiceType    ServiceType `json:"serviceType"`
	Address        string      `json:"address"`
	Jurisdiction   string      `json:"jurisdiction"`
	AssignedServer string      `json:"assignedServer,omitempty"`
}

// AffidavitRequest files the affidavit that terminates a service case.
type AffidavitRequest struct {
	ProcessServer  string `json:"processServer"`
	ServedPerson   string `json:"servedPerson"`
	Relationship   string `json:"relationship,omitempty"`
	Location       string `json:"location,omitempty"`
	Sworn          bool   `json:"sworn"`
	Notarized      bool   `json:"notarized"`
	WitnessPresent bool   `json:"witnessPresent"`
	GeoVerified    bool   `json:"geoVerified"`
}
