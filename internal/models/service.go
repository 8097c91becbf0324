package models

import "time"

// ServiceType is the closed set of legal service-of-process modes.
type ServiceType string

const (
	ServicePersonal     ServiceType = "personal"
	ServiceSubstituted  ServiceType = "substituted"
	ServiceConstructive ServiceType = "constructive"
	ServicePublication  ServiceType = "publication"
)

// Valid reports whether t is one of the four recognized service types.
func (t ServiceType) Valid() bool {
	switch t {
	case ServicePersonal, ServiceSubstituted, ServiceConstructive, ServicePublication:
		return true
	}
	return false
}

type ServiceStatus string

const (
	ServiceInitiated ServiceStatus = "INITIATED"
	ServiceFiled     ServiceStatus = "FILED"
)

const AffidavitStatusFiled = "FILED"

// ServiceRequirements are the fixed procedural requirements for a service
// type. These are legal-domain constants, not tunables.
type ServiceRequirements struct {
	PersonalDelivery     bool `json:"personalDelivery"`
	IdentityVerification bool `json:"identityVerification"`
	AdultResidentAllowed bool `json:"adultResidentAllowed"`
	FollowUpMailRequired bool `json:"followUpMailRequired"`
	CourtOrderRequired   bool `json:"courtOrderRequired"`
	PostingRequired      bool `json:"postingRequired"`
	NewspaperCirculation bool `json:"newspaperCirculation"`
	DurationWeeks        int  `json:"durationWeeks,omitempty"`
}

// ServiceAttempt is one recorded attempt to effect service.
type ServiceAttempt struct {
	Timestamp time.Time `json:"timestamp"`
	Server    string    `json:"server"`
	Location  string    `json:"location,omitempty"`
	Outcome   string    `json:"outcome"`
	Notes     string    `json:"notes,omitempty"`
}

// ServiceCase tracks a service-of-process matter from initiation to filing.
type ServiceCase struct {
	ID             string               `json:"id"`
	DocumentRef    string               `json:"documentRef"`
	Respondent     string               `json:"respondent"`
	ServiceType    ServiceType          `json:"serviceType"`
	Address        string               `json:"address"`
	Jurisdiction   string               `json:"jurisdiction"`
	AssignedServer *string              `json:"assignedServer,omitempty"`
	Status         ServiceStatus        `json:"status"`
	StatusHistory  []StatusHistoryEntry `json:"statusHistory"`
	Attempts       []ServiceAttempt     `json:"attempts"`
	MaxAttempts    int                  `json:"maxAttempts"`
	Requirements   ServiceRequirements  `json:"requirements"`
	Proof          Proof                `json:"proof"`
	CreatedAt      time.Time            `json:"createdAt"`
	FiledAt        *time.Time           `json:"filedAt,omitempty"`
}

// StatusHistoryEntry mirrors StatusEntry for service cases, which run a
// separate status vocabulary from deliveries.
type StatusHistoryEntry struct {
	Status    ServiceStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Actor     string        `json:"actor"`
}

// AppendStatus records a case transition and keeps Status in sync.
func (c *ServiceCase) AppendStatus(status ServiceStatus, at time.Time, actor string) {
	c.StatusHistory = append(c.StatusHistory, StatusHistoryEntry{
		Status:    status,
		Timestamp: at,
		Actor:     actor,
	})
	c.Status = status
}

// AffidavitScores is the three-axis evidentiary score for an affidavit.
type AffidavitScores struct {
	Admissibility int `json:"admissibility"`
	Technical     int `json:"technical"`
	Arguable      int `json:"arguable"`
}

// Affidavit is the sworn record completing a service case. Created once per
// case; immutable after filing.
type Affidavit struct {
	ID             string          `json:"id"`
	ServiceCaseID  string          `json:"serviceCaseId"`
	ProcessServer  string          `json:"processServer"`
	ServiceType    ServiceType     `json:"serviceType"`
	ServedPerson   string          `json:"servedPerson"`
	Relationship   string          `json:"relationship,omitempty"`
	Location       string          `json:"location,omitempty"`
	Sworn          bool            `json:"sworn"`
	Notarized      bool            `json:"notarized"`
	WitnessPresent bool            `json:"witnessPresent"`
	GeoVerified    bool            `json:"geoVerified"`
	Scores         AffidavitScores `json:"scores"`
	Status         string          `json:"status"`
	FiledAt        time.Time       `json:"filedAt"`
}
