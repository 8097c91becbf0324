package scoring

import (
	"testing"

	"github.com/proofpost-systems/proofpost/internal/models"
)

func TestDeliveryScore(t *testing.T) {
	tests := []struct {
		name   string
		method models.DeliveryMethod
		status models.DeliveryStatus
		want   int
	}{
		{"email sent", models.MethodEmail, models.StatusSent, 21},
		{"email delivered", models.MethodEmail, models.StatusDelivered, 42},
		{"email opened", models.MethodEmail, models.StatusOpened, 53},
		{"email refused keeps half credit", models.MethodEmail, models.StatusRefused, 35},
		{"legal service receipted", models.MethodLegalService, models.StatusReceipted, 95},
		{"in person receipted", models.MethodInPerson, models.StatusReceipted, 90},
		{"portal receipted", models.MethodPortal, models.StatusReceipted, 85},
		{"pending scores zero", models.MethodLegalService, models.StatusPending, 0},
		{"failed scores zero", models.MethodPortal, models.StatusFailed, 0},
		{"bounced scores zero", models.MethodEmail, models.StatusBounced, 0},
		{"sms sent", models.MethodSMS, models.StatusSent, 18},
		{"api acknowledged", models.MethodAPI, models.StatusAcknowledged, 55},
		{"unknown method gets base 50", models.DeliveryMethod("carrier-pigeon"), models.StatusReceipted, 50},
		{"unknown status zeroes out", models.MethodEmail, models.DeliveryStatus("LOST"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeliveryScore(tt.method, tt.status); got != tt.want {
				t.Errorf("DeliveryScore(%s, %s) = %d, want %d", tt.method, tt.status, got, tt.want)
			}
		})
	}
}

func TestReceiptScores(t *testing.T) {
	tests := []struct {
		method              models.ReceiptMethod
		adm, tech, arguable int
	}{
		{models.ReceiptNotarized, 98, 85, 97},
		{models.ReceiptLegalService, 96, 90, 95},
		{models.ReceiptWitness, 92, 70, 93},
		{models.ReceiptDigital, 90, 95, 85},
		{models.ReceiptPhysical, 75, 60, 72},
		{models.ReceiptMethod("unknown"), 70, 60, 70},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			adm, tech, arg := ReceiptScores(tt.method)
			if adm != tt.adm || tech != tt.tech || arg != tt.arguable {
				t.Errorf("ReceiptScores(%s) = (%d, %d, %d), want (%d, %d, %d)",
					tt.method, adm, tech, arg, tt.adm, tt.tech, tt.arguable)
			}
		})
	}
}

func TestAffidavitScoresBase(t *testing.T) {
	tests := []struct {
		serviceType         models.ServiceType
		adm, tech, arguable int
	}{
		{models.ServicePersonal, 95, 90, 92},
		{models.ServiceSubstituted, 85, 82, 84},
		{models.ServiceConstructive, 75, 74, 72},
		{models.ServicePublication, 65, 66, 60},
	}

	for _, tt := range tests {
		t.Run(string(tt.serviceType), func(t *testing.T) {
			got := AffidavitScores(tt.serviceType, false, false, false)
			if got.Admissibility != tt.adm || got.Technical != tt.tech || got.Arguable != tt.arguable {
				t.Errorf("AffidavitScores(%s) = %+v, want (%d, %d, %d)",
					tt.serviceType, got, tt.adm, tt.tech, tt.arguable)
			}
		})
	}
}

func TestAffidavitScoresBonuses(t *testing.T) {
	notarized := AffidavitScores(models.ServicePublication, true, false, false)
	if notarized.Admissibility != 70 || notarized.Technical != 71 || notarized.Arguable != 65 {
		t.Errorf("notarized publication = %+v, want (70, 71, 65)", notarized)
	}

	witnessed := AffidavitScores(models.ServiceSubstituted, false, true, false)
	if witnessed.Admissibility != 88 || witnessed.Technical != 82 || witnessed.Arguable != 89 {
		t.Errorf("witnessed substituted = %+v, want (88, 82, 89)", witnessed)
	}

	geo := AffidavitScores(models.ServiceConstructive, false, false, true)
	if geo.Technical != 79 {
		t.Errorf("geo-verified constructive technical = %d, want 79", geo.Technical)
	}
}

func TestAffidavitScoresCappedAt100(t *testing.T) {
	got := AffidavitScores(models.ServicePersonal, true, true, true)
	if got.Admissibility != 100 {
		t.Errorf("admissibility = %d, want capped 100", got.Admissibility)
	}
	if got.Technical != 100 {
		t.Errorf("technical = %d, want capped 100", got.Technical)
	}
	if got.Arguable != 100 {
		t.Errorf("arguable = %d, want capped 100", got.Arguable)
	}
}
