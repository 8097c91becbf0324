// Package scoring holds the evidentiary scoring model. Every number here is
// a policy contract shared with downstream legal tooling; do not retune them
// without a policy review.
package scoring

import (
	"math"

	"github.com/proofpost-systems/proofpost/internal/models"
)

const maxScore = 100

const (
	unknownMethodBase      = 50
	unknownReceiptAdm      = 70
	unknownReceiptTech     = 60
	unknownReceiptArguable = 70
)

var methodBase = map[models.DeliveryMethod]float64{
	models.MethodLegalService: 95,
	models.MethodInPerson:     90,
	models.MethodPortal:       85,
	models.MethodPhysical:     75,
	models.MethodEmail:        70,
	models.MethodAPI:          65,
	models.MethodSMS:          60,
}

// REFUSED keeps half credit: refusal still evidences an attempted delivery.
var statusMultiplier = map[models.DeliveryStatus]float64{
	models.StatusPending:      0,
	models.StatusSent:         0.3,
	models.StatusDelivered:    0.6,
	models.StatusOpened:       0.75,
	models.StatusAcknowledged: 0.85,
	models.StatusReceipted:    1.0,
	models.StatusFailed:       0,
	models.StatusBounced:      0,
	models.StatusRefused:      0.5,
}

// DeliveryScore converts a (method, status) pair into a 0-100 admissibility
// proxy. Unknown methods score from a base of 50; unknown statuses zero out.
func DeliveryScore(method models.DeliveryMethod, status models.DeliveryStatus) int {
	base, ok := methodBase[method]
	if !ok {
		base = unknownMethodBase
	}
	mult, ok := statusMultiplier[status]
	if !ok {
		mult = 0
	}
	return int(math.Round(base * mult))
}

var receiptAdmissibility = map[models.ReceiptMethod]int{
	models.ReceiptNotarized:    98,
	models.ReceiptLegalService: 96,
	models.ReceiptWitness:      92,
	models.ReceiptDigital:      90,
	models.ReceiptPhysical:     75,
}

var receiptTechnical = map[models.ReceiptMethod]int{
	models.ReceiptDigital:      95,
	models.ReceiptLegalService: 90,
	models.ReceiptNotarized:    85,
	models.ReceiptWitness:      70,
	models.ReceiptPhysical:     60,
}

var receiptArguable = map[models.ReceiptMethod]int{
	models.ReceiptNotarized:    97,
	models.ReceiptLegalService: 95,
	models.ReceiptWitness:      93,
	models.ReceiptDigital:      85,
	models.ReceiptPhysical:     72,
}

// ReceiptScores returns the (admissibility, technical, arguable) triple for a
// receipt method. Unknown methods default to 70/60/70.
func ReceiptScores(method models.ReceiptMethod) (int, int, int) {
	adm, ok := receiptAdmissibility[method]
	if !ok {
		adm = unknownReceiptAdm
	}
	tech, ok := receiptTechnical[method]
	if !ok {
		tech = unknownReceiptTech
	}
	arg, ok := receiptArguable[method]
	if !ok {
		arg = unknownReceiptArguable
	}
	return adm, tech, arg
}

var affidavitAdmissibility = map[models.ServiceType]int{
	models.ServicePersonal:     95,
	models.ServiceSubstituted:  85,
	models.ServiceConstructive: 75,
	models.ServicePublication:  65,
}

var affidavitTechnical = map[models.ServiceType]int{
	models.ServicePersonal:     90,
	models.ServiceSubstituted:  82,
	models.ServiceConstructive: 74,
	models.ServicePublication:  66,
}

var affidavitArguable = map[models.ServiceType]int{
	models.ServicePersonal:     92,
	models.ServiceSubstituted:  84,
	models.ServiceConstructive: 72,
	models.ServicePublication:  60,
}

// AffidavitScores computes the three-axis score for a filed affidavit.
// Bonuses: notarization +5 on every axis, a present witness +3 admissibility
// and +5 arguable, geolocation verification +5 technical. Capped at 100.
func AffidavitScores(serviceType models.ServiceType, notarized, witnessPresent, geoVerified bool) models.AffidavitScores {
	adm := affidavitAdmissibility[serviceType]
	tech := affidavitTechnical[serviceType]
	arg := affidavitArguable[serviceType]

	if notarized {
		adm += 5
		tech += 5
		arg += 5
	}
	if witnessPresent {
		adm += 3
		arg += 5
	}
	if geoVerified {
		tech += 5
	}

	return models.AffidavitScores{
		Admissibility: cap100(adm),
		Technical:     cap100(tech),
		Arguable:      cap100(arg),
	}
}

func cap100(v int) int {
	if v > maxScore {
		return maxScore
	}
	return v
}
