// Package dispatch maps a delivery method to channel-specific dispatch
// metadata. Real transports (SMTP, SMS gateways, couriers) sit behind this
// boundary; the dispatcher only produces the contract each channel needs.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/proofpost-systems/proofpost/internal/models"
)

// ErrUnsupportedMethod rejects any method outside the seven channels. An
// earlier generation of this system silently defaulted unknown channels to
// email; that masked caller bugs and is explicitly not reproduced.
var ErrUnsupportedMethod = errors.New("unsupported delivery method")

const (
	portalLinkTTL  = 30 * 24 * time.Hour
	webhookRetries = 3
)

// Request is the contract every channel handler accepts.
type Request struct {
	DeliveryID  string
	Address     string
	DocumentRef string
	Timestamp   time.Time
}

// Dispatcher produces channel metadata for the seven supported methods.
type Dispatcher struct {
	portalBaseURL string
}

func New(portalBaseURL string) *Dispatcher {
	if portalBaseURL == "" {
		portalBaseURL = "https://portal.proofpost.io"
	}
	return &Dispatcher{portalBaseURL: portalBaseURL}
}

// Dispatch returns the channel-specific metadata for method, or
// ErrUnsupportedMethod. The switch is exhaustive over the method enum so a
// new channel cannot be added without a handler.
func (d *Dispatcher) Dispatch(ctx context.Context, method models.DeliveryMethod, req Request) (map[string]interface{}, error) {
	switch method {
	case models.MethodEmail:
		return d.email(req), nil
	case models.MethodSMS:
		return d.sms(req), nil
	case models.MethodPortal:
		return d.portal(req)
	case models.MethodAPI:
		return d.api(req), nil
	case models.MethodPhysical:
		return d.physical(req), nil
	case models.MethodInPerson:
		return d.inPerson(req), nil
	case models.MethodLegalService:
		return d.legalService(req), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
}

func (d *Dispatcher) email(req Request) map[string]interface{} {
	return map[string]interface{}{
		"channel":       "email",
		"to":            req.Address,
		"trackingPixel": fmt.Sprintf("%s/t/%s/open.gif", d.portalBaseURL, req.DeliveryID),
		"trackingLink":  fmt.Sprintf("%s/t/%s/view", d.portalBaseURL, req.DeliveryID),
	}
}

func (d *Dispatcher) sms(req Request) map[string]interface{} {
	return map[string]interface{}{
		"channel":        "sms",
		"to":             req.Address,
		"deliveryReport": true,
	}
}

// portal issues an auth-gated link. The raw access token travels in the
// link; only its bcrypt hash is kept in the dispatch record so a leaked
// delivery record cannot be replayed into portal access.
func (d *Dispatcher) portal(req Request) (map[string]interface{}, error) {
	token := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash portal access token: %w", err)
	}
	return map[string]interface{}{
		"channel":         "portal",
		"portalUrl":       fmt.Sprintf("%s/d/%s?token=%s", d.portalBaseURL, req.DeliveryID, token),
		"accessTokenHash": string(hash),
		"expiresAt":       req.Timestamp.Add(portalLinkTTL).UTC().Format(time.RFC3339),
	}, nil
}

func (d *Dispatcher) api(req Request) map[string]interface{} {
	return map[string]interface{}{
		"channel":    "api",
		"retryCount": webhookRetries,
		"webhook": map[string]interface{}{
			"deliveryId":  req.DeliveryID,
			"documentRef": req.DocumentRef,
			"endpoint":    req.Address,
			"timestamp":   req.Timestamp.UTC().Format(time.RFC3339),
		},
	}
}

func (d *Dispatcher) physical(req Request) map[string]interface{} {
	// Carrier and tracking number are filled in once the mailroom hands
	// the document off.
	return map[string]interface{}{
		"channel":        "physical",
		"address":        req.Address,
		"carrier":        "",
		"trackingNumber": "",
	}
}

func (d *Dispatcher) inPerson(req Request) map[string]interface{} {
	return map[string]interface{}{
		"channel":          "inPerson",
		"location":         req.Address,
		"witnessName":      "",
		"witnessSignature": "",
	}
}

func (d *Dispatcher) legalService(req Request) map[string]interface{} {
	return map[string]interface{}{
		"channel":       "legalService",
		"address":       req.Address,
		"serviceType":   "",
		"processServer": "",
	}
}
