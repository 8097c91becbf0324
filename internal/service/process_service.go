package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/proofpost-systems/proofpost/internal/events"
	"github.com/proofpost-systems/proofpost/internal/ids"
	"github.com/proofpost-systems/proofpost/internal/metrics"
	"github.com/proofpost-systems/proofpost/internal/models"
	"github.com/proofpost-systems/proofpost/internal/repository"
	"github.com/proofpost-systems/proofpost/internal/scoring"
)

var (
	// ErrInvalidServiceType rejects initiation with an unrecognized mode.
	ErrInvalidServiceType = errors.New("invalid service type")
	// ErrMaxAttempts rejects attempts beyond the per-type ceiling.
	ErrMaxAttempts = errors.New("maximum service attempts reached")
	// ErrCaseFiled rejects mutation of a case already terminated by affidavit.
	ErrCaseFiled = errors.New("service case already filed")
)

const pillarService = "proof_of_service"

// requirementsByType is fixed procedural law, not configuration.
var requirementsByType = map[models.ServiceType]models.ServiceRequirements{
	models.ServicePersonal: {
		PersonalDelivery:     true,
		IdentityVerification: true,
	},
	models.ServiceSubstituted: {
		AdultResidentAllowed: true,
		FollowUpMailRequired: true,
	},
	models.ServiceConstructive: {
		CourtOrderRequired:   true,
		PostingRequired:      true,
		FollowUpMailRequired: true,
	},
	models.ServicePublication: {
		CourtOrderRequired:   true,
		NewspaperCirculation: true,
		DurationWeeks:        4,
	},
}

var maxAttemptsByType = map[models.ServiceType]int{
	models.ServicePersonal:     3,
	models.ServiceSubstituted:  2,
	models.ServiceConstructive: 1,
	models.ServicePublication:  1,
}

// ProcessService manages legal service-of-process cases: initiation,
// attempt tracking, and affidavit filing.
type ProcessService struct {
	repo   repository.Repository
	events events.Publisher
}

func NewProcessService(repo repository.Repository, publisher events.Publisher) *ProcessService {
	if publisher == nil {
		publisher = events.NoOpPublisher{}
	}
	return &ProcessService{repo: repo, events: publisher}
}

// Initiate opens a service case of the requested type with its procedural
// requirements and attempt ceiling attached.
func (s *ProcessService) Initiate(ctx context.Context, req *models.InitiateServiceRequest, actor string) (*models.ServiceCase, error) {
	if req == nil || req.DocumentRef == "" {
		return nil, fmt.Errorf("%w: documentRef is required", ErrValidation)
	}
	if req.Respondent == "" {
		return nil, fmt.Errorf("%w: respondent is required", ErrValidation)
	}
	if !req.ServiceType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServiceType, req.ServiceType)
	}

	now := time.Now().UTC()
	c := &models.ServiceCase{
		ID:           ids.New(ids.PrefixServiceCase),
		DocumentRef:  req.DocumentRef,
		Respondent:   req.Respondent,
		ServiceType:  req.ServiceType,
		Address:      req.Address,
		Jurisdiction: req.Jurisdiction,
		Attempts:     []models.ServiceAttempt{},
		MaxAttempts:  maxAttemptsByType[req.ServiceType],
		Requirements: requirementsByType[req.ServiceType],
		Proof: models.Proof{
			Pillar: pillarService,
		},
		CreatedAt: now,
	}
	if req.AssignedServer != "" {
		server := req.AssignedServer
		c.AssignedServer = &server
	}
	c.AppendStatus(models.ServiceInitiated, now, actor)

	if err := s.repo.SaveServiceCase(ctx, c); err != nil {
		return nil, fmt.Errorf("store service case: %w", err)
	}

	metrics.ServiceCasesTotal.WithLabelValues(string(req.ServiceType)).Inc()
	s.events.Publish(ctx, events.SubjectServiceInitiated, c)
	return c, nil
}

// RecordAttempt appends one service attempt. Filed cases and cases at their
// attempt ceiling are rejected.
func (s *ProcessService) RecordAttempt(ctx context.Context, caseID string, attempt models.ServiceAttempt) (*models.ServiceCase, error) {
	if attempt.Server == "" {
		return nil, fmt.Errorf("%w: server is required", ErrValidation)
	}
	if attempt.Outcome == "" {
		return nil, fmt.Errorf("%w: outcome is required", ErrValidation)
	}

	c, err := s.repo.GetServiceCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == models.ServiceFiled {
		return nil, ErrCaseFiled
	}
	if len(c.Attempts) >= c.MaxAttempts {
		return nil, fmt.Errorf("%w: %d of %d used", ErrMaxAttempts, len(c.Attempts), c.MaxAttempts)
	}

	if attempt.Timestamp.IsZero() {
		attempt.Timestamp = time.Now().UTC()
	}
	c.Attempts = append(c.Attempts, attempt)

	if err := s.repo.SaveServiceCase(ctx, c); err != nil {
		return nil, fmt.Errorf("store service case: %w", err)
	}
	return c, nil
}

// RecordAffidavit files the sworn affidavit that terminates a case. A case
// accepts exactly one affidavit; the transition to FILED is terminal.
func (s *ProcessService) RecordAffidavit(ctx context.Context, caseID string, req *models.AffidavitRequest) (*models.Affidavit, error) {
	if req == nil || req.ProcessServer == "" {
		return nil, fmt.Errorf("%w: processServer is required", ErrValidation)
	}
	if req.ServedPerson == "" {
		return nil, fmt.Errorf("%w: servedPerson is required", ErrValidation)
	}

	c, err := s.repo.GetServiceCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == models.ServiceFiled {
		return nil, ErrCaseFiled
	}

	now := time.Now().UTC()
	scores := scoring.AffidavitScores(c.ServiceType, req.Notarized, req.WitnessPresent, req.GeoVerified)
	aff := &models.Affidavit{
		ID:             ids.New(ids.PrefixAffidavit),
		ServiceCaseID:  c.ID,
		ProcessServer:  req.ProcessServer,
		ServiceType:    c.ServiceType,
		ServedPerson:   req.ServedPerson,
		Relationship:   req.Relationship,
		Location:       req.Location,
		Sworn:          req.Sworn,
		Notarized:      req.Notarized,
		WitnessPresent: req.WitnessPresent,
		GeoVerified:    req.GeoVerified,
		Scores:         scores,
		Status:         models.AffidavitStatusFiled,
		FiledAt:        now,
	}

	if err := s.repo.SaveAffidavit(ctx, aff); err != nil {
		return nil, fmt.Errorf("store affidavit: %w", err)
	}

	c.AppendStatus(models.ServiceFiled, now, req.ProcessServer)
	c.FiledAt = &now
	c.Proof.Score = scores.Admissibility
	if err := s.repo.SaveServiceCase(ctx, c); err != nil {
		return nil, fmt.Errorf("store service case: %w", err)
	}

	metrics.AffidavitsFiled.Inc()
	s.events.Publish(ctx, events.SubjectServiceFiled, aff)
	return aff, nil
}

// GetCase returns the current case snapshot.
func (s *ProcessService) GetCase(ctx context.Context, caseID string) (*models.ServiceCase, error) {
	return s.repo.GetServiceCase(ctx, caseID)
}

// GetAffidavit returns the affidavit filed against a case.
func (s *ProcessService) GetAffidavit(ctx context.Context, caseID string) (*models.Affidavit, error) {
	return s.repo.GetAffidavitByCase(ctx, caseID)
}
