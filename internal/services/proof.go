package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/obligo-backend/internal/domain"
	"github.com/yungbote/obligo-backend/internal/logger"
	"github.com/yungbote/obligo-backend/internal/repos"
	"github.com/yungbote/obligo-backend/internal/rules"
	"github.com/yungbote/obligo-backend/internal/types"
)

// ConfirmationEmail is the caller-supplied view of an email being attached
// as proof. The core never fetches mail; the collaborator that did passes
// the text along.
type ConfirmationEmail struct {
	Ref     string `json:"ref"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
	Summary string `json:"summary"`
}

// ProofService appends evidence records. Attaching proof never changes
// obligation status; only the transition engine moves status.
type ProofService interface {
	Add(ctx context.Context, obligationID, userID uuid.UUID, proofType, sourceRef string) (*types.ObligationProof, error)
	AttachConfirmationEmail(ctx context.Context, obligationID, userID uuid.UUID, email ConfirmationEmail) (*types.ObligationProof, error)
	List(ctx context.Context, obligationID, userID uuid.UUID) ([]*types.ObligationProof, error)
}

type proofService struct {
	db             *gorm.DB
	log            *logger.Logger
	obligationRepo repos.ObligationRepo
	proofRepo      repos.ProofRepo
}

func NewProofService(db *gorm.DB, baseLog *logger.Logger, obligationRepo repos.ObligationRepo, proofRepo repos.ProofRepo) ProofService {
	serviceLog := baseLog.With("service", "ProofService")
	return &proofService{
		db:             db,
		log:            serviceLog,
		obligationRepo: obligationRepo,
		proofRepo:      proofRepo,
	}
}

func (s *proofService) Add(ctx context.Context, obligationID, userID uuid.UUID, proofType, sourceRef string) (*types.ObligationProof, error) {
	proofType = strings.TrimSpace(proofType)
	sourceRef = strings.TrimSpace(sourceRef)
	if !types.ValidProofType(proofType) {
		return nil, domain.Validation(domain.CodeInvalidProofType, "invalid proof type %q", proofType)
	}
	if sourceRef == "" {
		return nil, domain.Validation(domain.CodeEmptySourceRef, "source_ref is required")
	}

	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}

	row := &types.ObligationProof{
		ObligationID: obligationID,
		UserID:       userID,
		Type:         types.ProofType(proofType),
		SourceRef:    sourceRef,
	}
	if _, err := s.proofRepo.Create(ctx, nil, row); err != nil {
		return nil, err
	}

	s.log.Info("Proof attached", "obligation_id", obligationID, "type", proofType)
	return row, nil
}

func (s *proofService) AttachConfirmationEmail(ctx context.Context, obligationID, userID uuid.UUID, email ConfirmationEmail) (*types.ObligationProof, error) {
	if strings.TrimSpace(email.Ref) == "" {
		return nil, domain.Validation(domain.CodeEmptySourceRef, "email has no ref; cannot attach as confirmation proof")
	}
	// Conservative gate: blocking a true confirmation is acceptable,
	// accepting a false one is not.
	if !rules.LooksLikeConfirmation(email.Subject, email.Snippet, email.Summary) {
		return nil, domain.Validation(domain.CodeNotConfirmation, "email does not look like a receipt/confirmation; refusing to attach as confirmation_email proof")
	}

	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}

	row := &types.ObligationProof{
		ObligationID: obligationID,
		UserID:       userID,
		Type:         types.ProofConfirmationEmail,
		SourceRef:    "email:" + strings.TrimSpace(email.Ref),
	}
	if _, err := s.proofRepo.Create(ctx, nil, row); err != nil {
		return nil, err
	}

	s.log.Info("Confirmation email attached as proof", "obligation_id", obligationID, "ref", email.Ref)
	return row, nil
}

func (s *proofService) List(ctx context.Context, obligationID, userID uuid.UUID) ([]*types.ObligationProof, error) {
	obl, err := s.obligationRepo.GetByIDForUser(ctx, nil, obligationID, userID)
	if err != nil {
		return nil, err
	}
	if obl == nil {
		return nil, domain.NotFound("obligation")
	}
	return s.proofRepo.GetByObligationID(ctx, nil, obligationID)
}
