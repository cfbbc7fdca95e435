package voucher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sanad/backend/internal/domain/shared"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/sanad/backend/internal/infrastructure/cache"
	"github.com/sanad/backend/internal/infrastructure/logger"
	"github.com/sanad/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Lookup results recorded on the verification counter
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupInvalid  = "invalid"
)

// VerificationService answers anonymous "is this voucher real" lookups.
// It is read-only and exposes only the public projection of a receipt.
type VerificationService struct {
	receipts voucher.ReceiptRepository
	orgs     voucher.OrganizationRepository
	cache    cache.Cache[voucher.PublicReceipt]
	metrics  *telemetry.RenderMetrics
	logger   *zap.Logger
}

// NewVerificationService creates a new VerificationService. A nil cache disables caching.
func NewVerificationService(
	receipts voucher.ReceiptRepository,
	orgs voucher.OrganizationRepository,
	c cache.Cache[voucher.PublicReceipt],
	metrics *telemetry.RenderMetrics,
	log *zap.Logger,
) *VerificationService {
	if c == nil {
		c = cache.Noop[voucher.PublicReceipt]{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &VerificationService{
		receipts: receipts,
		orgs:     orgs,
		cache:    c,
		metrics:  metrics,
		logger:   log,
	}
}

// Verify resolves a printed identifier. An empty or malformed identifier is
// an error; an unknown one is a result with Valid false.
func (s *VerificationService) Verify(ctx context.Context, candidate string) (*VerificationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "VerificationService", "Verify")
	defer span.End()

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		s.metrics.RecordLookup(ctx, LookupInvalid)
		return nil, ErrBarcodeRequired
	}
	if !voucher.IsValidBarcodeID(candidate) {
		s.metrics.RecordLookup(ctx, LookupInvalid)
		return nil, ErrInvalidBarcodeFormat
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrBarcodeID, candidate)
	log := logger.Enrich(ctx, s.logger).With(zap.String("barcode_id", candidate))

	if cached, err := s.cache.Get(ctx, candidate); err != nil {
		log.Warn("Verification cache read failed", zap.Error(err))
	} else if cached != nil {
		telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true)
		s.metrics.RecordLookup(ctx, LookupFound)
		return &VerificationResult{Valid: true, Receipt: cached}, nil
	}

	receipt, err := s.find(ctx, candidate)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Info("Verification failed")
			s.metrics.RecordLookup(ctx, LookupNotFound)
			return &VerificationResult{Valid: false}, nil
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	org, err := s.orgs.FindByID(ctx, receipt.TenantID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to get organization: %w", err)
		}
		org = nil
	}

	public := voucher.NewPublicReceipt(receipt, org)
	if err := s.cache.Set(ctx, candidate, public); err != nil {
		log.Warn("Verification cache write failed", zap.Error(err))
	}
	s.metrics.RecordLookup(ctx, LookupFound)
	return &VerificationResult{Valid: true, Receipt: public}, nil
}

// find tries barcode_id then receipt_number. Identifiers that look like
// receipt numbers try receipt_number first.
func (s *VerificationService) find(ctx context.Context, candidate string) (*voucher.Receipt, error) {
	lookups := []func(context.Context, string) (*voucher.Receipt, error){
		s.receipts.FindByBarcodeID,
		s.receipts.FindByReceiptNumber,
	}
	if voucher.IsReceiptNumber(candidate) {
		lookups[0], lookups[1] = lookups[1], lookups[0]
	}

	for _, lookup := range lookups {
		receipt, err := lookup(ctx, candidate)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up receipt: %w", err)
		}
	}
	return nil, shared.ErrNotFound
}
