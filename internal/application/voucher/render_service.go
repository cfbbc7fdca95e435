package voucher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sanad/backend/internal/domain/shared"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/sanad/backend/internal/infrastructure/logger"
	"github.com/sanad/backend/internal/infrastructure/storage"
	"github.com/sanad/backend/internal/infrastructure/telemetry"
	"github.com/sanad/backend/internal/infrastructure/voucherpdf"
	"go.uber.org/zap"
)

// Renderer produces a voucher document
type Renderer interface {
	Render(ctx context.Context, req voucherpdf.Request) ([]byte, error)
}

// RenderService produces voucher PDFs for authenticated organization members
// and keeps the stored copy and the receipt's document pointer in sync.
type RenderService struct {
	receipts voucher.ReceiptRepository
	orgs     voucher.OrganizationRepository
	renderer Renderer
	store    storage.PDFStore
	metrics  *telemetry.RenderMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewRenderService creates a new RenderService. metrics may be nil.
func NewRenderService(
	receipts voucher.ReceiptRepository,
	orgs voucher.OrganizationRepository,
	renderer Renderer,
	store storage.PDFStore,
	metrics *telemetry.RenderMetrics,
	log *zap.Logger,
) *RenderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RenderService{
		receipts: receipts,
		orgs:     orgs,
		renderer: renderer,
		store:    store,
		metrics:  metrics,
		logger:   log,
		now:      time.Now,
	}
}

// Generate renders the receipt again, replaces any stored copy and points
// the receipt at the new object. A failed upload fails the call.
func (s *RenderService) Generate(ctx context.Context, tenantID, receiptID uuid.UUID) (*PDFResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "RenderService", "Generate",
		telemetry.WithAttribute(telemetry.SpanAttrReceiptID, receiptID.String()))
	defer span.End()

	receipt, err := s.loadReceipt(ctx, tenantID, receiptID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	org, err := s.loadOrganization(ctx, receipt.TenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	content, err := s.render(ctx, receipt, org)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	key := receipt.StorageKey(s.now())
	if err := s.upload(ctx, key, content, true); err != nil {
		telemetry.RecordError(span, err)
		logger.Enrich(ctx, s.logger).Error("Failed to upload voucher",
			zap.String("key", key),
			zap.Error(err))
		return nil, ErrPDFUploadFailed
	}
	s.recordPointer(ctx, receipt, key)

	return &PDFResult{
		Filename:    filenameFor(receipt),
		Content:     content,
		Disposition: DispositionAttachment,
		Source:      SourceRendered,
		StoragePath: key,
	}, nil
}

// Get serves the stored copy when the receipt points at one that can still
// be downloaded. Otherwise it renders, stores without overwriting and
// updates the pointer. A failed upload is logged and the rendered bytes are
// still returned.
func (s *RenderService) Get(ctx context.Context, tenantID, receiptID uuid.UUID) (*PDFResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "RenderService", "Get",
		telemetry.WithAttribute(telemetry.SpanAttrReceiptID, receiptID.String()))
	defer span.End()

	receipt, err := s.loadReceipt(ctx, tenantID, receiptID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	log := logger.Enrich(ctx, s.logger).With(zap.String("receipt_number", receipt.ReceiptNumber))

	if receipt.HasPDF() {
		path := storage.NormalizeStoredPath(receipt.PDFPath)
		content, err := s.store.Get(ctx, path)
		if err == nil {
			telemetry.SetAttributes(span, "pdf.source", string(SourceStorage))
			return &PDFResult{
				Filename:    filenameFor(receipt),
				Content:     content,
				Disposition: DispositionInline,
				Source:      SourceStorage,
				StoragePath: path,
			}, nil
		}
		log.Warn("Stored voucher unavailable, rendering again",
			zap.String("path", path),
			zap.Error(err))
	}

	org, err := s.loadOrganization(ctx, receipt.TenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	content, err := s.render(ctx, receipt, org)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &PDFResult{
		Filename:    filenameFor(receipt),
		Content:     content,
		Disposition: DispositionInline,
		Source:      SourceRendered,
	}
	key := receipt.StorageKey(s.now())
	if err := s.upload(ctx, key, content, false); err != nil {
		log.Error("Failed to upload voucher, returning rendered copy",
			zap.String("key", key),
			zap.Error(err))
		return result, nil
	}
	s.recordPointer(ctx, receipt, key)
	result.StoragePath = key
	telemetry.SetAttributes(span, "pdf.source", string(SourceRendered))
	return result, nil
}

func (s *RenderService) loadReceipt(ctx context.Context, tenantID, receiptID uuid.UUID) (*voucher.Receipt, error) {
	receipt, err := s.receipts.FindByIDForOrganization(ctx, tenantID, receiptID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return receipt, nil
}

// loadOrganization loads the issuer and checks the logo precondition
func (s *RenderService) loadOrganization(ctx context.Context, orgID uuid.UUID) (*voucher.Organization, error) {
	org, err := s.orgs.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	if err := org.EnsureRenderable(); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *RenderService) render(ctx context.Context, receipt *voucher.Receipt, org *voucher.Organization) ([]byte, error) {
	start := time.Now()
	content, err := s.renderer.Render(ctx, voucherpdf.Request{Receipt: receipt, Organization: org})
	method := receipt.PaymentMethod.OrCash().String()
	if err != nil {
		code := voucherpdf.RenderErrorCode(err)
		if code == "" {
			code = voucherpdf.ErrCodeRenderFailed
		}
		s.metrics.RecordRender(ctx, method, time.Since(start), 0, code)
		if code == voucherpdf.ErrCodeLogoRequired {
			return nil, voucher.ErrLogoRequired
		}
		logger.Enrich(ctx, s.logger).Error("Voucher render failed",
			zap.String("receipt_number", receipt.ReceiptNumber),
			zap.String("code", code),
			zap.Error(err))
		return nil, ErrPDFGenerationFailed
	}
	s.metrics.RecordRender(ctx, method, time.Since(start), len(content), "")
	return content, nil
}

func (s *RenderService) upload(ctx context.Context, key string, content []byte, overwrite bool) error {
	if err := s.store.Put(ctx, key, content, storage.PutOptions{Overwrite: overwrite}); err != nil {
		return err
	}
	s.metrics.RecordUpload(ctx, s.store.Driver())
	return nil
}

// recordPointer stores key on the receipt. Failures are logged only: the
// document itself is already safe in storage.
func (s *RenderService) recordPointer(ctx context.Context, receipt *voucher.Receipt, key string) {
	if err := s.receipts.UpdatePDFPath(ctx, receipt.TenantID, receipt.ID, key); err != nil {
		logger.Enrich(ctx, s.logger).Error("Failed to update receipt document path",
			zap.String("receipt_number", receipt.ReceiptNumber),
			zap.String("key", key),
			zap.Error(err))
		return
	}
	_ = receipt.AttachPDF(key)
}
