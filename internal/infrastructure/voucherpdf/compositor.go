package voucherpdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/sanad/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Request is the input of one render
type Request struct {
	Receipt      *voucher.Receipt
	Organization *voucher.Organization
	// Policy overrides the compositor default when set.
	Policy *RenderPolicy
}

// Compositor fills the voucher template and produces PDF bytes.
// It holds only read-only state and is safe for concurrent renders.
type Compositor struct {
	template *Template
	binder   *Binder
	barcodes *BarcodeGenerator
	assets   *assetEmbedder
	font     *FontFile
	policy   RenderPolicy
	layout   barcodeLayout
	logger   *zap.Logger
}

// Option configures a Compositor
type Option func(*Compositor)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compositor) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithImageFetcher sets how logo and stamp references are retrieved
func WithImageFetcher(f ImageFetcher) Option {
	return func(c *Compositor) {
		c.assets.fetcher = f
	}
}

// WithFont sets the TrueType font used for drawn text. Without it the
// built-in font is used.
func WithFont(f *FontFile) Option {
	return func(c *Compositor) {
		if f != nil {
			c.font = f
		}
	}
}

// WithDefaultPolicy sets the policy used when a request carries none
func WithDefaultPolicy(p RenderPolicy) Option {
	return func(c *Compositor) {
		c.policy = p
	}
}

// WithBarcodeGenerator replaces the barcode generator
func WithBarcodeGenerator(g *BarcodeGenerator) Option {
	return func(c *Compositor) {
		if g != nil {
			c.barcodes = g
		}
	}
}

// WithMetrics records skipped images on m
func WithMetrics(m *telemetry.RenderMetrics) Option {
	return func(c *Compositor) {
		c.assets.metrics = m
	}
}

// WithBinder replaces the field binder
func WithBinder(b *Binder) Option {
	return func(c *Compositor) {
		if b != nil {
			c.binder = b
		}
	}
}

// NewCompositor creates a compositor over a loaded template
func NewCompositor(tpl *Template, opts ...Option) (*Compositor, error) {
	if tpl == nil {
		return nil, NewRenderError(ErrCodeTemplateLoadFailed, "template is required", nil)
	}
	c := &Compositor{
		template: tpl,
		binder:   NewBinder(nil),
		barcodes: NewBarcodeGenerator(DefaultBarcodeOptions()),
		assets:   &assetEmbedder{},
		policy:   DefaultRenderPolicy(),
		layout:   defaultBarcodeLayout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.font == nil {
		f, err := DefaultFontFile()
		if err != nil {
			return nil, err
		}
		c.font = f
	}
	if err := c.policy.Validate(); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "invalid default render policy", err)
	}
	c.assets.logger = c.logger
	return c, nil
}

// Policy returns the default render policy
func (c *Compositor) Policy() RenderPolicy {
	return c.policy
}

// Template returns the template in use
func (c *Compositor) Template() *Template {
	return c.template
}

// Bind computes the field values and visibility without touching a document.
func (c *Compositor) Bind(r *voucher.Receipt, org *voucher.Organization) (FieldValues, Visibility) {
	values := c.binder.Bind(r, org)
	vis := ResolveVisibility(string(r.PaymentMethod))
	vis.ClearHidden(values)
	return values, vis
}

// Render runs the full pipeline and returns the serialized document.
// Any failure other than image embedding aborts the render.
func (c *Compositor) Render(ctx context.Context, req Request) ([]byte, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "voucherpdf", "render")
	defer span.End()

	out, err := c.render(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "pdf.bytes", len(out))
	return out, nil
}

func (c *Compositor) render(ctx context.Context, req Request) ([]byte, error) {
	if req.Receipt == nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "receipt is required", nil)
	}
	if err := req.Organization.EnsureRenderable(); err != nil {
		return nil, NewRenderError(ErrCodeLogoRequired, "organization has no logo", err)
	}

	policy := c.policy
	if req.Policy != nil {
		policy = *req.Policy
	}
	if err := policy.Validate(); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "invalid render policy", err)
	}

	payload, err := barcodePayload(req.Receipt)
	if err != nil {
		return nil, err
	}
	log := c.logger.With(
		zap.String("receipt_number", req.Receipt.ReceiptNumber),
		zap.String("barcode_id", payload),
		zap.Bool("flatten", policy.Flatten),
	)

	// 1. load
	doc, err := loadDocument(c.template.bytes())
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateLoadFailed, "failed to load template", err)
	}

	// 2. regenerate appearances
	if !doc.setNeedAppearances() {
		return nil, NewRenderError(ErrCodeTemplateLoadFailed, "template has no interactive form", nil)
	}
	reg := buildRegistry(doc)

	// 3-4. values, then visibility
	values, vis := c.Bind(req.Receipt, req.Organization)
	bound := applyValues(reg, values)
	applyVisibility(reg, vis)
	log.Debug("Bound voucher fields",
		zap.Int("fields", len(bound)),
		zap.Bool("cheque_shown", vis.ChequeShown),
		zap.Bool("transfer_shown", vis.TransferShown),
	)

	// 5. images
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "render cancelled", err)
	}
	c.assets.embed(ctx, doc, reg, logoSlot, req.Organization.LogoURL, policy.LogoPlacement)
	if req.Organization.HasStamp() {
		c.assets.embed(ctx, doc, reg, stampSlot, req.Organization.StampURL, policy.LogoPlacement)
	}

	// 6. flatten, or point field appearances at the custom font
	var drawn *embeddedFont
	if policy.Flatten {
		if drawn, err = doc.flatten(reg, c.font); err != nil {
			return nil, asRenderError(err, ErrCodeFlattenFailed, "failed to flatten form")
		}
	} else if policy.FontStrategy == FontEmbedCustom {
		if drawn, err = doc.useFontForFields(reg, c.font); err != nil {
			return nil, asRenderError(err, ErrCodeFontLoadFailed, "failed to embed custom font")
		}
	}
	if drawn != nil && len(drawn.MissingGlyphs()) > 0 {
		log.Warn("Font has no glyphs for some characters",
			zap.String("font", c.font.Name()),
			zap.String("characters", string(drawn.MissingGlyphs())),
		)
	}

	// 7. barcode after flattening
	bar, err := c.barcodes.Code128(payload)
	if err != nil {
		return nil, asRenderError(err, ErrCodeBarcodeFailed, "failed to generate barcode")
	}
	var qrImg image.Image
	if policy.IncludeQR {
		if qrImg, err = c.barcodes.QR(payload); err != nil {
			return nil, asRenderError(err, ErrCodeBarcodeFailed, "failed to generate qr code")
		}
	}
	if err := doc.drawCodes(bar, qrImg, c.layout); err != nil {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "failed to place barcode", err)
	}

	// 8. serialize
	out, err := doc.bytes(c.stampFor(req.Receipt, policy))
	if err != nil {
		return nil, NewRenderError(ErrCodeSerializeFailed, "failed to serialize document", err)
	}
	log.Info("Voucher rendered", zap.Int("bytes", len(out)))
	return out, nil
}

// stampFor derives the document dates and file identifier from the inputs, so
// rendering the same receipt twice yields the same bytes.
func (c *Compositor) stampFor(r *voucher.Receipt, policy RenderPolicy) stamp {
	at := r.CreatedAt
	if at.IsZero() {
		at = r.Date
	}
	return stamp{
		Time: at,
		Seed: strings.Join([]string{
			r.ID.String(),
			r.ReceiptNumber,
			c.template.Digest(),
			c.font.Name(),
			fmt.Sprintf("%+v", policy),
		}, "|"),
	}
}

// barcodePayload returns the verification identifier, deriving it from the receipt number when unset.
func barcodePayload(r *voucher.Receipt) (string, error) {
	if id := strings.TrimSpace(r.BarcodeID); id != "" {
		if !voucher.IsValidBarcodeID(id) {
			return "", NewRenderError(ErrCodeBarcodeFailed, "barcode identifier has an invalid format", nil)
		}
		return id, nil
	}
	id, err := voucher.BarcodeIDFromReceiptNumber(r.ReceiptNumber, r.Date.Year())
	if err != nil {
		return "", NewRenderError(ErrCodeBarcodeFailed, "receipt has no barcode identifier", err)
	}
	return id, nil
}

// useFontForFields registers the custom font in the form resources and points every text field at it.
func (d *document) useFontForFields(reg *Registry, file *FontFile) (*embeddedFont, error) {
	form := d.acroForm()
	if form == nil {
		return nil, nil
	}
	ef, err := d.embedFont(file)
	if err != nil {
		return nil, err
	}
	dr := d.ownedSubDict(form, "DR")
	fonts := d.ownedSubDict(dr, "Font")
	fonts[customFontResource] = ef.ref()

	for _, f := range reg.Fields() {
		if f.Type != "Tx" {
			continue
		}
		da := parseDA(f.DA)
		f.Dict["DA"] = types.StringLiteral("/" + customFontResource + " " + pdfNum(da.Size) + " Tf " + da.Rest)
		ef.encode(d.fieldValue(f))
	}
	return ef, ef.finish(d)
}

func asRenderError(err error, code, message string) error {
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return NewRenderError(code, message, err)
}
