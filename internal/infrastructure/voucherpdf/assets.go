package voucherpdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sanad/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ImageFetcher retrieves raw image bytes for a reference
type ImageFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Default fetch limits
const (
	DefaultFetchTimeout  = 10 * time.Second
	DefaultMaxImageBytes = 5 << 20
)

// HTTPImageFetcher downloads images over HTTP(S) with a bounded timeout
type HTTPImageFetcher struct {
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

// HTTPFetcherOption configures an HTTPImageFetcher
type HTTPFetcherOption func(*HTTPImageFetcher)

// WithFetchTimeout sets the per-fetch timeout
func WithFetchTimeout(d time.Duration) HTTPFetcherOption {
	return func(f *HTTPImageFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxImageBytes caps the response body size
func WithMaxImageBytes(n int64) HTTPFetcherOption {
	return func(f *HTTPImageFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithHTTPClient replaces the underlying client
func WithHTTPClient(c *http.Client) HTTPFetcherOption {
	return func(f *HTTPImageFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// NewHTTPImageFetcher creates a fetcher
func NewHTTPImageFetcher(opts ...HTTPFetcherOption) *HTTPImageFetcher {
	f := &HTTPImageFetcher{
		client:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		timeout:  DefaultFetchTimeout,
		maxBytes: DefaultMaxImageBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads ref. The request is bound to ctx and to the fetch timeout.
func (f *HTTPImageFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch image: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", f.maxBytes)
	}
	return data, nil
}

// FileImageFetcher reads images from the local filesystem, optionally confined to a base directory
type FileImageFetcher struct {
	baseDir string
}

// NewFileImageFetcher creates a fetcher rooted at baseDir ("" allows any path)
func NewFileImageFetcher(baseDir string) *FileImageFetcher {
	return &FileImageFetcher{baseDir: baseDir}
}

// Fetch reads the file named by ref (plain path or file:// URL)
func (f *FileImageFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := strings.TrimPrefix(ref, "file://")
	if f.baseDir != "" {
		if filepath.IsAbs(p) || strings.Contains(p, "..") {
			return nil, errors.New("image path escapes base directory")
		}
		p = filepath.Join(f.baseDir, p)
	}
	return os.ReadFile(p)
}

// SchemeFetcher routes http(s) references to one fetcher and everything else to another
type SchemeFetcher struct {
	Remote ImageFetcher
	Local  ImageFetcher
}

// Fetch dispatches on the reference scheme
func (s SchemeFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if s.Remote == nil {
			return nil, errors.New("remote images are not enabled")
		}
		return s.Remote.Fetch(ctx, ref)
	}
	if s.Local == nil {
		return nil, errors.New("local images are not enabled")
	}
	return s.Local.Fetch(ctx, ref)
}

// assetSlot describes where one image goes
type assetSlot struct {
	kind     string
	field    string
	fallback func(page rectangle) rectangle
}

var (
	logoSlot = assetSlot{
		kind:  "logo",
		field: FieldLogoImage,
		fallback: func(page rectangle) rectangle {
			const margin, maxW, maxH = 24.0, 120.0, 60.0
			return rectangle{LLX: page.LLX + margin, LLY: page.URY - margin - maxH, URX: page.LLX + margin + maxW, URY: page.URY - margin}
		},
	}
	stampSlot = assetSlot{
		kind:  "stamp",
		field: FieldStampImage,
		fallback: func(page rectangle) rectangle {
			const margin, size = 36.0, 90.0
			return rectangle{LLX: page.URX - margin - size, LLY: page.LLY + margin, URX: page.URX - margin, URY: page.LLY + margin + size}
		},
	}
)

// assetEmbedder places organization images into a document
type assetEmbedder struct {
	fetcher ImageFetcher
	logger  *zap.Logger
	metrics *telemetry.RenderMetrics
}

// embed fetches, decodes and places one image. Failures are logged and skipped.
func (e *assetEmbedder) embed(ctx context.Context, d *document, reg *Registry, slot assetSlot, ref string, placement LogoPlacement) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" || e.fetcher == nil {
		return false
	}
	log := e.logger.With(zap.String("asset", slot.kind), zap.String("ref", ref))
	skip := func(msg string, err error) bool {
		log.Warn(msg, zap.Error(err))
		e.metrics.RecordAssetSkipped(ctx, slot.kind)
		return false
	}

	format, err := FormatFromReference(ref)
	if err != nil {
		return skip("Skipping image with unsupported format", err)
	}
	data, err := e.fetcher.Fetch(ctx, ref)
	if err != nil {
		return skip("Failed to fetch image, continuing without it", err)
	}
	img, err := DecodeImage(data, format)
	if err != nil {
		return skip("Failed to decode image, continuing without it", err)
	}
	imgRef, w, h, err := d.addImage(img)
	if err != nil {
		return skip("Failed to embed image, continuing without it", err)
	}

	boundToField := false
	if f, ok := reg.Lookup(slot.field); ok {
		boundToField = e.bindToField(d, f, imgRef, w, h, log)
	}

	drawOnPage := placement == LogoBoth || (placement == LogoPageDrawFallback && !boundToField)
	if !drawOnPage {
		return boundToField
	}
	if err := e.drawOnFirstPage(d, slot, imgRef, w, h); err != nil {
		log.Warn("Failed to draw image on page, continuing without it", zap.Error(err))
		return boundToField
	}
	return true
}

// bindToField sets the image as the normal appearance of every widget of the field.
func (e *assetEmbedder) bindToField(d *document, f *Field, imgRef types.IndirectRef, w, h int, log *zap.Logger) bool {
	bound := false
	for _, widget := range f.Widgets {
		if widget.Rect.Width() <= 0 || widget.Rect.Height() <= 0 {
			continue
		}
		form, err := d.addImageForm(imgRef, w, h, widget.Rect.Width(), widget.Rect.Height())
		if err != nil {
			log.Warn("Failed to build image appearance", zap.Error(err))
			continue
		}
		widget.Dict["AP"] = types.Dict{"N": form}
		mk := d.ownedSubDict(widget.Dict, "MK")
		mk["I"] = form
		setAnnotationVisible(widget.Dict, true)
		bound = true
	}
	return bound
}

func (e *assetEmbedder) drawOnFirstPage(d *document, slot assetSlot, imgRef types.IndirectRef, w, h int) error {
	pageDict, err := d.page(1)
	if err != nil {
		return err
	}
	box := slot.fallback(d.mediaBox(pageDict))
	dw, dh := fit(float64(w), float64(h), box.Width(), box.Height())
	name := d.addPageResource(pageDict, "XObject", "SanadIm", imgRef)
	x, y := box.LLX, box.URY-dh
	if slot.kind == "stamp" {
		x, y = box.URX-dw, box.LLY
	}
	return d.appendPageContent(pageDict, drawXObjectOps(name, x, y, dw, dh))
}
