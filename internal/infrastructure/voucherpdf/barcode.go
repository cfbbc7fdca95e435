package voucherpdf

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BarcodeOptions controls raster size of generated codes
type BarcodeOptions struct {
	Scale       int  // pixels per module
	Height      int  // bar height in pixels
	IncludeText bool // human-readable caption under the bars
	QuietZone   int  // modules of white space on each side
}

// DefaultBarcodeOptions returns scale 2, height 50, caption on
func DefaultBarcodeOptions() BarcodeOptions {
	return BarcodeOptions{Scale: 2, Height: 50, IncludeText: true, QuietZone: 10}
}

// BarcodeGenerator renders verification identifiers as Code 128 and QR rasters
type BarcodeGenerator struct {
	opts BarcodeOptions
}

// NewBarcodeGenerator creates a generator, filling zero options with defaults
func NewBarcodeGenerator(opts BarcodeOptions) *BarcodeGenerator {
	def := DefaultBarcodeOptions()
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.QuietZone < 0 {
		opts.QuietZone = 0
	}
	return &BarcodeGenerator{opts: opts}
}

// Options returns the effective options
func (g *BarcodeGenerator) Options() BarcodeOptions {
	return g.opts
}

// Code128 encodes payload as a linear barcode with an optional centered caption.
func (g *BarcodeGenerator) Code128(payload string) (image.Image, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "barcode payload is empty", nil)
	}
	bc, err := code128.Encode(payload)
	if err != nil {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "failed to encode code128", err)
	}

	modules := bc.Bounds().Dx()
	scaled, err := barcode.Scale(bc, modules*g.opts.Scale, g.opts.Height)
	if err != nil {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "failed to scale code128", err)
	}

	pad := g.opts.QuietZone * g.opts.Scale
	face := basicfont.Face7x13
	captionH := 0
	if g.opts.IncludeText {
		captionH = face.Metrics().Height.Ceil() + 4
	}

	width := scaled.Bounds().Dx() + 2*pad
	height := scaled.Bounds().Dy() + captionH
	canvas := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(pad, 0, pad+scaled.Bounds().Dx(), scaled.Bounds().Dy()), scaled, scaled.Bounds().Min, draw.Src)

	if g.opts.IncludeText {
		drawer := &font.Drawer{Dst: canvas, Src: image.Black, Face: face}
		advance := drawer.MeasureString(payload).Ceil()
		x := (width - advance) / 2
		if x < 0 {
			x = 0
		}
		baseline := scaled.Bounds().Dy() + 2 + face.Metrics().Ascent.Ceil()
		drawer.Dot = fixed.P(x, baseline)
		drawer.DrawString(payload)
	}
	return canvas, nil
}

// QR encodes payload as a QR code at medium error correction.
func (g *BarcodeGenerator) QR(payload string) (image.Image, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "qr payload is empty", nil)
	}
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "failed to encode qr", err)
	}
	size := code.Bounds().Dx() * g.opts.Scale
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, NewRenderError(ErrCodeBarcodeFailed, "failed to scale qr", err)
	}
	return scaled, nil
}

// barcodeLayout is the fixed placement of codes on the first page
type barcodeLayout struct {
	TopOffset float64 // points from the top edge to the top of the barcode
	Factor    float64 // points per raster pixel
	QRSize    float64 // QR edge length in points
	QRMargin  float64
}

var defaultBarcodeLayout = barcodeLayout{TopOffset: 40, Factor: 0.5, QRSize: 64, QRMargin: 24}

// drawCodes places the barcode (and optionally the QR) on page 1.
func (d *document) drawCodes(bar, qrImg image.Image, layout barcodeLayout) error {
	pageDict, err := d.page(1)
	if err != nil {
		return err
	}
	page := d.mediaBox(pageDict)

	var ops []byte
	ref, w, h, err := d.addImage(bar)
	if err != nil {
		return fmt.Errorf("failed to embed barcode: %w", err)
	}
	bw, bh := float64(w)*layout.Factor, float64(h)*layout.Factor
	x := page.LLX + (page.Width()-bw)/2
	y := page.URY - layout.TopOffset - bh
	name := d.addPageResource(pageDict, "XObject", "SanadBc", ref)
	ops = append(ops, drawXObjectOps(name, x, y, bw, bh)...)

	if qrImg != nil {
		qref, _, _, err := d.addImage(qrImg)
		if err != nil {
			return fmt.Errorf("failed to embed qr: %w", err)
		}
		qx := page.URX - layout.QRMargin - layout.QRSize
		qy := page.URY - layout.TopOffset - layout.QRSize
		qname := d.addPageResource(pageDict, "XObject", "SanadQr", qref)
		ops = append(ops, drawXObjectOps(qname, qx, qy, layout.QRSize, layout.QRSize)...)
	}
	return d.appendPageContent(pageDict, ops)
}
