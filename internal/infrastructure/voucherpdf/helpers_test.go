package voucherpdf

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sanad/backend/internal/domain/shared"
	"github.com/sanad/backend/internal/domain/voucher"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestReceipt(kind voucher.Kind, method voucher.PaymentMethod) *voucher.Receipt {
	return &voucher.Receipt{
		TenantEntity: shared.TenantEntity{
			BaseEntity: shared.BaseEntity{
				ID:        uuid.New(),
				CreatedAt: time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC),
			},
			TenantID: uuid.New(),
		},
		ReceiptNumber: "REC-2024-000042",
		Kind:          kind,
		RecipientName: "Ahmed",
		Amount:        decimal.NewFromInt(1000),
		Description:   "Office rent",
		PaymentMethod: method,
		Date:          time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		BarcodeID:     "RCP-2024-000042",
	}
}

func newTestOrganization(logo string) *voucher.Organization {
	return &voucher.Organization{
		BaseEntity:             shared.BaseEntity{ID: uuid.New()},
		NameAR:                 "شركة المثال",
		NameEN:                 "Example Co",
		CommercialRegistration: "1010101010",
		TaxNumber:              "300000000000003",
		Address:                "Riyadh",
		Phone:                  "0111111111",
		Description:            "Trading",
		LogoURL:                logo,
	}
}

// stubFetcher serves canned bytes per reference
type stubFetcher struct {
	images map[string][]byte
}

func (s *stubFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if data, ok := s.images[ref]; ok {
		return data, nil
	}
	return nil, errors.New("connection refused")
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 20, B: 20, A: 180})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestCompositor(t *testing.T, opts ...Option) *Compositor {
	t.Helper()
	tpl, err := NewTemplate(DevTemplate())
	require.NoError(t, err)
	c, err := NewCompositor(tpl, opts...)
	require.NoError(t, err)
	return c
}

func interactivePolicy() *RenderPolicy {
	return &RenderPolicy{Flatten: false, LogoPlacement: LogoFormFieldOnly}
}

// renderedForm re-reads an unflattened output
type renderedForm struct {
	doc *document
	reg *Registry
}

func readForm(t *testing.T, pdf []byte) *renderedForm {
	t.Helper()
	doc, err := loadDocument(pdf)
	require.NoError(t, err)
	return &renderedForm{doc: doc, reg: buildRegistry(doc)}
}

func (f *renderedForm) value(t *testing.T, name string) string {
	t.Helper()
	field, ok := f.reg.Lookup(name)
	require.True(t, ok, "field %s missing", name)
	return f.doc.fieldValue(field)
}

func (f *renderedForm) hidden(t *testing.T, name string) bool {
	t.Helper()
	field, ok := f.reg.Lookup(name)
	require.True(t, ok, "field %s missing", name)
	return fieldHidden(field)
}

var (
	bfcharEntry = regexp.MustCompile(`<([0-9A-Fa-f]{4})>\s*<([0-9A-Fa-f]+)>`)
	showText    = regexp.MustCompile(`<([0-9A-Fa-f]*)>\s*Tj`)
)

func decodedStream(t *testing.T, doc *document, o types.Object) []byte {
	t.Helper()
	sd, ok := doc.deref(o).(types.StreamDict)
	require.True(t, ok, "not a stream")
	require.NoError(t, sd.Decode())
	return sd.Content
}

// drawnTexts returns the strings painted by the flattened text appearances
// on page 1, decoded back through the font's ToUnicode map.
func drawnTexts(t *testing.T, doc *document) []string {
	t.Helper()
	pageDict, err := doc.page(1)
	require.NoError(t, err)
	xobjects := doc.dict(doc.dict(doc.inherited(pageDict, "Resources"))["XObject"])

	var texts []string
	for name, ref := range xobjects {
		if !strings.HasPrefix(name, "SanadFm") {
			continue
		}
		sd, ok := doc.deref(ref).(types.StreamDict)
		require.True(t, ok)
		fontDict := doc.dict(doc.dict(doc.dict(sd.Dict["Resources"])["Font"])[customFontResource])
		if fontDict == nil {
			continue
		}

		unicode := map[string]string{}
		for _, m := range bfcharEntry.FindAllSubmatch(decodedStream(t, doc, fontDict["ToUnicode"]), -1) {
			unicode[strings.ToUpper(string(m[1]))] = utf16String(t, string(m[2]))
		}
		for _, m := range showText.FindAllSubmatch(decodedStream(t, doc, ref), -1) {
			codes := string(m[1])
			var b strings.Builder
			for i := 0; i+4 <= len(codes); i += 4 {
				s, ok := unicode[strings.ToUpper(codes[i:i+4])]
				require.True(t, ok, "code %s has no unicode mapping", codes[i:i+4])
				b.WriteString(s)
			}
			texts = append(texts, b.String())
		}
	}
	return texts
}

func utf16String(t *testing.T, hexUnits string) string {
	t.Helper()
	var units []uint16
	for i := 0; i+4 <= len(hexUnits); i += 4 {
		u, err := strconv.ParseUint(hexUnits[i:i+4], 16, 16)
		require.NoError(t, err)
		units = append(units, uint16(u))
	}
	return string(utf16.Decode(units))
}
