package voucherpdf

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/filter"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/unicode"
)

// document is one in-memory PDF owned by a single render
type document struct {
	ctx     *model.Context
	nameSeq int
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

func loadDocument(data []byte) (*document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("template is empty")
	}
	ctx, err := api.ReadContext(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pdf: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}
	if ctx.PageCount < 1 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	return &document{ctx: ctx}, nil
}

func (d *document) catalog() (types.Dict, error) {
	return d.ctx.Catalog()
}

// acroForm returns the interactive form dictionary or nil
func (d *document) acroForm() types.Dict {
	cat, err := d.catalog()
	if err != nil {
		return nil
	}
	return d.dict(cat["AcroForm"])
}

func (d *document) dict(o types.Object) types.Dict {
	if o == nil {
		return nil
	}
	dict, err := d.ctx.DereferenceDict(o)
	if err != nil {
		return nil
	}
	return dict
}

func (d *document) array(o types.Object) types.Array {
	if o == nil {
		return nil
	}
	arr, err := d.ctx.DereferenceArray(o)
	if err != nil {
		return nil
	}
	return arr
}

func (d *document) deref(o types.Object) types.Object {
	if o == nil {
		return nil
	}
	obj, err := d.ctx.Dereference(o)
	if err != nil {
		return nil
	}
	return obj
}

func (d *document) number(o types.Object) (float64, bool) {
	switch v := d.deref(o).(type) {
	case types.Integer:
		return float64(v), true
	case types.Float:
		return float64(v), true
	}
	return 0, false
}

func (d *document) rect(o types.Object) (rectangle, bool) {
	arr := d.array(o)
	if len(arr) != 4 {
		return rectangle{}, false
	}
	var v [4]float64
	for i := range arr {
		n, ok := d.number(arr[i])
		if !ok {
			return rectangle{}, false
		}
		v[i] = n
	}
	return normalizeRect(v[0], v[1], v[2], v[3]), true
}

func (d *document) addObject(o types.Object) (types.IndirectRef, error) {
	ref, err := d.ctx.IndRefForNewObject(o)
	if err != nil {
		return types.IndirectRef{}, err
	}
	return *ref, nil
}

// addStream stores a new stream object, Flate-compressed when compress is set.
func (d *document) addStream(dict types.Dict, content []byte, compress bool) (types.IndirectRef, error) {
	var pipeline []types.PDFFilter
	if compress {
		pipeline = []types.PDFFilter{{Name: filter.Flate}}
		dict["Filter"] = types.Name(filter.Flate)
	}
	sd := types.NewStreamDict(dict, 0, nil, nil, pipeline)
	sd.Content = content
	if err := sd.Encode(); err != nil {
		return types.IndirectRef{}, fmt.Errorf("failed to encode stream: %w", err)
	}
	return d.addObject(sd)
}

func (d *document) page(nr int) (types.Dict, error) {
	pageDict, _, _, err := d.ctx.PageDict(nr, false)
	if err != nil {
		return nil, err
	}
	if pageDict == nil {
		return nil, fmt.Errorf("page %d not found", nr)
	}
	return pageDict, nil
}

// inherited looks key up on the page and then along its /Parent chain.
func (d *document) inherited(pageDict types.Dict, key string) types.Object {
	node := pageDict
	for depth := 0; node != nil && depth < 32; depth++ {
		if o, ok := node[key]; ok {
			return o
		}
		node = d.dict(node["Parent"])
	}
	return nil
}

func (d *document) mediaBox(pageDict types.Dict) rectangle {
	if r, ok := d.rect(d.inherited(pageDict, "MediaBox")); ok {
		return r
	}
	return rectangle{URX: 595.28, URY: 841.89}
}

// ownedSubDict returns a copy of parent[key] stored directly on parent, so edits never leak into shared dictionaries.
func (d *document) ownedSubDict(parent types.Dict, key string) types.Dict {
	owned := types.Dict{}
	for k, v := range d.dict(parent[key]) {
		owned[k] = v
	}
	parent[key] = owned
	return owned
}

func (d *document) uniqueName(existing types.Dict, prefix string) string {
	for {
		d.nameSeq++
		name := prefix + strconv.Itoa(d.nameSeq)
		if _, taken := existing[name]; !taken {
			return name
		}
	}
}

// addPageResource registers ref under a fresh name in the page's resource category.
func (d *document) addPageResource(pageDict types.Dict, category, prefix string, ref types.IndirectRef) string {
	res := types.Dict{}
	for k, v := range d.dict(d.inherited(pageDict, "Resources")) {
		res[k] = v
	}
	pageDict["Resources"] = res
	sub := d.ownedSubDict(res, category)
	name := d.uniqueName(sub, prefix)
	sub[name] = ref
	return name
}

// appendPageContent draws ops on top of the existing page content.
// The original content is wrapped in q/Q so its graphics state cannot leak.
func (d *document) appendPageContent(pageDict types.Dict, ops []byte) error {
	var contents types.Array
	switch c := pageDict["Contents"].(type) {
	case types.IndirectRef:
		if arr := d.array(c); arr != nil {
			contents = append(contents, arr...)
		} else {
			contents = append(contents, c)
		}
	case types.Array:
		contents = append(contents, c...)
	}

	open, err := d.addStream(types.Dict{}, []byte("q\n"), false)
	if err != nil {
		return err
	}
	body := append([]byte("Q\n"), ops...)
	closing, err := d.addStream(types.Dict{}, body, true)
	if err != nil {
		return err
	}

	merged := types.Array{open}
	merged = append(merged, contents...)
	pageDict["Contents"] = append(merged, closing)
	return nil
}

// encodeText encodes s as a UTF-16BE hex string with byte order mark.
func encodeText(s string) types.HexLiteral {
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return types.HexLiteral(strings.ToUpper(hex.EncodeToString([]byte(s))))
	}
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString(b)))
}

// decodeText returns the text of a PDF string object.
func decodeText(o types.Object) string {
	var raw []byte
	switch v := o.(type) {
	case types.StringLiteral:
		raw = unescapeLiteral(string(v))
	case types.HexLiteral:
		b, err := hex.DecodeString(string(v))
		if err != nil {
			return ""
		}
		raw = b
	case types.Name:
		return string(v)
	default:
		return ""
	}
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err == nil {
			return string(out)
		}
	}
	return string(raw)
}

func unescapeLiteral(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\r', '\n':
			// line continuation
		default:
			if e >= '0' && e <= '7' {
				v := 0
				j := i
				for ; j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7'; j++ {
					v = v*8 + int(s[j]-'0')
				}
				out = append(out, byte(v))
				i = j - 1
				continue
			}
			out = append(out, e)
		}
	}
	return out
}

// rectangle is an axis-aligned box in default user space
type rectangle struct {
	LLX, LLY, URX, URY float64
}

func normalizeRect(x1, y1, x2, y2 float64) rectangle {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return rectangle{LLX: x1, LLY: y1, URX: x2, URY: y2}
}

func (r rectangle) Width() float64  { return r.URX - r.LLX }
func (r rectangle) Height() float64 { return r.URY - r.LLY }

// fit scales w x h to the largest size that fits the box with the aspect
// ratio kept. Small images are scaled up.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

func pdfNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// drawXObjectOps places a named XObject at x,y with the given size.
func drawXObjectOps(name string, x, y, w, h float64) []byte {
	return []byte(fmt.Sprintf("q %s 0 0 %s %s %s cm /%s Do Q\n", pdfNum(round3(w)), pdfNum(round3(h)), pdfNum(round3(x)), pdfNum(round3(y)), name))
}

func round3(f float64) float64 {
	return float64(int64(f*1000+0.5*sign(f))) / 1000
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}
