package voucherpdf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontFile is a parsed TrueType font shared read-only across renders
type FontFile struct {
	data []byte
	font *sfnt.Font
	name string
}

// LoadFontFile reads and parses a TrueType font from disk
func LoadFontFile(path string) (*FontFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewRenderError(ErrCodeFontLoadFailed, "failed to read font file", err)
	}
	return ParseFontFile(data)
}

// ParseFontFile parses TrueType bytes
func ParseFontFile(data []byte) (*FontFile, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, NewRenderError(ErrCodeFontLoadFailed, "failed to parse font file", err)
	}
	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDPostScript)
	if err != nil || name == "" {
		name = "SanadCustom"
	}
	name = strings.Map(func(r rune) rune {
		if r <= ' ' || r > '~' || strings.ContainsRune("()<>[]{}/%#", r) {
			return -1
		}
		return r
	}, name)
	return &FontFile{data: data, font: f, name: name}, nil
}

// Name returns the PostScript name of the font
func (f *FontFile) Name() string {
	return f.name
}

// builtinFont is Go Regular. It covers Latin text only, so Arabic values
// extract correctly but print as missing glyphs until a font is configured.
var builtinFont = sync.OnceValues(func() (*FontFile, error) {
	return ParseFontFile(goregular.TTF)
})

// DefaultFontFile returns the built-in font used when none is configured
func DefaultFontFile() (*FontFile, error) {
	return builtinFont()
}

// embeddedFont is a Type0 Identity-H font built from a FontFile for one
// document. Every distinct character gets its own CID, so the ToUnicode map
// recovers the text even where the font lacks a glyph.
type embeddedFont struct {
	file    *FontFile
	buf     sfnt.Buffer
	self    types.IndirectRef
	cid     types.Dict
	cids    map[rune]int
	runes   []rune // by CID - 1
	gids    []sfnt.GlyphIndex
	widths  []int
	missing []rune
}

func (d *document) embedFont(file *FontFile) (*embeddedFont, error) {
	ef := &embeddedFont{
		file: file,
		cids: map[rune]int{},
	}
	ppem := fixed.I(1000)
	metrics, err := file.font.Metrics(&ef.buf, ppem, font.HintingNone)
	if err != nil {
		return nil, NewRenderError(ErrCodeFontLoadFailed, "failed to read font metrics", err)
	}
	bounds, err := file.font.Bounds(&ef.buf, ppem, font.HintingNone)
	if err != nil {
		return nil, NewRenderError(ErrCodeFontLoadFailed, "failed to read font bounds", err)
	}

	fontFile, err := d.addStream(types.Dict{"Length1": types.Integer(len(file.data))}, file.data, true)
	if err != nil {
		return nil, err
	}
	// sfnt uses a y-down coordinate system.
	descriptor, err := d.addObject(types.Dict{
		"Type":        types.Name("FontDescriptor"),
		"FontName":    types.Name(file.name),
		"Flags":       types.Integer(32),
		"FontBBox":    types.Array{types.Integer(bounds.Min.X.Floor()), types.Integer(-bounds.Max.Y.Ceil()), types.Integer(bounds.Max.X.Ceil()), types.Integer(-bounds.Min.Y.Floor())},
		"ItalicAngle": types.Integer(0),
		"Ascent":      types.Integer(metrics.Ascent.Round()),
		"Descent":     types.Integer(-metrics.Descent.Round()),
		"CapHeight":   types.Integer(metrics.CapHeight.Round()),
		"StemV":       types.Integer(80),
		"FontFile2":   fontFile,
	})
	if err != nil {
		return nil, err
	}

	ef.cid = types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("CIDFontType2"),
		"BaseFont": types.Name(file.name),
		"CIDSystemInfo": types.Dict{
			"Registry":   types.StringLiteral("Adobe"),
			"Ordering":   types.StringLiteral("Identity"),
			"Supplement": types.Integer(0),
		},
		"FontDescriptor": descriptor,
		"DW":             types.Integer(1000),
	}
	cidRef, err := d.addObject(ef.cid)
	if err != nil {
		return nil, err
	}

	self, err := d.addObject(types.Dict{
		"Type":            types.Name("Font"),
		"Subtype":         types.Name("Type0"),
		"BaseFont":        types.Name(file.name),
		"Encoding":        types.Name("Identity-H"),
		"DescendantFonts": types.Array{cidRef},
	})
	if err != nil {
		return nil, err
	}
	ef.self = self
	return ef, nil
}

func (f *embeddedFont) ref() types.IndirectRef { return f.self }

// cidFor returns the CID of r, assigning the next one on first use. CID 0 stays .notdef.
func (f *embeddedFont) cidFor(r rune) int {
	if cid, ok := f.cids[r]; ok {
		return cid
	}
	gid, err := f.file.font.GlyphIndex(&f.buf, r)
	if err != nil {
		gid = 0
	}
	if gid == 0 {
		f.missing = append(f.missing, r)
	}
	width := 0
	if adv, err := f.file.font.GlyphAdvance(&f.buf, gid, fixed.I(1000), font.HintingNone); err == nil {
		width = adv.Round()
	}
	f.runes = append(f.runes, r)
	f.gids = append(f.gids, gid)
	f.widths = append(f.widths, width)
	cid := len(f.runes)
	f.cids[r] = cid
	return cid
}

// encode returns the show-string operand and the text width at size 1
func (f *embeddedFont) encode(text string) (string, float64) {
	var hexBuf strings.Builder
	total := 0
	for _, r := range text {
		cid := f.cidFor(r)
		total += f.widths[cid-1]
		fmt.Fprintf(&hexBuf, "%04X", uint16(cid))
	}
	return "<" + hexBuf.String() + ">", float64(total) / 1000
}

// MissingGlyphs returns the characters drawn so far that the font has no glyph for
func (f *embeddedFont) MissingGlyphs() []rune {
	return f.missing
}

// finish writes the widths, the CID to glyph map and the ToUnicode map for every character used.
func (f *embeddedFont) finish(d *document) error {
	if len(f.widths) > 0 {
		ws := make(types.Array, len(f.widths))
		for i, w := range f.widths {
			ws[i] = types.Integer(w)
		}
		f.cid["W"] = types.Array{types.Integer(1), ws}
	}

	gidMap := make([]byte, 2*(len(f.gids)+1))
	for i, gid := range f.gids {
		binary.BigEndian.PutUint16(gidMap[2*(i+1):], uint16(gid))
	}
	gidRef, err := d.addStream(types.Dict{}, gidMap, true)
	if err != nil {
		return err
	}
	f.cid["CIDToGIDMap"] = gidRef

	toUnicode, err := d.addStream(types.Dict{}, f.toUnicodeCMap(), true)
	if err != nil {
		return err
	}
	if root := d.dict(f.self); root != nil {
		root["ToUnicode"] = toUnicode
	}
	return nil
}

func (f *embeddedFont) toUnicodeCMap() []byte {
	var b bytes.Buffer
	b.WriteString("/CIDInit /ProcSet findresource begin\n12 dict begin\nbegincmap\n")
	b.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	b.WriteString("/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n")
	b.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	entries := make([]string, 0, len(f.runes))
	for i, r := range f.runes {
		entries = append(entries, fmt.Sprintf("<%04X> <%s>", i+1, utf16Hex(r)))
	}
	for len(entries) > 0 {
		n := min(len(entries), 100)
		fmt.Fprintf(&b, "%d beginbfchar\n%s\nendbfchar\n", n, strings.Join(entries[:n], "\n"))
		entries = entries[n:]
	}
	b.WriteString("endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return b.Bytes()
}

func utf16Hex(r rune) string {
	if r < 0x10000 {
		return fmt.Sprintf("%04X", r)
	}
	r -= 0x10000
	return fmt.Sprintf("%04X%04X", 0xD800+(r>>10), 0xDC00+(r&0x3FF))
}

var daFontPattern = regexp.MustCompile(`/([^\s/\[\]()<>{}%]+)\s+(-?[\d.]+)\s+Tf`)

// defaultAppearance is the parsed font selection of a field's /DA string
type defaultAppearance struct {
	FontName string
	Size     float64
	Rest     string // color and other operators
}

func parseDA(da string) defaultAppearance {
	out := defaultAppearance{FontName: "Helv", Rest: "0 g"}
	m := daFontPattern.FindStringSubmatchIndex(da)
	if m == nil {
		return out
	}
	out.FontName = da[m[2]:m[3]]
	if size, err := strconv.ParseFloat(da[m[4]:m[5]], 64); err == nil {
		out.Size = size
	}
	rest := strings.TrimSpace(da[:m[0]] + " " + da[m[1]:])
	if rest != "" {
		out.Rest = rest
	}
	return out
}
