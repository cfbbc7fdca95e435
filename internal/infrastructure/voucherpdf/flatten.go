package voucherpdf

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const customFontResource = "SanadF"

// flattener bakes widget appearances into page content and removes the form.
type flattener struct {
	d    *document
	reg  *Registry
	font *embeddedFont
}

// flatten converts every visible widget into static page content drawn with
// file, and returns the embedded font. Hidden widgets are dropped and the
// AcroForm is removed from the catalog.
func (d *document) flatten(reg *Registry, file *FontFile) (*embeddedFont, error) {
	form := d.acroForm()
	if form == nil {
		return nil, nil
	}
	if file == nil {
		return nil, NewRenderError(ErrCodeFontLoadFailed, "flattening requires a font", nil)
	}
	ef, err := d.embedFont(file)
	if err != nil {
		return nil, err
	}
	fl := &flattener{d: d, reg: reg, font: ef}

	for _, f := range reg.Fields() {
		if err := fl.ensureAppearances(f); err != nil {
			return nil, NewRenderError(ErrCodeFlattenFailed, fmt.Sprintf("failed to build appearance for %s", f.Name), err)
		}
	}

	for nr := 1; nr <= d.ctx.PageCount; nr++ {
		if err := fl.flattenPage(nr); err != nil {
			return nil, NewRenderError(ErrCodeFlattenFailed, fmt.Sprintf("failed to flatten page %d", nr), err)
		}
	}

	if err := ef.finish(d); err != nil {
		return nil, NewRenderError(ErrCodeFontLoadFailed, "failed to finalize embedded font", err)
	}

	cat, err := d.catalog()
	if err != nil {
		return nil, NewRenderError(ErrCodeFlattenFailed, "failed to read catalog", err)
	}
	delete(cat, "AcroForm")
	return ef, nil
}

// ensureAppearances generates a normal appearance for text widgets that lack one.
func (fl *flattener) ensureAppearances(f *Field) error {
	if f.Type != "Tx" && f.Type != "" {
		return nil
	}
	value := fl.d.fieldValue(f)
	for _, w := range f.Widgets {
		if _, has := w.Dict["AP"]; has {
			continue
		}
		if strings.TrimSpace(value) == "" || annotationHidden(w.Dict) {
			continue
		}
		ref, err := fl.textAppearance(f, w, value)
		if err != nil {
			return err
		}
		w.Dict["AP"] = types.Dict{"N": ref}
	}
	return nil
}

// textAppearance builds a single-line form XObject drawing value inside the widget box.
func (fl *flattener) textAppearance(f *Field, w *Widget, value string) (types.IndirectRef, error) {
	bw, bh := w.Rect.Width(), w.Rect.Height()
	if bw <= 0 || bh <= 0 {
		return types.IndirectRef{}, fmt.Errorf("widget has an empty rectangle")
	}

	da := parseDA(f.DA)
	operand, unitWidth := fl.font.encode(value)
	size := da.Size
	if size <= 0 {
		size = bh * 0.7
		if size > 12 {
			size = 12
		}
	}
	const padding = 2.0
	if unitWidth > 0 && unitWidth*size > bw-2*padding {
		size = (bw - 2*padding) / unitWidth
		if size < 4 {
			size = 4
		}
	}
	textW := unitWidth * size

	x := padding
	switch f.Quadding {
	case 1:
		x = (bw - textW) / 2
	case 2:
		x = bw - padding - textW
	}
	y := (bh-size)/2 + size*0.22

	content := fmt.Sprintf("/Tx BMC\nq\nBT\n/%s %s Tf\n%s\n%s %s Td\n%s Tj\nET\nQ\nEMC\n",
		customFontResource, pdfNum(round3(size)), da.Rest, pdfNum(round3(x)), pdfNum(round3(y)), operand)

	dict := types.Dict{
		"Type":    types.Name("XObject"),
		"Subtype": types.Name("Form"),
		"BBox":    types.Array{types.Float(0), types.Float(0), types.Float(round3(bw)), types.Float(round3(bh))},
		"Resources": types.Dict{
			"Font": types.Dict{customFontResource: fl.font.ref()},
		},
	}
	return fl.d.addStream(dict, []byte(content), true)
}

func (fl *flattener) flattenPage(nr int) error {
	d := fl.d
	pageDict, err := d.page(nr)
	if err != nil {
		return err
	}
	annots := d.array(pageDict["Annots"])
	if len(annots) == 0 {
		return nil
	}

	var kept types.Array
	var ops []byte
	for _, a := range annots {
		ad := d.dict(a)
		if ad == nil {
			continue
		}
		if st, _ := ad["Subtype"].(types.Name); st != "Widget" {
			kept = append(kept, a)
			continue
		}
		if annotationHidden(ad) {
			continue
		}
		op, err := fl.drawWidget(pageDict, ad)
		if err != nil {
			return err
		}
		ops = append(ops, op...)
	}

	if len(kept) == 0 {
		delete(pageDict, "Annots")
	} else {
		pageDict["Annots"] = kept
	}
	if len(ops) == 0 {
		return nil
	}
	return d.appendPageContent(pageDict, ops)
}

// drawWidget returns the operators painting the widget's normal appearance in place.
func (fl *flattener) drawWidget(pageDict, ad types.Dict) ([]byte, error) {
	d := fl.d
	ap := d.dict(ad["AP"])
	if ap == nil {
		return nil, nil
	}
	nObj := ap["N"]
	if states, ok := d.deref(nObj).(types.Dict); ok {
		as, _ := ad["AS"].(types.Name)
		nObj = states[string(as)]
	}
	ref, ok := nObj.(types.IndirectRef)
	if !ok {
		sd, isStream := nObj.(types.StreamDict)
		if !isStream {
			return nil, nil
		}
		var err error
		if ref, err = d.addObject(sd); err != nil {
			return nil, err
		}
	}
	sd, ok := d.deref(ref).(types.StreamDict)
	if !ok {
		return nil, nil
	}

	rect, ok := d.rect(ad["Rect"])
	if !ok || rect.Width() <= 0 || rect.Height() <= 0 {
		return nil, nil
	}
	bbox, ok := d.rect(sd.Dict["BBox"])
	if !ok || bbox.Width() <= 0 || bbox.Height() <= 0 {
		bbox = rectangle{URX: rect.Width(), URY: rect.Height()}
	}

	sx := rect.Width() / bbox.Width()
	sy := rect.Height() / bbox.Height()
	tx := rect.LLX - bbox.LLX*sx
	ty := rect.LLY - bbox.LLY*sy

	name := d.addPageResource(pageDict, "XObject", "SanadFm", ref)
	return []byte(fmt.Sprintf("q %s 0 0 %s %s %s cm /%s Do Q\n",
		pdfNum(round3(sx)), pdfNum(round3(sy)), pdfNum(round3(tx)), pdfNum(round3(ty)), name)), nil
}
