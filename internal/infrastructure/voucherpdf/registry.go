package voucherpdf

import (
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Widget is one on-page occurrence of a form field
type Widget struct {
	Dict types.Dict
	Ref  *types.IndirectRef
	Page int
	Rect rectangle
}

// Field is a terminal form field with its widgets and inherited attributes
type Field struct {
	Name     string
	FullName string
	Dict     types.Dict
	Type     string
	DA       string
	Quadding int
	Widgets  []*Widget
}

// Registry indexes the named fields of a template
type Registry struct {
	fields map[string]*Field
	order  []*Field
}

// Lookup returns the field by partial or fully qualified name
func (r *Registry) Lookup(name string) (*Field, bool) {
	f, ok := r.fields[name]
	return f, ok
}

// Names returns field names in document order
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.order))
	for _, f := range r.order {
		out = append(out, f.Name)
	}
	return out
}

// Fields returns all terminal fields
func (r *Registry) Fields() []*Field {
	return r.order
}

type inheritedAttrs struct {
	ft string
	da string
	q  int
}

// buildRegistry walks the AcroForm field tree.
func buildRegistry(d *document) *Registry {
	reg := &Registry{fields: map[string]*Field{}}
	form := d.acroForm()
	if form == nil {
		return reg
	}

	pages := d.widgetPages()
	inh := inheritedAttrs{}
	if da, ok := form["DA"]; ok {
		inh.da = decodeText(d.deref(da))
	}
	if q, ok := d.number(form["Q"]); ok {
		inh.q = int(q)
	}

	seen := map[int]bool{}
	for _, o := range d.array(form["Fields"]) {
		reg.walk(d, o, "", inh, pages, seen, 0)
	}
	return reg
}

func (r *Registry) walk(d *document, o types.Object, parent string, inh inheritedAttrs, pages map[int]int, seen map[int]bool, depth int) {
	if depth > 32 {
		return
	}
	ref, isRef := o.(types.IndirectRef)
	if isRef {
		if seen[int(ref.ObjectNumber)] {
			return
		}
		seen[int(ref.ObjectNumber)] = true
	}
	node := d.dict(o)
	if node == nil {
		return
	}

	name := decodeText(d.deref(node["T"]))
	full := name
	if parent != "" && name != "" {
		full = parent + "." + name
	} else if name == "" {
		full = parent
	}

	if ft, ok := d.deref(node["FT"]).(types.Name); ok {
		inh.ft = string(ft)
	}
	if da, ok := node["DA"]; ok {
		inh.da = decodeText(d.deref(da))
	}
	if q, ok := d.number(node["Q"]); ok {
		inh.q = int(q)
	}

	kids := d.array(node["Kids"])
	var fieldKids, widgetKids types.Array
	for _, k := range kids {
		if kd := d.dict(k); kd != nil {
			if _, named := kd["T"]; named {
				fieldKids = append(fieldKids, k)
			} else {
				widgetKids = append(widgetKids, k)
			}
		}
	}

	for _, k := range fieldKids {
		r.walk(d, k, full, inh, pages, seen, depth+1)
	}
	if name == "" || (len(fieldKids) > 0 && len(widgetKids) == 0) {
		return
	}

	field := &Field{Name: name, FullName: full, Dict: node, Type: inh.ft, DA: inh.da, Quadding: inh.q}
	if len(widgetKids) == 0 {
		var self *types.IndirectRef
		if isRef {
			self = &ref
		}
		field.Widgets = append(field.Widgets, d.newWidget(node, self, pages))
	}
	for _, k := range widgetKids {
		var kr *types.IndirectRef
		if ir, ok := k.(types.IndirectRef); ok {
			kr = &ir
		}
		field.Widgets = append(field.Widgets, d.newWidget(d.dict(k), kr, pages))
	}

	r.order = append(r.order, field)
	if _, dup := r.fields[name]; !dup {
		r.fields[name] = field
	}
	if _, dup := r.fields[full]; !dup {
		r.fields[full] = field
	}
}

func (d *document) newWidget(dict types.Dict, ref *types.IndirectRef, pages map[int]int) *Widget {
	w := &Widget{Dict: dict, Ref: ref, Page: 1}
	if ref != nil {
		if p, ok := pages[int(ref.ObjectNumber)]; ok {
			w.Page = p
		}
	}
	if r, ok := d.rect(dict["Rect"]); ok {
		w.Rect = r
	}
	return w
}

// widgetPages maps annotation object numbers to their 1-based page number.
func (d *document) widgetPages() map[int]int {
	out := map[int]int{}
	for nr := 1; nr <= d.ctx.PageCount; nr++ {
		pageDict, err := d.page(nr)
		if err != nil {
			continue
		}
		for _, a := range d.array(pageDict["Annots"]) {
			if ir, ok := a.(types.IndirectRef); ok {
				out[int(ir.ObjectNumber)] = nr
			}
		}
	}
	return out
}

// ReadFieldNames parses a PDF and returns its form field names sorted.
func ReadFieldNames(pdf []byte) ([]string, error) {
	d, err := loadDocument(pdf)
	if err != nil {
		return nil, err
	}
	names := buildRegistry(d).Names()
	sort.Strings(names)
	return names, nil
}
