package voucherpdf

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// setNeedAppearances asks viewers to regenerate field appearances from values.
func (d *document) setNeedAppearances() bool {
	form := d.acroForm()
	if form == nil {
		return false
	}
	form["NeedAppearances"] = types.Boolean(true)
	return true
}

// setFieldValue stores the value and drops cached appearances of the field and its widgets.
func setFieldValue(f *Field, value string) {
	f.Dict["V"] = encodeText(value)
	delete(f.Dict, "AP")
	for _, w := range f.Widgets {
		delete(w.Dict, "AP")
	}
}

// fieldValue returns the current text value of a field
func (d *document) fieldValue(f *Field) string {
	return decodeText(d.deref(f.Dict["V"]))
}

// setFieldVisible updates the annotation flags of every widget of the field.
func setFieldVisible(f *Field, visible bool) {
	for _, w := range f.Widgets {
		setAnnotationVisible(w.Dict, visible)
	}
}

// fieldHidden reports whether all widgets of the field are hidden
func fieldHidden(f *Field) bool {
	if len(f.Widgets) == 0 {
		return false
	}
	for _, w := range f.Widgets {
		if !annotationHidden(w.Dict) {
			return false
		}
	}
	return true
}

// applyValues binds values to the fields present in the registry and reports the names that were set.
func applyValues(reg *Registry, values FieldValues) []string {
	var bound []string
	for _, name := range TextFields {
		value, ok := values[name]
		if !ok {
			continue
		}
		if f, found := reg.Lookup(name); found {
			setFieldValue(f, value)
			bound = append(bound, name)
		}
	}
	for name, value := range values {
		if isKnownTextField(name) {
			continue
		}
		if f, found := reg.Lookup(name); found {
			setFieldValue(f, value)
			bound = append(bound, name)
		}
	}
	return bound
}

// applyVisibility sets group visibility and clears hidden group values on the fields.
func applyVisibility(reg *Registry, v Visibility) {
	for g, shown := range v.Groups() {
		for _, name := range g.Fields() {
			f, ok := reg.Lookup(name)
			if !ok {
				continue
			}
			setFieldVisible(f, shown)
		}
		if shown {
			continue
		}
		for _, name := range g.ValueFields {
			if f, ok := reg.Lookup(name); ok {
				setFieldValue(f, "")
			}
		}
	}
}

var knownTextFields = func() map[string]bool {
	m := make(map[string]bool, len(TextFields))
	for _, n := range TextFields {
		m[n] = true
	}
	return m
}()

func isKnownTextField(name string) bool {
	return knownTextFields[name]
}
