package voucherpdf

import (
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Annotation flag bits
const (
	annotFlagHidden = 1 << 1
	annotFlagPrint  = 1 << 2
	annotFlagNoView = 1 << 5
)

// Visibility is the shown/hidden state of the conditional field groups
type Visibility struct {
	ChequeShown   bool
	TransferShown bool
}

// ResolveVisibility decides group visibility from a payment method.
// Empty and unknown methods hide both groups.
func ResolveVisibility(method string) Visibility {
	switch strings.TrimSpace(method) {
	case "check", "cheque", "Cheque", "شيك":
		return Visibility{ChequeShown: true}
	case "bank_transfer", "Transfer", "transfer", "حوالة بنكية":
		return Visibility{TransferShown: true}
	}
	return Visibility{}
}

// Groups returns each conditional group with its visibility
func (v Visibility) Groups() map[*Group]bool {
	return map[*Group]bool{
		&ChequeGroup:   v.ChequeShown,
		&TransferGroup: v.TransferShown,
	}
}

// FieldStates returns the visibility of every conditional field
func (v Visibility) FieldStates() map[string]bool {
	states := make(map[string]bool, 8)
	for g, shown := range v.Groups() {
		for _, name := range g.Fields() {
			states[name] = shown
		}
	}
	return states
}

// ClearHidden blanks the value fields of hidden groups
func (v Visibility) ClearHidden(values FieldValues) {
	for g, shown := range v.Groups() {
		if shown {
			continue
		}
		for _, name := range g.ValueFields {
			values[name] = ""
		}
	}
}

// setAnnotationVisible updates the /F flags of a widget dictionary.
// A zero flag set becomes Print; showing clears Hidden and NoView.
func setAnnotationVisible(d types.Dict, visible bool) {
	flags := 0
	if f, ok := d["F"].(types.Integer); ok {
		flags = int(f)
	}
	if flags == 0 {
		flags = annotFlagPrint
	}
	if visible {
		flags &^= annotFlagHidden | annotFlagNoView
	} else {
		flags |= annotFlagHidden
	}
	d["F"] = types.Integer(flags)
}

// annotationHidden reports whether a widget must not be drawn
func annotationHidden(d types.Dict) bool {
	f, ok := d["F"].(types.Integer)
	if !ok {
		return false
	}
	return int(f)&(annotFlagHidden|annotFlagNoView) != 0
}
