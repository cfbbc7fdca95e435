package voucherpdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// devField describes one field of the development template
type devField struct {
	name    string
	btn     bool
	rects   [][4]float64 // more than one rect produces a parent field with widget kids
	quad    int
	initial string
}

// devObject is a numbered raw object body
type devObject struct {
	num  int
	body string
}

// WriteDevTemplate writes a single-page A4 AcroForm template carrying every voucher field.
// It stands in for the designed template in local runs and tests.
func WriteDevTemplate(w io.Writer) error {
	fields := devTemplateFields()

	const (
		catalogNum = 1
		pagesNum   = 2
		pageNum    = 3
		formNum    = 4
		fontNum    = 5
		contentNum = 6
		firstField = 7
	)

	var objects []devObject
	next := firstField
	var fieldRefs, annotRefs []string

	for _, f := range fields {
		common := fmt.Sprintf("/T %s", pdfLiteral(f.name))
		if f.btn {
			common += " /FT /Btn /Ff 65536"
		} else {
			common += fmt.Sprintf(" /FT /Tx /DA (/Helv 0 Tf 0 g) /Q %d", f.quad)
			if f.initial != "" {
				common += " /V " + pdfLiteral(f.initial)
			}
		}

		if len(f.rects) == 1 {
			num := next
			next++
			objects = append(objects, devObject{num, fmt.Sprintf("<< /Type /Annot /Subtype /Widget %s /Rect %s /F 4 /P %d 0 R >>", common, rectString(f.rects[0]), pageNum)})
			fieldRefs = append(fieldRefs, ref(num))
			annotRefs = append(annotRefs, ref(num))
			continue
		}

		parent := next
		next++
		var kids []string
		for _, r := range f.rects {
			kid := next
			next++
			objects = append(objects, devObject{kid, fmt.Sprintf("<< /Type /Annot /Subtype /Widget /Parent %d 0 R /Rect %s /F 4 /P %d 0 R >>", parent, rectString(r), pageNum)})
			kids = append(kids, ref(kid))
			annotRefs = append(annotRefs, ref(kid))
		}
		objects = append(objects, devObject{parent, fmt.Sprintf("<< %s /Kids [%s] >>", common, strings.Join(kids, " "))})
		fieldRefs = append(fieldRefs, ref(parent))
	}

	content := devTemplateContent()
	head := []devObject{
		{catalogNum, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /AcroForm %d 0 R >>", pagesNum, formNum)},
		{pagesNum, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 /MediaBox [0 0 595 842] >>", pageNum)},
		{pageNum, fmt.Sprintf("<< /Type /Page /Parent %d 0 R /Resources << /Font << /Helv %d 0 R >> >> /Contents %d 0 R /Annots [%s] >>",
			pagesNum, fontNum, contentNum, strings.Join(annotRefs, " "))},
		{formNum, fmt.Sprintf("<< /Fields [%s] /DR << /Font << /Helv %d 0 R >> >> /DA (/Helv 0 Tf 0 g) >>", strings.Join(fieldRefs, " "), fontNum)},
		{fontNum, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"},
		{contentNum, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)},
	}
	objects = append(head, objects...)

	total := next
	bodies := make([]string, total)
	for _, o := range objects {
		bodies[o.num] = o.body
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")
	offsets := make([]int, total)
	for num := 1; num < total; num++ {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, bodies[num])
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", total)
	for num := 1; num < total; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", total, catalogNum, xref)

	_, err := w.Write(buf.Bytes())
	return err
}

// DevTemplate returns the development template bytes
func DevTemplate() []byte {
	var buf bytes.Buffer
	_ = WriteDevTemplate(&buf)
	return buf.Bytes()
}

func devTemplateFields() []devField {
	const (
		left   = 40.0
		right  = 320.0
		width  = 235.0
		height = 18.0
	)
	var fields []devField
	y := 700.0
	row := 0
	for _, name := range TextFields {
		x := left
		if row%2 == 1 {
			x = right
		}
		f := devField{name: name, quad: 2, rects: [][4]float64{{x, y, x + width, y + height}}}
		switch name {
		case FieldTotal:
			// two widgets: body line and footer box
			f.rects = append(f.rects, [4]float64{left, 60, left + width, 60 + height})
		case FieldChequeBankLabel, FieldTransferBankLabel:
			f.initial = "Bank"
		case FieldChequeNumberLabel:
			f.initial = "Cheque No."
		case FieldTransferNumberLabel:
			f.initial = "Transfer No."
		}
		fields = append(fields, f)
		if row%2 == 1 {
			y -= 28
		}
		row++
	}
	fields = append(fields,
		devField{name: FieldAmountInWords, quad: 2, rects: [][4]float64{{left, 110, right + width, 110 + height}}},
		devField{name: FieldLogoImage, btn: true, rects: [][4]float64{{left, 760, left + 110, 815}}},
		devField{name: FieldStampImage, btn: true, rects: [][4]float64{{right + 140, 40, right + 225, 125}}},
	)
	return fields
}

func devTemplateContent() string {
	return "0.6 G 1 w 30 30 535 782 re S\nBT /Helv 9 Tf 40 140 Td (Signature) Tj ET"
}

func rectString(r [4]float64) string {
	return fmt.Sprintf("[%s %s %s %s]", pdfNum(r[0]), pdfNum(r[1]), pdfNum(r[2]), pdfNum(r[3]))
}

func ref(num int) string {
	return fmt.Sprintf("%d 0 R", num)
}

// pdfLiteral escapes an ASCII string as a PDF literal.
func pdfLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}
