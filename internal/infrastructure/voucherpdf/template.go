package voucherpdf

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Template is an immutable voucher template held in memory and parsed fresh for each render
type Template struct {
	data   []byte
	fields []string
	digest string
}

// LoadTemplate reads and validates a template file
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateLoadFailed, "failed to read template", err)
	}
	return NewTemplate(data)
}

// NewTemplate validates template bytes and takes ownership of a private copy
func NewTemplate(data []byte) (*Template, error) {
	buf := make([]byte, len(data))
	copy(buf, data)
	names, err := ReadFieldNames(buf)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateLoadFailed, "failed to parse template", err)
	}
	sum := sha256.Sum256(buf)
	return &Template{data: buf, fields: names, digest: hex.EncodeToString(sum[:8])}, nil
}

// FieldNames returns the sorted field names found in the template
func (t *Template) FieldNames() []string {
	out := make([]string, len(t.fields))
	copy(out, t.fields)
	return out
}

// HasField reports whether the template defines name
func (t *Template) HasField(name string) bool {
	for _, f := range t.fields {
		if f == name {
			return true
		}
	}
	return false
}

// MissingFields lists required text fields absent from the template
func (t *Template) MissingFields() []string {
	var missing []string
	for _, name := range TextFields {
		if !t.HasField(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Digest is a short content hash used in logs
func (t *Template) Digest() string {
	return t.digest
}

func (t *Template) bytes() []byte {
	return t.data
}
