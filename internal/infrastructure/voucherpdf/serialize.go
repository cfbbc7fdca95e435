package voucherpdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// stamp pins the metadata the writer would otherwise take from the clock
type stamp struct {
	Time time.Time
	Seed string
}

// bytes serializes the document. Equal documents with equal stamps produce
// equal bytes.
func (d *document) bytes(st stamp) ([]byte, error) {
	var buf bytes.Buffer
	if err := api.WriteContext(d.ctx, &buf); err != nil {
		return nil, err
	}
	return canonicalOrder(pinMetadata(buf.Bytes(), st)), nil
}

var (
	infoDatePattern = regexp.MustCompile(`/(?:CreationDate|ModDate)\s*\(D:\d{14}[+-]\d{2}'\d{2}'\)`)
	fileIDPattern   = regexp.MustCompile(`/ID\s*\[\s*<[0-9A-Fa-f]*>\s*<[0-9A-Fa-f]*>\s*\]`)
	hexStringRun    = regexp.MustCompile(`<[0-9A-Fa-f]*>`)

	startXRefPattern  = regexp.MustCompile(`startxref\s+(\d+)\s+%%EOF\s*$`)
	subsectionPattern = regexp.MustCompile(`^(\d+) (\d+)\s+`)
	xrefEntryPattern  = regexp.MustCompile(`^(\d{10}) (\d{5}) ([nf])\s{1,2}`)
)

// pinMetadata rewrites the info dates and the trailer /ID of a serialized
// document. Every replacement keeps its length so xref offsets stay valid.
func pinMetadata(pdf []byte, st stamp) []byte {
	at := st.Time.UTC()
	if at.Year() < 1000 || at.Year() > 9999 {
		at = time.Unix(0, 0).UTC()
	}
	date := types.DateString(at)
	pdf = infoDatePattern.ReplaceAllFunc(pdf, func(m []byte) []byte {
		open := bytes.IndexByte(m, '(')
		out := make([]byte, 0, len(m))
		out = append(out, m[:open+1]...)
		out = append(out, date...)
		out = append(out, ')')
		if len(out) != len(m) {
			return m
		}
		return out
	})

	sum := sha256.Sum256([]byte(st.Seed))
	id := hex.EncodeToString(sum[:])
	return fileIDPattern.ReplaceAllFunc(pdf, func(m []byte) []byte {
		return hexStringRun.ReplaceAllFunc(m, func(h []byte) []byte {
			n := len(h) - 2
			digits := strings.Repeat(id, n/len(id)+1)[:n]
			return []byte("<" + digits + ">")
		})
	})
}

type xrefEntry struct {
	objNr  int
	offset int
	at     int // position of the offset digits in the file
}

// canonicalOrder rearranges the body objects of a classic xref file by object
// number and rewrites their offsets in place. The writer walks dictionaries in
// map order, so the same objects may otherwise land in a different sequence on
// every save. The body keeps its total length, which leaves startxref valid.
// Input that does not have the expected layout is returned unchanged.
func canonicalOrder(pdf []byte) []byte {
	m := startXRefPattern.FindSubmatch(pdf)
	if m == nil {
		return pdf
	}
	xrefAt, err := strconv.Atoi(string(m[1]))
	if err != nil || xrefAt <= 0 || xrefAt >= len(pdf) || !bytes.HasPrefix(pdf[xrefAt:], []byte("xref")) {
		return pdf
	}
	entries, err := parseXRefEntries(pdf, xrefAt)
	if err != nil || len(entries) == 0 {
		return pdf
	}

	byOffset := append([]xrefEntry(nil), entries...)
	sort.Slice(byOffset, func(i, j int) bool { return byOffset[i].offset < byOffset[j].offset })
	bodyStart := byOffset[0].offset
	chunks := make(map[int][]byte, len(byOffset))
	for i, e := range byOffset {
		end := xrefAt
		if i+1 < len(byOffset) {
			end = byOffset[i+1].offset
		}
		if e.offset < bodyStart || end <= e.offset || end > xrefAt {
			return pdf
		}
		chunk := pdf[e.offset:end]
		if !bytes.HasPrefix(chunk, []byte(strconv.Itoa(e.objNr)+" ")) {
			return pdf
		}
		chunks[e.objNr] = chunk
	}

	out := make([]byte, 0, len(pdf))
	out = append(out, pdf[:bodyStart]...)
	offsets := make(map[int]int, len(entries))
	sort.Slice(entries, func(i, j int) bool { return entries[i].objNr < entries[j].objNr })
	for _, e := range entries {
		offsets[e.objNr] = len(out)
		out = append(out, chunks[e.objNr]...)
	}
	if len(out) != xrefAt {
		return pdf
	}
	out = append(out, pdf[xrefAt:]...)
	for _, e := range entries {
		copy(out[e.at:e.at+10], fmt.Sprintf("%010d", offsets[e.objNr]))
	}
	return out
}

// parseXRefEntries returns the in-use entries of the xref section at xrefAt
func parseXRefEntries(pdf []byte, xrefAt int) ([]xrefEntry, error) {
	pos := xrefAt + len("xref")
	for pos < len(pdf) && (pdf[pos] == '\r' || pdf[pos] == '\n') {
		pos++
	}
	var entries []xrefEntry
	for !bytes.HasPrefix(pdf[pos:], []byte("trailer")) {
		sub := subsectionPattern.FindSubmatch(pdf[pos:])
		if sub == nil {
			return nil, fmt.Errorf("malformed xref subsection at %d", pos)
		}
		start, _ := strconv.Atoi(string(sub[1]))
		count, _ := strconv.Atoi(string(sub[2]))
		pos += len(sub[0])
		for i := 0; i < count; i++ {
			e := xrefEntryPattern.FindSubmatch(pdf[pos:])
			if e == nil {
				return nil, fmt.Errorf("malformed xref entry at %d", pos)
			}
			if string(e[3]) == "n" {
				off, _ := strconv.Atoi(string(e[1]))
				entries = append(entries, xrefEntry{objNr: start + i, offset: off, at: pos})
			}
			pos += len(e[0])
		}
	}
	return entries, nil
}
