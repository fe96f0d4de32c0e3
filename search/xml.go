package search

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/c360/orthomerge/errors"
)

// BLAST+ XML (-outfmt 5) elements, decoded one Iteration at a time.
type iteration struct {
	QueryDef string   `xml:"Iteration_query-def"`
	QueryID  string   `xml:"Iteration_query-ID"`
	Hits     []xmlHit `xml:"Iteration_hits>Hit"`
}

type xmlHit struct {
	Def  string   `xml:"Hit_def"`
	Hsps []xmlHsp `xml:"Hit_hsps>Hsp"`
}

// noDefinition is what BLAST+ reports for a subject without a defline. The
// accompanying accession is then a database ordinal, not a sequence id.
const noDefinition = "No definition line"

type xmlHsp struct {
	QueryFrom int `xml:"Hsp_query-from"`
	QueryTo   int `xml:"Hsp_query-to"`
	HitFrom   int `xml:"Hsp_hit-from"`
	HitTo     int `xml:"Hsp_hit-to"`
}

// DecodeXML streams a BLAST+ XML report into per-query reports, in file order.
func DecodeXML(r io.Reader) ([]Report, error) {
	dec := xml.NewDecoder(r)
	var reports []Report

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return reports, nil
		}
		if err != nil {
			return nil, parseError(err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Iteration" {
			continue
		}

		var it iteration
		if err := dec.DecodeElement(&it, &start); err != nil {
			return nil, parseError(err)
		}
		reports = append(reports, it.report())
	}
}

func (it iteration) report() Report {
	rep := Report{Query: firstToken(it.QueryDef)}
	if rep.Query == "" {
		rep.Query = firstToken(it.QueryID)
	}

	for _, h := range it.Hits {
		var target string
		if def := strings.TrimSpace(h.Def); def != noDefinition {
			target = firstToken(def)
		}

		hit := Hit{Target: target, Segments: make([]Segment, 0, len(h.Hsps))}
		for _, hsp := range h.Hsps {
			hit.Segments = append(hit.Segments, Segment{
				QueryLen: span(hsp.QueryFrom, hsp.QueryTo),
				HitLen:   span(hsp.HitFrom, hsp.HitTo),
			})
		}
		rep.Hits = append(rep.Hits, hit)
	}
	return rep
}

// span is the inclusive length of a 1-based interval on either strand.
func span(from, to int) int {
	if to < from {
		from, to = to, from
	}
	return to - from + 1
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func parseError(err error) error {
	return errors.WrapFatal(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
		"search", "DecodeXML", "decode BLAST XML")
}
