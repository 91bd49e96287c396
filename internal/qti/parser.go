// Package qti reads assessment-test documents into rotation test specs.
//
// Both QTI 2.x (assessmentTest, assessmentSection, ...) and QTI 3
// (qti-assessment-test, qti-assessment-section, ...) element names are
// accepted. Only the structure that drives rotation is read: sections, their
// selection and ordering rules, and item references.
package qti

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stemsi/exstem-rotation/internal/rotation"
)

// ErrNotAssessmentTest is returned when the document root is not an assessment test.
var ErrNotAssessmentTest = errors.New("document is not an assessment test")

// Test is a parsed assessment test.
type Test struct {
	Identifier string
	Title      string
	Spec       rotation.TestSpec
}

type sectionFrame struct {
	spec rotation.SectionSpec
	seen map[string]struct{}
}

// ParseBytes parses an assessment-test document held in memory.
func ParseBytes(b []byte) (*Test, error) {
	return Parse(bytes.NewReader(b))
}

// Parse reads an assessment-test document. Sections are flattened in start-tag
// order, so a parent section precedes its nested sections. Sections without
// direct item references are dropped.
func Parse(r io.Reader) (*Test, error) {
	dec := xml.NewDecoder(r)

	var (
		test  *Test
		slots []*sectionFrame
		stack []*sectionFrame
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse assessment test: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := canonicalName(t.Name.Local)
			if test == nil {
				if name != "assessmentTest" {
					return nil, fmt.Errorf("%w: root element %q", ErrNotAssessmentTest, t.Name.Local)
				}
				test = &Test{Identifier: attr(t, "identifier"), Title: attr(t, "title")}
				continue
			}

			switch name {
			case "assessmentSection":
				id := attr(t, "identifier")
				if id == "" {
					return nil, &rotation.ContractViolationError{Reason: "assessment section without identifier"}
				}
				f := &sectionFrame{
					spec: rotation.SectionSpec{Identifier: id},
					seen: make(map[string]struct{}),
				}
				slots = append(slots, f)
				stack = append(stack, f)

			case "selection":
				if len(stack) == 0 {
					continue
				}
				top := stack[len(stack)-1]
				raw := attr(t, "select")
				n, err := strconv.Atoi(strings.TrimSpace(raw))
				if err != nil || n < 1 {
					return nil, &rotation.ContractViolationError{
						Section: top.spec.Identifier,
						Reason:  fmt.Sprintf("selection select must be a positive integer, got %q", raw),
					}
				}
				top.spec.SelectCount = rotation.SelectCountOf(n)

			case "ordering":
				if len(stack) == 0 {
					continue
				}
				top := stack[len(stack)-1]
				shuffle, err := strconv.ParseBool(strings.TrimSpace(attr(t, "shuffle")))
				top.spec.Shuffle = err == nil && shuffle

			case "assessmentItemRef":
				id := attr(t, "identifier")
				if len(stack) == 0 {
					return nil, &rotation.ContractViolationError{
						Reason: fmt.Sprintf("item reference %q outside a section", id),
					}
				}
				top := stack[len(stack)-1]
				if id == "" {
					return nil, &rotation.ContractViolationError{
						Section: top.spec.Identifier,
						Reason:  "item reference without identifier",
					}
				}
				if _, dup := top.seen[id]; dup {
					return nil, &rotation.ContractViolationError{
						Section: top.spec.Identifier,
						Reason:  fmt.Sprintf("duplicate item identifier %q", id),
					}
				}
				top.seen[id] = struct{}{}
				top.spec.ItemIdentifiers = append(top.spec.ItemIdentifiers, id)
			}

		case xml.EndElement:
			if canonicalName(t.Name.Local) == "assessmentSection" && len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if test == nil {
		return nil, ErrNotAssessmentTest
	}

	for _, f := range slots {
		if len(f.spec.ItemIdentifiers) == 0 {
			continue
		}
		test.Spec.Sections = append(test.Spec.Sections, f.spec)
	}
	return test, nil
}

// canonicalName maps QTI 3 kebab-case names ("qti-assessment-item-ref") onto
// their QTI 2 camelCase form ("assessmentItemRef").
func canonicalName(local string) string {
	if !strings.HasPrefix(local, "qti-") {
		return local
	}
	parts := strings.Split(strings.TrimPrefix(local, "qti-"), "-")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
