// Package sections parses loosely structured, markdown-ish model output
// into named sections.
//
// The grammar is line oriented and deliberately tolerant:
//
//	**Name:**         opens the section Name
//	Name:             opens Name when Name is declared in the schema
//	<n>. item         appends to a List section when n is the next index
//	- key: value      adds an entry to a ScoreMap section
//
// Anything else is kept as free text on the current section. A section
// absent from the input stays at its empty default. Parsing never fails.
package sections

import (
	"strconv"
	"strings"
)

// Kind tags the shape of a section's content.
type Kind int

const (
	KindText Kind = iota
	KindList
	KindScoreMap
)

// Schema declares the sections a caller expects and their kinds.
type Schema map[string]Kind

// Section holds one parsed section. Items is populated for KindList,
// Scores for KindScoreMap and Text for KindText. Lines that do not match
// a List or ScoreMap section's markers land in Text as well, so nothing
// from the input is silently unreachable.
type Section struct {
	Kind   Kind
	Items  []string
	Text   string
	Scores map[string]string
}

// Result maps section names to their parsed content. Every name in the
// schema is present, parsed or not.
type Result map[string]Section

// Parse splits text into the sections the schema declares.
func Parse(text string, schema Schema) Result {
	result := make(Result, len(schema))
	for name, kind := range schema {
		s := Section{Kind: kind}
		if kind == KindScoreMap {
			s.Scores = make(map[string]string)
		}
		result[name] = s
	}

	current := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		if name, ok := headingName(line, schema); ok {
			current = name
			continue
		}
		section, known := result[current]
		if !known {
			continue
		}

		switch section.Kind {
		case KindList:
			marker := itemMarker(len(section.Items))
			if strings.HasPrefix(line, marker) {
				section.Items = append(section.Items, strings.TrimSpace(line[len(marker):]))
			} else {
				section.Text += line + "\n"
			}
		case KindScoreMap:
			if key, value, ok := scoreLine(line); ok {
				section.Scores[key] = value
			} else {
				section.Text += line + "\n"
			}
		case KindText:
			section.Text += line + "\n"
		}
		result[current] = section
	}

	return result
}

// headingName recognizes section headings. The bold form switches the
// current section unconditionally, which lets undeclared headings park
// their lines out of the way; the bare form only matches declared names,
// since an arbitrary "word:" line is more likely content than a heading.
func headingName(line string, schema Schema) (string, bool) {
	if strings.HasPrefix(line, "**") && strings.HasSuffix(line, ":**") {
		return line[2 : len(line)-3], true
	}
	if strings.HasSuffix(line, ":") {
		name := line[:len(line)-1]
		if _, ok := schema[name]; ok {
			return name, true
		}
	}
	return "", false
}

// itemMarker returns the numbered-list prefix for the next item after
// count existing ones.
func itemMarker(count int) string {
	return strconv.Itoa(count+1) + "."
}

// scoreLine matches "- key: value" entries.
func scoreLine(line string) (string, string, bool) {
	if !strings.HasPrefix(line, "- ") {
		return "", "", false
	}
	key, value, found := strings.Cut(line[2:], ":")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}
