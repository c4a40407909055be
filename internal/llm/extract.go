package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// thinkingTags are the wrapper tag pairs reasoning models emit around their
// deliberation. Everything up to and including the closing tag is noise.
// "<thinking>" must precede "<think>" so the substring check does not split
// the longer tag in half.
var thinkingTags = [][2]string{
	{"<reasoning>", "</reasoning>"},
	{"<thinking>", "</thinking>"},
	{"<think>", "</think>"},
	{"<rationale>", "</rationale>"},
	{"<analysis>", "</analysis>"},
	{"<reflection>", "</reflection>"},
	{"<thought>", "</thought>"},
	{"<internal>", "</internal>"},
	{"<deliberation>", "</deliberation>"},
}

// trailingMarkers end the useful part of a response. Anything after the
// first occurrence is discarded.
var trailingMarkers = []string{"<sep>", "<end>", "<eos>", "<stop>", "```"}

// ExtractJSON recovers a structured value (JSON object or array) from a raw
// generator response. The response may wrap its answer in reasoning tags,
// markdown fences or prose; recovery strategies run in a fixed order and the
// first that yields valid JSON wins:
//
//  1. strip reasoning-tag blocks
//  2. strip markdown code fences
//  3. cut at trailing sentinel markers
//  4. parse the substring between the outermost brackets
//  5. parse the whole remaining text
//  6. repair common syntax damage (single quotes, trailing commas, bare
//     keys) and parse once more
//
// When every strategy fails it returns a *ParseError carrying both the
// original and the last-transformed text. An empty JSON array is a valid
// result, not an error.
func ExtractJSON(raw string) (any, error) {
	text := stripReasoning(raw)
	text = stripFences(text)
	text = stripTrailing(text)
	text = strings.TrimSpace(text)

	var lastErr error
	last := text
	for _, candidate := range candidateSlices(text) {
		v, err := decode(candidate)
		if err == nil {
			return v, nil
		}
		lastErr = err
		last = candidate

		repaired := Repair(candidate)
		if repaired == candidate {
			continue
		}
		last = repaired
		v, err = decode(repaired)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}

	return nil, &ParseError{Raw: raw, Cleaned: last, Err: lastErr}
}

// stripReasoning removes reasoning-tag blocks. When both tags are present
// everything up to the last closing tag goes; with only an opening tag the
// text after it is kept.
func stripReasoning(text string) string {
	for _, pair := range thinkingTags {
		open, close := pair[0], pair[1]
		if strings.Contains(text, close) {
			parts := strings.Split(text, close)
			text = strings.TrimSpace(parts[len(parts)-1])
		} else if idx := strings.Index(text, open); idx != -1 {
			text = strings.TrimSpace(text[idx+len(open):])
		}
	}
	return text
}

// stripFences extracts the content of the first fenced code block, tolerating
// a language tag after the opening fence and a missing closing fence.
func stripFences(text string) string {
	open := strings.Index(text, "```")
	if open == -1 {
		return text
	}

	content := text[open+3:]

	// Drop a language tag ("json", "yaml", ...) occupying the rest of the
	// opening line.
	if nl := strings.IndexByte(content, '\n'); nl != -1 {
		firstLine := strings.TrimSpace(content[:nl])
		if firstLine != "" && isLanguageTag(firstLine) {
			content = content[nl+1:]
		}
	}

	if close := strings.Index(content, "```"); close != -1 {
		content = content[:close]
	}
	return strings.TrimSpace(content)
}

func isLanguageTag(s string) bool {
	if len(s) > 16 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// stripTrailing cuts the text at the earliest trailing sentinel marker.
func stripTrailing(text string) string {
	cut := len(text)
	for _, marker := range trailingMarkers {
		if idx := strings.Index(text, marker); idx != -1 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(text[:cut])
}

// candidateSlices lists the substrings to attempt parsing, most specific
// first: the outermost bracketed span (array or object, whichever opens
// first), then the other kind, then the whole text.
func candidateSlices(text string) []string {
	type span struct {
		open  int
		slice string
	}
	var spans []span

	if s, at, ok := bracketSlice(text, '[', ']'); ok {
		spans = append(spans, span{at, s})
	}
	if s, at, ok := bracketSlice(text, '{', '}'); ok {
		spans = append(spans, span{at, s})
	}
	if len(spans) == 2 && spans[1].open < spans[0].open {
		spans[0], spans[1] = spans[1], spans[0]
	}

	var out []string
	seen := make(map[string]bool)
	for _, sp := range spans {
		if !seen[sp.slice] {
			seen[sp.slice] = true
			out = append(out, sp.slice)
		}
	}
	if !seen[text] {
		out = append(out, text)
	}
	return out
}

// bracketSlice returns the substring from the first open bracket to the last
// matching close bracket, along with the open position.
func bracketSlice(text string, open, close byte) (string, int, bool) {
	start := strings.IndexByte(text, open)
	if start == -1 {
		return "", 0, false
	}
	end := strings.LastIndexByte(text, close)
	if end <= start {
		return "", 0, false
	}
	return text[start : end+1], start, true
}

// decode parses s as a single JSON object or array, rejecting trailing
// garbage and scalar top-level values.
func decode(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty text")
	}

	dec := json.NewDecoder(strings.NewReader(s))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}

	switch v.(type) {
	case map[string]any, []any:
		return v, nil
	}
	return nil, fmt.Errorf("top-level value is not an object or array")
}
