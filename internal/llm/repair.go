package llm

import "strings"

// Repair applies low-risk textual fixes to almost-JSON: single-quoted
// strings become double-quoted, bare object keys get quoted, and trailing
// commas before a closing bracket are dropped. The result is only ever fed
// back into the parser, so a bad guess costs nothing beyond a failed retry.
func Repair(s string) string {
	s = normalizeQuotes(s)
	s = quoteBareKeys(s)
	s = dropTrailingCommas(s)
	return s
}

// normalizeQuotes converts single-quoted string delimiters to double quotes,
// escaping any double quotes found inside such spans. Apostrophes inside
// double-quoted strings are left alone.
func normalizeQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inDouble := false
	inSingle := false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if ch == '\\' && (inDouble || inSingle) && i+1 < len(s) {
			next := s[i+1]
			if inSingle && next == '\'' {
				// \' has no meaning in JSON; keep the bare apostrophe
				b.WriteByte('\'')
			} else {
				b.WriteByte(ch)
				b.WriteByte(next)
			}
			i++
			continue
		}

		switch {
		case ch == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteByte(ch)
		case ch == '"' && inSingle:
			b.WriteString(`\"`)
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
			b.WriteByte('"')
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// quoteBareKeys wraps unquoted object keys in double quotes. A bare key is
// an identifier directly after '{' or ',' that is followed by ':'.
func quoteBareKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	escaped := false
	prev := byte(0) // last significant char outside strings
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			prev = ch
			continue
		}

		if isIdentStart(ch) && (prev == '{' || prev == ',') {
			j := i
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
			k := j
			for k < len(s) && isSpace(s[k]) {
				k++
			}
			if k < len(s) && s[k] == ':' {
				b.WriteByte('"')
				b.WriteString(s[i:j])
				b.WriteByte('"')
				prev = '"'
			} else {
				b.WriteString(s[i:j])
				prev = s[j-1]
			}
			i = j - 1
			continue
		}

		b.WriteByte(ch)
		if !isSpace(ch) {
			prev = ch
		}
	}
	return b.String()
}

// dropTrailingCommas removes commas directly preceding ']' or '}'.
func dropTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == ']' || s[j] == '}') {
				continue // drop the comma, keep the whitespace
			}
		}

		b.WriteByte(ch)
	}
	return b.String()
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
