package genai

import "strings"

// Model responses are asked to contain a bracketed list of quoted strings,
// but come back as free-form text, frequently wrapped in a fenced code block.
// The extractor here never errors: a malformed response simply yields no
// lists, and the caller decides how severe that is.

// StringList extracts the first well-formed list of quoted strings from a raw
// model response. The second return is false when no such list exists.
func StringList(raw string) ([]string, bool) {
	lists := StringLists(raw, 1)
	if len(lists) == 0 {
		return nil, false
	}
	return lists[0], true
}

// StringLists extracts up to limit well-formed string lists from a raw model
// response, in order of appearance. limit <= 0 means no cap.
func StringLists(raw string, limit int) [][]string {
	s := stripFences(raw)

	var found [][]string
	i := 0
	for i < len(s) {
		if s[i] != '[' {
			i++
			continue
		}
		end, ok := balancedSpan(s, i)
		if !ok {
			// Unterminated bracket; nothing well-formed remains.
			break
		}
		if list, ok := parseStringList(s[i : end+1]); ok {
			found = append(found, list)
			if limit > 0 && len(found) >= limit {
				break
			}
		}
		i = end + 1
	}
	return found
}

// stripFences removes leading/trailing markdown code-fence markers.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// balancedSpan finds the index of the ] that closes the [ at start, counting
// bracket depth but ignoring brackets inside quoted strings.
func balancedSpan(s string, start int) (int, bool) {
	depth := 0
	var quote byte
	escaped := false
	for j := start; j < len(s); j++ {
		c := s[j]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return 0, false
}

// parseStringList parses a bracketed span as a literal list of single- or
// double-quoted strings. Anything else in the span makes it fail.
func parseStringList(s string) ([]string, bool) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}
	inner := s[1 : len(s)-1]
	items := []string{}

	i := 0
	skipSpace := func() {
		for i < len(inner) && (inner[i] == ' ' || inner[i] == '\t' || inner[i] == '\n' || inner[i] == '\r') {
			i++
		}
	}

	skipSpace()
	for i < len(inner) {
		quote := inner[i]
		if quote != '\'' && quote != '"' {
			return nil, false
		}
		i++
		var sb strings.Builder
		closed := false
		for i < len(inner) {
			c := inner[i]
			if c == '\\' && i+1 < len(inner) {
				sb.WriteByte(unescape(inner[i+1]))
				i += 2
				continue
			}
			if c == quote {
				closed = true
				i++
				break
			}
			sb.WriteByte(c)
			i++
		}
		if !closed {
			return nil, false
		}
		items = append(items, sb.String())

		skipSpace()
		if i < len(inner) {
			if inner[i] != ',' {
				return nil, false
			}
			i++
			skipSpace()
		}
	}
	return items, true
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}
