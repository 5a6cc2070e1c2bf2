package jsonparser

// FixJSON repairs a possibly-truncated JSON text into the longest prefix that
// can be closed into syntactically valid JSON. It implements the repair
// rules for partial JSON:
//   - open containers are closed in the correct nesting order
//   - a trailing incomplete object key, or a key without a following value,
//     is dropped entirely
//   - a trailing incomplete array element is dropped unless it is already a
//     meaningful partial value (an in-progress string, or a container)
//   - an unterminated string value is truncated at its last complete
//     character and closed, never reopened
//   - a dangling comma, and a key without a value, are discarded
//   - an in-progress number ("123.", "-") is dropped as not-yet-present
//   - true/false/null are only accepted once their token is complete
//
// Returns "" if the text cannot plausibly be a prefix of any JSON value.
func FixJSON(jsonText string) string {
	if jsonText == "" {
		return ""
	}
	f := &fixer{src: jsonText}
	repaired, ok := f.parseValue(0)
	if !ok {
		return ""
	}
	return repaired
}

type fixer struct {
	src string
}

func (f *fixer) skipWS(i int) int {
	for i < len(f.src) {
		switch f.src[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parseValue parses one JSON value starting at pos (leading whitespace is
// skipped). ok is false only when no value can plausibly start at pos.
func (f *fixer) parseValue(pos int) (repaired string, ok bool) {
	pos = f.skipWS(pos)
	if pos >= len(f.src) {
		return "", false
	}
	switch c := f.src[pos]; {
	case c == '"':
		return f.parseStringValue(pos)
	case c == '{':
		return f.parseObject(pos)
	case c == '[':
		return f.parseArray(pos)
	case c == 't' || c == 'f' || c == 'n':
		return f.parseLiteral(pos)
	case c == '-' || isDigit(c):
		return f.parseNumber(pos)
	default:
		return "", false
	}
}

// parseStringValue parses a string appearing in value position. An
// unterminated string is truncated at the last complete character and
// closed — it is always a meaningful partial value.
func (f *fixer) parseStringValue(pos int) (string, bool) {
	i := pos + 1
	for i < len(f.src) {
		switch f.src[i] {
		case '\\':
			if i+1 < len(f.src) {
				i += 2
				continue
			}
			// dangling escape at end of buffer: drop it, close here
			return f.src[pos:i] + `"`, true
		case '"':
			return f.src[pos : i+1], true
		}
		i++
	}
	// unterminated: close without reopening
	return f.src[pos:i] + `"`, true
}

// parseStringStrict parses a string that must be fully terminated within the
// buffer. Used for object keys: an incomplete key is never a meaningful
// partial value, so it must be dropped rather than truncated.
func (f *fixer) parseStringStrict(pos int) (string, bool) {
	i := pos + 1
	for i < len(f.src) {
		switch f.src[i] {
		case '\\':
			if i+1 < len(f.src) {
				i += 2
				continue
			}
			return "", false
		case '"':
			return f.src[pos : i+1], true
		}
		i++
	}
	return "", false
}

// parseNumber consumes the longest complete-number prefix at pos per the
// JSON number grammar. An in-progress fraction/exponent with no digits yet
// ("123.", "1e") is not included; if no digits exist at all ("-" alone),
// ok is false.
func (f *fixer) parseNumber(pos int) (string, bool) {
	i := pos
	n := len(f.src)
	if i < n && f.src[i] == '-' {
		i++
	}
	digitsStart := i
	for i < n && isDigit(f.src[i]) {
		i++
	}
	if i == digitsStart {
		return "", false
	}
	complete := i

	if i < n && f.src[i] == '.' {
		j := i + 1
		k := j
		for k < n && isDigit(f.src[k]) {
			k++
		}
		if k > j {
			i = k
			complete = i
		}
	}

	if i < n && (f.src[i] == 'e' || f.src[i] == 'E') {
		j := i + 1
		if j < n && (f.src[j] == '+' || f.src[j] == '-') {
			j++
		}
		k := j
		for k < n && isDigit(f.src[k]) {
			k++
		}
		if k > j {
			complete = k
		}
	}

	return f.src[pos:complete], true
}

// parseLiteral accepts true/false/null only once the full token is present.
func (f *fixer) parseLiteral(pos int) (string, bool) {
	for _, lit := range [...]string{"true", "false", "null"} {
		end := pos + len(lit)
		if end <= len(f.src) && f.src[pos:end] == lit {
			return lit, true
		}
	}
	return "", false
}

// parseObject parses an object, closing it regardless of how much content
// was seen. A trailing incomplete key, a key without a value, or a dangling
// comma causes that pending member to be dropped rather than the whole
// object failing.
func (f *fixer) parseObject(pos int) (string, bool) {
	var out []byte
	out = append(out, '{')
	i := f.skipWS(pos + 1)
	first := true

	for {
		if i >= len(f.src) {
			break
		}
		if f.src[i] == '}' {
			break
		}
		if !first {
			if f.src[i] != ',' {
				break
			}
			i = f.skipWS(i + 1)
			if i >= len(f.src) || f.src[i] == '}' {
				break // dangling trailing comma: drop it
			}
		}
		if i >= len(f.src) || f.src[i] != '"' {
			break // no key here: drop the rest
		}
		key, kok := f.parseStringStrict(i)
		if !kok {
			break // incomplete key: drop
		}
		j := f.skipWS(i + len(key))
		if j >= len(f.src) || f.src[j] != ':' {
			break // key without colon: drop the pending pair
		}
		j = f.skipWS(j + 1)
		val, vok := f.parseValue(j)
		if !vok {
			break // key without value: drop the pending pair
		}

		if !first {
			out = append(out, ',')
		}
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, val...)
		first = false

		i = f.skipWS(j + len(val))
	}

	out = append(out, '}')
	return string(out), true
}

// parseArray parses an array, closing it regardless of how much content was
// seen. A trailing element that isn't yet a meaningful partial value (an
// in-progress number or literal) is dropped; a dangling trailing comma is
// discarded.
func (f *fixer) parseArray(pos int) (string, bool) {
	var out []byte
	out = append(out, '[')
	i := f.skipWS(pos + 1)
	first := true

	for {
		if i >= len(f.src) {
			break
		}
		if f.src[i] == ']' {
			break
		}
		if !first {
			if f.src[i] != ',' {
				break
			}
			i = f.skipWS(i + 1)
			if i >= len(f.src) {
				break // dangling trailing comma: drop it
			}
		}
		val, vok := f.parseValue(i)
		if !vok {
			break // not yet a meaningful partial value: drop it
		}

		if !first {
			out = append(out, ',')
		}
		out = append(out, val...)
		first = false

		i = f.skipWS(i + len(val))
	}

	out = append(out, ']')
	return string(out), true
}
