package query

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// literalObject is a parsed object literal with key order preserved, so the
// synthesized filter renders clauses in the order the model produced them.
type literalObject struct {
	keys []string
	vals map[string]any
}

func (o *literalObject) set(key string, v any) {
	if o.vals == nil {
		o.vals = make(map[string]any)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// stripCodeFence removes markdown code-fence decoration (``` or ```lang) that
// models habitually wrap structured replies in.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "" || isFenceTag(first) {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// parseLiteral parses a constrained object-literal subset: objects, arrays,
// single- or double-quoted strings, numbers, booleans and null (Python
// spellings True/False/None included). Anything resembling executable syntax,
// identifiers or calls, is rejected. The input must be exactly one object.
func parseLiteral(s string) (*literalObject, error) {
	p := &literalParser{src: s}
	p.skipSpace()
	obj, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing content after object")
	}
	return obj, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("literal parse at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *literalParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *literalParser) expect(c byte) error {
	got, ok := p.peek()
	if !ok {
		return p.errorf("unexpected end of input, want %q", string(c))
	}
	if got != c {
		return p.errorf("unexpected %q, want %q", string(got), string(c))
	}
	p.pos++
	return nil
}

func (p *literalParser) parseObject() (*literalObject, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	obj := &literalObject{vals: make(map[string]any)}
	p.skipSpace()
	if c, ok := p.peek(); ok && c == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unexpected end of input in object")
		}
		if c != '"' && c != '\'' {
			return nil, p.errorf("object keys must be quoted strings")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.set(key, val)

		p.skipSpace()
		c, ok = p.peek()
		if !ok {
			return nil, p.errorf("unexpected end of input in object")
		}
		switch c {
		case ',':
			p.pos++
			p.skipSpace()
			// Tolerate a trailing comma before the closing brace.
			if c2, ok2 := p.peek(); ok2 && c2 == '}' {
				p.pos++
				return obj, nil
			}
		case '}':
			p.pos++
			return obj, nil
		default:
			return nil, p.errorf("unexpected %q in object", string(c))
		}
	}
}

func (p *literalParser) parseArray() ([]any, error) {
	if err := p.expect('['); err != nil {
		return nil, err
	}
	out := []any{}
	p.skipSpace()
	if c, ok := p.peek(); ok && c == ']' {
		p.pos++
		return out, nil
	}
	for {
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, val)

		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, p.errorf("unexpected end of input in array")
		}
		switch c {
		case ',':
			p.pos++
			p.skipSpace()
			if c2, ok2 := p.peek(); ok2 && c2 == ']' {
				p.pos++
				return out, nil
			}
		case ']':
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("unexpected %q in array", string(c))
		}
	}
}

func (p *literalParser) parseValue() (any, error) {
	c, ok := p.peek()
	if !ok {
		return nil, p.errorf("unexpected end of input")
	}
	switch {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"' || c == '\'':
		return p.parseString()
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return p.parseWord()
	}
}

func (p *literalParser) parseString() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}
			e := p.src[p.pos]
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"', '/':
				b.WriteByte(e)
			case 'u':
				if p.pos+4 >= len(p.src) {
					return "", p.errorf("truncated unicode escape")
				}
				n, err := strconv.ParseUint(p.src[p.pos+1:p.pos+5], 16, 32)
				if err != nil {
					return "", p.errorf("bad unicode escape")
				}
				b.WriteRune(rune(n))
				p.pos += 4
			default:
				return "", p.errorf("unsupported escape %q", string(e))
			}
			p.pos++
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *literalParser) parseNumber() (any, error) {
	start := p.pos
	if c, ok := p.peek(); ok && c == '-' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			isFloat = true
			p.pos++
			continue
		}
		break
	}
	tok := p.src[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, p.errorf("bad number %q", tok)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(tok, 64)
		if ferr != nil {
			return nil, p.errorf("bad number %q", tok)
		}
		return f, nil
	}
	return float64(n), nil
}

// parseWord accepts only the boolean and null keywords; any other bare word
// (identifiers, function calls, expressions) is a parse error.
func (p *literalParser) parseWord() (any, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			p.pos++
			continue
		}
		break
	}
	switch p.src[start:p.pos] {
	case "true", "True":
		return true, nil
	case "false", "False":
		return false, nil
	case "null", "None":
		return nil, nil
	}
	p.pos = start
	return nil, p.errorf("unexpected token")
}
