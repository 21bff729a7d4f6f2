// Package locate maps JSON Pointer paths back to line/column positions in
// raw JSON or JSON5 source text.
//
// Schema validators report failures against the parsed document, which no
// longer carries any position information. [Locate] recovers a position by
// re-tokenizing the original text in a single pass while tracking the
// structural path of every value it passes.
//
// The scanner is a best-effort heuristic rather than a full parser: it
// tolerates malformed input, JSON5 comments, single-quoted strings and
// unquoted keys, and never fails. When a path cannot be found, the document
// origin (1,1) is returned.
//
// # Usage
//
//	pos := locate.Locate(src, "/nodes/3/position")
//	fmt.Printf("%d:%d\n", pos.Line, pos.Column)
//
// Duplicate keys resolve to the first occurrence in scan order.
package locate

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Position is a 1-based line/column location in source text.
// Columns count Unicode code points.
type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Origin is the position reported for the document root and for paths that
// cannot be found.
var Origin = Position{Line: 1, Column: 1}

// IsRoot reports whether pointer addresses the whole document.
func IsRoot(pointer string) bool {
	return pointer == "" || pointer == "/"
}

// Segments splits a JSON Pointer into its unescaped reference tokens.
// "~1" decodes to "/" and "~0" to "~", in that order per RFC 6901.
func Segments(pointer string) []string {
	if IsRoot(pointer) {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	for i, p := range parts {
		parts[i] = unescape(p)
	}
	return parts
}

// Escape encodes a single reference token for use in a JSON Pointer.
func Escape(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	return strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
}

// Pointer joins reference tokens into a JSON Pointer. No tokens yields "/".
func Pointer(tokens ...string) string {
	if len(tokens) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(Escape(t))
	}
	return b.String()
}

func unescape(token string) string {
	if !strings.Contains(token, "~") {
		return token
	}
	return strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
}

// Locate returns the position of the value addressed by pointer in src.
//
// The returned position is the first character of the value (the "1" in
// {"b": 1}), not of its key. If the key is found but its value never
// appears, the key position is returned instead. The root pointer, empty
// input and unknown paths all yield [Origin].
func Locate(src, pointer string) Position {
	if pos, ok := Find(src, pointer); ok {
		return pos
	}
	return Origin
}

// Find is like [Locate] but reports whether the path was actually found.
// The root pointer is never "found".
func Find(src, pointer string) (Position, bool) {
	if IsRoot(pointer) || strings.TrimSpace(src) == "" {
		return Origin, false
	}
	if pos, ok := newScanner(Segments(pointer)).scan(src); ok {
		return pos, true
	}
	return Origin, false
}

// Line returns the trimmed text of the 1-based line n of src, or "" when n is
// out of range.
func Line(src string, n int) string {
	if n < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if n > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[n-1])
}

// =============================================================================
// Scanner
// =============================================================================

type frameKind int

const (
	objectFrame frameKind = iota
	arrayFrame
)

type frame struct {
	kind   frameKind
	key    string // current member key (objects)
	hasKey bool
	index  int // current element index (arrays)
}

type mode int

const (
	modeValue     mode = iota // expecting a value
	modeKey                   // expecting a member key or '}'
	modeColon                 // key read, expecting ':'
	modeAfter                 // value read, expecting ',' or a closing delimiter
	modeString                // inside a string value
	modeKeyString             // inside a quoted key
	modeIdentKey              // inside an unquoted JSON5 key
	modeLiteral               // inside a number, boolean, null or identifier value
)

type scanner struct {
	target []string
	frames []frame
	mode   mode

	quote  rune
	escape bool
	key    strings.Builder

	// \uXXXX escape inside a key: hex digits still expected, digits read
	// so far, and a pending high surrogate.
	hexLeft int
	hex     []rune
	high    rune

	blockComment bool

	keyPos   Position // start of the key being collected
	fallback *Position
}

func newScanner(target []string) *scanner {
	return &scanner{target: target, mode: modeValue}
}

func (s *scanner) scan(src string) (Position, bool) {
	for lineIdx, line := range strings.Split(src, "\n") {
		runes := []rune(line)
	columns:
		for col := 0; col < len(runes); col++ {
			c := runes[col]
			pos := Position{Line: lineIdx + 1, Column: col + 1}

			if s.blockComment {
				if c == '*' && peek(runes, col) == '/' {
					s.blockComment = false
					col++
				}
				continue
			}

			switch s.mode {
			case modeString, modeKeyString:
				s.scanString(c)
				continue
			case modeIdentKey:
				if isIdentPart(c) {
					s.key.WriteRune(c)
					continue
				}
				s.finishKey()
			case modeLiteral:
				if !isLiteralEnd(c) {
					continue
				}
				s.mode = modeAfter
			}

			if c == '/' {
				switch peek(runes, col) {
				case '/':
					break columns
				case '*':
					s.blockComment = true
					col++
					continue
				}
			}
			if unicode.IsSpace(c) {
				continue
			}

			switch s.mode {
			case modeValue:
				if c == ']' || c == '}' {
					s.pop()
					continue
				}
				if s.matches() {
					return pos, true
				}
				s.startValue(c)
			case modeKey:
				switch {
				case c == '}':
					s.pop()
				case c == '"' || c == '\'':
					s.quote = c
					s.keyPos = pos
					s.key.Reset()
					s.mode = modeKeyString
				case isIdentStart(c):
					s.keyPos = pos
					s.key.Reset()
					s.key.WriteRune(c)
					s.mode = modeIdentKey
				}
			case modeColon:
				if c == ':' {
					s.mode = modeValue
				}
			case modeAfter:
				switch c {
				case ',':
					s.next()
				case '}', ']':
					s.pop()
				}
			}
		}

		switch s.mode {
		case modeLiteral:
			s.mode = modeAfter
		case modeIdentKey:
			s.finishKey()
		}
	}

	if s.fallback != nil {
		return *s.fallback, true
	}
	return Position{}, false
}

func (s *scanner) scanString(c rune) {
	inKey := s.mode == modeKeyString
	if s.hexLeft > 0 && c == s.quote {
		s.hexLeft = 0
		s.writeLiteralEscape()
	}
	if s.hexLeft > 0 {
		s.hex = append(s.hex, c)
		s.hexLeft--
		if s.hexLeft == 0 {
			s.writeCodeUnit()
		}
		return
	}
	if s.escape {
		s.escape = false
		if inKey {
			s.keyEscape(c)
		}
		return
	}
	if c == '\\' {
		s.escape = true
		return
	}
	if c == s.quote {
		if inKey {
			s.flushSurrogate()
			s.finishKey()
		} else {
			s.mode = modeAfter
		}
		return
	}
	if inKey {
		s.writeKeyRune(c)
	}
}

// keyEscape decodes the character following a backslash in a key.
func (s *scanner) keyEscape(c rune) {
	switch c {
	case 'u':
		s.hexLeft = 4
		s.hex = s.hex[:0]
		return
	case 'n':
		c = '\n'
	case 't':
		c = '\t'
	case 'r':
		c = '\r'
	case 'b':
		c = '\b'
	case 'f':
		c = '\f'
	case 'v':
		c = '\v'
	case '0':
		c = 0
	}
	s.writeKeyRune(c)
}

// writeCodeUnit appends the UTF-16 code unit collected from a \uXXXX escape,
// pairing surrogates. Malformed escapes are kept literally.
func (s *scanner) writeCodeUnit() {
	if s.mode != modeKeyString {
		return
	}
	n, err := strconv.ParseUint(string(s.hex), 16, 16)
	if err != nil {
		s.writeLiteralEscape()
		return
	}
	r := rune(n)
	switch {
	case s.high != 0 && utf16.IsSurrogate(r) && r >= 0xDC00:
		s.key.WriteRune(utf16.DecodeRune(s.high, r))
		s.high = 0
	case utf16.IsSurrogate(r) && r < 0xDC00:
		s.flushSurrogate()
		s.high = r
	default:
		s.writeKeyRune(r)
	}
}

func (s *scanner) writeLiteralEscape() {
	if s.mode != modeKeyString {
		return
	}
	s.writeKeyRune('u')
	for _, r := range s.hex {
		s.writeKeyRune(r)
	}
}

func (s *scanner) writeKeyRune(c rune) {
	s.flushSurrogate()
	s.key.WriteRune(c)
}

// flushSurrogate writes an unpaired high surrogate as U+FFFD.
func (s *scanner) flushSurrogate() {
	if s.high != 0 {
		s.key.WriteRune(unicode.ReplacementChar)
		s.high = 0
	}
}

func (s *scanner) startValue(c rune) {
	switch c {
	case '{':
		s.frames = append(s.frames, frame{kind: objectFrame})
		s.mode = modeKey
	case '[':
		s.frames = append(s.frames, frame{kind: arrayFrame})
		s.mode = modeValue
	case '"', '\'':
		s.quote = c
		s.mode = modeString
	default:
		s.mode = modeLiteral
	}
}

func (s *scanner) finishKey() {
	s.mode = modeColon
	if len(s.frames) == 0 {
		return
	}
	top := &s.frames[len(s.frames)-1]
	top.key = s.key.String()
	top.hasKey = true
	if s.fallback == nil && s.matches() {
		p := s.keyPos
		s.fallback = &p
	}
}

// next handles a ',' separator.
func (s *scanner) next() {
	if len(s.frames) == 0 {
		return
	}
	top := &s.frames[len(s.frames)-1]
	if top.kind == arrayFrame {
		top.index++
		s.mode = modeValue
		return
	}
	top.hasKey = false
	s.mode = modeKey
}

func (s *scanner) pop() {
	if n := len(s.frames); n > 0 {
		s.frames = s.frames[:n-1]
	}
	s.mode = modeAfter
}

// matches reports whether the current structural path equals the target.
func (s *scanner) matches() bool {
	if len(s.frames) != len(s.target) {
		return false
	}
	for i, f := range s.frames {
		switch f.kind {
		case objectFrame:
			if !f.hasKey || f.key != s.target[i] {
				return false
			}
		case arrayFrame:
			if strconv.Itoa(f.index) != s.target[i] {
				return false
			}
		}
	}
	return true
}

func peek(runes []rune, i int) rune {
	if i+1 < len(runes) {
		return runes[i+1]
	}
	return 0
}

func isIdentStart(c rune) bool {
	return c == '_' || c == '$' || unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || unicode.IsDigit(c)
}

func isLiteralEnd(c rune) bool {
	return c == ',' || c == '}' || c == ']' || c == '/' || unicode.IsSpace(c)
}
