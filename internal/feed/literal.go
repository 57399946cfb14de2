package feed

import (
	"fmt"
	"strings"

	"github.com/titanous/json5"

	"github.com/JakeFAU/menufetcher/internal/menu"
)

// Assignment is one top-level `name = literal` statement of a feed script.
type Assignment struct {
	Name    string
	Literal string
}

// Assignments splits a script made only of top-level literal assignments
// (`var|let|const name = literal;`). Comments are allowed between tokens. Call
// syntax, template literals and anything that is not a JSON5 literal are
// rejected; nothing is evaluated. Integer property names may be unquoted.
func Assignments(src string) ([]Assignment, error) {
	s := &scanner{src: src}
	var out []Assignment
	for {
		if err := s.skipTrivia(); err != nil {
			return nil, err
		}
		if s.done() {
			return out, nil
		}
		if s.peek() == ';' {
			s.pos++
			continue
		}
		a, err := s.assignment()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte { return s.src[s.pos] }

func (s *scanner) errorf(format string, args ...any) error {
	line := 1 + strings.Count(s.src[:min(s.pos, len(s.src))], "\n")
	return fmt.Errorf("%w: feed script line %d: %s", menu.ErrMalformedSource, line, fmt.Sprintf(format, args...))
}

func (s *scanner) assignment() (Assignment, error) {
	name := s.identifier()
	switch name {
	case "var", "let", "const":
		if err := s.skipTrivia(); err != nil {
			return Assignment{}, err
		}
		name = s.identifier()
	}
	if name == "" {
		return Assignment{}, s.errorf("expected an assignment")
	}
	if err := s.skipTrivia(); err != nil {
		return Assignment{}, err
	}
	if s.done() || s.peek() != '=' {
		return Assignment{}, s.errorf("expected '=' after %s", name)
	}
	s.pos++
	if err := s.skipTrivia(); err != nil {
		return Assignment{}, err
	}

	literal, err := s.literal()
	if err != nil {
		return Assignment{}, err
	}
	if literal == "" {
		return Assignment{}, s.errorf("%s has no value", name)
	}
	var parsed any
	if err := json5.Unmarshal([]byte(literal), &parsed); err != nil {
		return Assignment{}, fmt.Errorf("%w: %s is not a literal: %w", menu.ErrMalformedSource, name, err)
	}
	return Assignment{Name: name, Literal: literal}, nil
}

func (s *scanner) identifier() string {
	start := s.pos
	for !s.done() {
		c := s.peek()
		if c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || s.pos > start && c >= '0' && c <= '9' {
			s.pos++
			continue
		}
		break
	}
	return s.src[start:s.pos]
}

// skipTrivia moves past whitespace and comments.
func (s *scanner) skipTrivia() error {
	for !s.done() {
		switch {
		case strings.ContainsRune(" \t\r\n\f\v", rune(s.peek())):
			s.pos++
		case strings.HasPrefix(s.src[s.pos:], "//"):
			end := strings.IndexByte(s.src[s.pos:], '\n')
			if end < 0 {
				s.pos = len(s.src)
				return nil
			}
			s.pos += end + 1
		case strings.HasPrefix(s.src[s.pos:], "/*"):
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				return s.errorf("unterminated comment")
			}
			s.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

// literal consumes the value of an assignment, returning its source text. It
// ends at a semicolon or line break outside any bracket, or at end of input.
// Unquoted integer property names are quoted so the text decodes as JSON5.
func (s *scanner) literal() (string, error) {
	start := s.pos
	depth := 0
	var keys [][2]int
	var last byte
	for !s.done() {
		c := s.peek()
		switch {
		case c == '"' || c == '\'':
			if err := s.skipString(c); err != nil {
				return "", err
			}
			last = c
			continue
		case c == '`':
			return "", s.errorf("template literals are not supported")
		case c == '(' || c == ')':
			return "", s.errorf("call syntax is not supported")
		case strings.HasPrefix(s.src[s.pos:], "//") || strings.HasPrefix(s.src[s.pos:], "/*"):
			if depth == 0 {
				return quoteKeys(s.src, start, s.pos, keys), nil
			}
			if err := s.skipTrivia(); err != nil {
				return "", err
			}
			continue
		case c >= '0' && c <= '9' && (last == '{' || last == ','):
			if end, ok := s.integerKey(); ok {
				keys = append(keys, [2]int{s.pos, end})
				s.pos = end
				last = '0'
				continue
			}
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth < 0 {
				return "", s.errorf("unbalanced %q", c)
			}
		case depth == 0 && (c == ';' || c == '\n'):
			text := quoteKeys(s.src, start, s.pos, keys)
			s.pos++
			return text, nil
		}
		if !strings.ContainsRune(" \t\r\n\f\v", rune(c)) {
			last = c
		}
		s.pos++
	}
	if depth != 0 {
		return "", s.errorf("unterminated literal")
	}
	return quoteKeys(s.src, start, len(s.src), keys), nil
}

// integerKey reports whether a run of digits at the cursor is a property name,
// returning the offset just past it.
func (s *scanner) integerKey() (int, bool) {
	end := s.pos
	for end < len(s.src) && s.src[end] >= '0' && s.src[end] <= '9' {
		end++
	}
	next := end
	for next < len(s.src) && strings.ContainsRune(" \t\r\n\f\v", rune(s.src[next])) {
		next++
	}
	return end, next < len(s.src) && s.src[next] == ':'
}

func quoteKeys(src string, start, end int, keys [][2]int) string {
	var b strings.Builder
	prev := start
	for _, k := range keys {
		b.WriteString(src[prev:k[0]])
		b.WriteByte('"')
		b.WriteString(src[k[0]:k[1]])
		b.WriteByte('"')
		prev = k[1]
	}
	b.WriteString(src[prev:end])
	return strings.TrimSpace(b.String())
}

func (s *scanner) skipString(quote byte) error {
	s.pos++
	for !s.done() {
		switch s.peek() {
		case '\\':
			s.pos += 2
			continue
		case quote:
			s.pos++
			return nil
		case '\n':
			return s.errorf("unterminated string")
		}
		s.pos++
	}
	return s.errorf("unterminated string")
}
