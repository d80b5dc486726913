package selector

import (
	"fmt"
	"strings"

	"github.com/joshuapare/mcpkit/pkg/types"
)

// separator is the one character wildcards never cross. Entry names that
// use it ("team/api-1") keep their segments addressable.
const separator = '/'

// Pattern is a compiled selector. The zero value is unusable; build one
// with Compile.
type Pattern struct {
	src      string
	branches [][]token
	literal  bool
}

type tokKind uint8

const (
	tokLiteral tokKind = iota
	tokStar
	tokOne
	tokClass
)

type token struct {
	kind  tokKind
	lit   []rune
	class *charClass
}

type charClass struct {
	negated bool
	ranges  []runeRange
}

type runeRange struct{ lo, hi rune }

func (c *charClass) matches(r rune) bool {
	in := false
	for _, rr := range c.ranges {
		if r >= rr.lo && r <= rr.hi {
			in = true
			break
		}
	}
	if c.negated {
		// A negated set still never matches the separator.
		return !in && r != separator
	}
	return in
}

// Compile parses src into a Pattern. Malformed syntax (unterminated class
// or alternation, nested alternation, reversed range, trailing escape)
// reports a pattern error.
func Compile(src string) (*Pattern, error) {
	alts, err := expandAlternation(src)
	if err != nil {
		return nil, err
	}
	p := &Pattern{src: src, literal: true}
	if len(alts) > 1 {
		p.literal = false
	}
	for _, alt := range alts {
		toks, lit, err := tokenize(src, alt)
		if err != nil {
			return nil, err
		}
		if !lit {
			p.literal = false
		}
		p.branches = append(p.branches, toks)
	}
	return p, nil
}

// String returns the selector source the pattern was compiled from.
func (p *Pattern) String() string { return p.src }

// IsLiteral reports whether the selector carries no wildcard syntax, i.e.
// it can only ever match one exact name.
func (p *Pattern) IsLiteral() bool { return p.literal }

// Match reports whether the pattern matches name. Alternatives are tried
// in listed order; the first that matches wins.
func (p *Pattern) Match(name string) bool {
	runes := []rune(name)
	for _, br := range p.branches {
		if matchHere(br, runes) {
			return true
		}
	}
	return false
}

// Select returns the subset of names matching p, preserving input order.
// Every name is tested; a zero-length result is a valid outcome.
func (p *Pattern) Select(names []string) []string {
	out := []string{}
	for _, n := range names {
		if p.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Match compiles src and resolves it against names in one call, returning
// matches in the order of names.
func Match(names []string, src string) ([]string, error) {
	p, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return p.Select(names), nil
}

func patternErr(src, format string, args ...any) error {
	return &types.Error{
		Kind: types.ErrKindPattern,
		Msg:  fmt.Sprintf("selector %q: %s", src, fmt.Sprintf(format, args...)),
	}
}

// expandAlternation rewrites "a-{x,y}-*" into ["a-x-*", "a-y-*"]. Multiple
// groups multiply out left to right, so listed order is preserved. The scan
// is class-aware: braces and commas inside [...] are literal.
func expandAlternation(src string) ([]string, error) {
	open := -1
	depth := 0
	inClass := false
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '{':
			if inClass {
				continue
			}
			if depth == 1 {
				return nil, patternErr(src, "nested alternation")
			}
			depth = 1
			open = i
		case '}':
			if inClass {
				continue
			}
			if depth == 0 {
				continue // unmatched close brace is literal
			}
			// Expand this group, then recurse on each rewritten string so
			// later groups expand too.
			var out []string
			prefix, suffix := src[:open], src[i+1:]
			for _, alt := range splitAlternatives(src[open+1 : i]) {
				sub, err := expandAlternation(prefix + alt + suffix)
				if err != nil {
					return nil, err
				}
				out = append(out, sub...)
			}
			return out, nil
		case ',':
			// literal outside a group
		}
	}
	if depth != 0 {
		return nil, patternErr(src, "unterminated alternation")
	}
	return []string{src}, nil
}

// splitAlternatives splits the body of a {} group on commas, honoring
// escapes and character classes.
func splitAlternatives(body string) []string {
	var alts []string
	var cur strings.Builder
	inClass := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			cur.WriteByte(c)
			i++
			cur.WriteByte(body[i])
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == ',' && !inClass:
			alts = append(alts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	alts = append(alts, cur.String())
	return alts
}

// tokenize compiles one alternation branch. Adjacent stars collapse.
func tokenize(src, branch string) ([]token, bool, error) {
	var toks []token
	var lit []rune
	literal := true

	flushLit := func() {
		if len(lit) > 0 {
			toks = append(toks, token{kind: tokLiteral, lit: lit})
			lit = nil
		}
	}

	runes := []rune(branch)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '\\':
			if i+1 >= len(runes) {
				return nil, false, patternErr(src, "trailing escape")
			}
			i++
			lit = append(lit, runes[i])
		case '*':
			literal = false
			flushLit()
			if len(toks) == 0 || toks[len(toks)-1].kind != tokStar {
				toks = append(toks, token{kind: tokStar})
			}
		case '?':
			literal = false
			flushLit()
			toks = append(toks, token{kind: tokOne})
		case '[':
			literal = false
			flushLit()
			class, consumed, err := parseClass(src, runes[i+1:])
			if err != nil {
				return nil, false, err
			}
			toks = append(toks, token{kind: tokClass, class: class})
			i += consumed
		default:
			lit = append(lit, r)
		}
	}
	flushLit()
	return toks, literal, nil
}

// parseClass parses a character class body (after the '['), returning the
// class and the number of runes consumed including the closing bracket.
func parseClass(src string, rest []rune) (*charClass, int, error) {
	c := &charClass{}
	i := 0
	if i < len(rest) && rest[i] == '!' {
		c.negated = true
		i++
	}
	for {
		if i >= len(rest) {
			return nil, 0, patternErr(src, "unterminated character class")
		}
		if rest[i] == ']' && len(c.ranges) > 0 {
			return c, i + 1, nil
		}
		lo := rest[i]
		if lo == '\\' {
			i++
			if i >= len(rest) {
				return nil, 0, patternErr(src, "trailing escape in character class")
			}
			lo = rest[i]
		}
		i++
		hi := lo
		if i+1 < len(rest) && rest[i] == '-' && rest[i+1] != ']' {
			i++
			hi = rest[i]
			if hi == '\\' {
				i++
				if i >= len(rest) {
					return nil, 0, patternErr(src, "trailing escape in character class")
				}
				hi = rest[i]
			}
			i++
			if hi < lo {
				return nil, 0, patternErr(src, "reversed range %c-%c in character class", lo, hi)
			}
		}
		c.ranges = append(c.ranges, runeRange{lo: lo, hi: hi})
	}
}

func matchHere(toks []token, r []rune) bool {
	if len(toks) == 0 {
		return len(r) == 0
	}
	t := toks[0]
	switch t.kind {
	case tokLiteral:
		if len(r) < len(t.lit) {
			return false
		}
		for i, c := range t.lit {
			if r[i] != c {
				return false
			}
		}
		return matchHere(toks[1:], r[len(t.lit):])
	case tokOne:
		if len(r) == 0 || r[0] == separator {
			return false
		}
		return matchHere(toks[1:], r[1:])
	case tokClass:
		if len(r) == 0 || !t.class.matches(r[0]) {
			return false
		}
		return matchHere(toks[1:], r[1:])
	case tokStar:
		for i := 0; ; i++ {
			if matchHere(toks[1:], r[i:]) {
				return true
			}
			if i == len(r) || r[i] == separator {
				return false
			}
		}
	}
	return false
}
