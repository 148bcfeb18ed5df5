package constraint

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	log "github.com/golang/glog"
)

// Vocabulary resolves surface words to ids, *corpus.Lexicon satisfies it
type Vocabulary interface {
	Id(word string) (uint32, bool)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokLink
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// link names, longest first so XML is not read as ML
var linkNames = []string{"XML", "XCL", "XIL", "ISL", "ML", "CL", "IL"}

func isWordRune(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'z')
}

func tokenize(text string) ([]token, error) {
	var toks []token
	for i := 0; i < len(text); {
		r := rune(text[i])
		switch {
		case unicode.IsSpace(r):
			i += 1
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i += 1
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i += 1
		case r == '&':
			toks = append(toks, token{tokAnd, "&", i})
			i += 1
		case r == '|':
			toks = append(toks, token{tokOr, "|", i})
			i += 1
		case r == ',':
			toks = append(toks, token{tokComma, ",", i})
			i += 1
		case r == '"':
			end := strings.IndexByte(text[i+1:], '"')
			if end <= 0 {
				return nil, fmt.Errorf("%w: unterminated or empty string at %d", ErrSyntax, i)
			}
			toks = append(toks, token{tokWord, text[i+1 : i+1+end], i})
			i += end + 2
		case isWordRune(r):
			j := i
			for j < len(text) && isWordRune(rune(text[j])) {
				j += 1
			}
			toks = append(toks, token{tokWord, text[i:j], i})
			i = j
		default:
			name := ""
			for _, l := range linkNames {
				if strings.HasPrefix(text[i:], l) {
					name = l
					break
				}
			}
			if name == "" {
				return nil, fmt.Errorf("%w: illegal character %q at %d", ErrSyntax, r, i)
			}
			toks = append(toks, token{tokLink, name, i})
			i += len(name)
		}
	}
	return append(toks, token{tokEOF, "EOF", len(text)}), nil
}

// parser is a recursive descent parser of
//
//	expr   := term ('|' term)*
//	term   := factor ('&' factor)*
//	factor := '(' expr ')' | LINK '(' word (',' word)* ')'
//
// so '&' binds tighter than '|'
type parser struct {
	toks   []token
	pos    int
	vocab  Vocabulary
	shrink bool
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos += 1
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("%w at %q (offset %d)", ErrSyntax, t.text, t.pos)
	}
	return t, nil
}

func (p *parser) combine(d DNF) DNF {
	if p.shrink {
		return d.Shrink()
	}
	return d
}

func (p *parser) expr() (DNF, error) {
	d, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		o, err := p.term()
		if err != nil {
			return nil, err
		}
		d = p.combine(d.Or(o))
	}
	return d, nil
}

func (p *parser) term() (DNF, error) {
	d, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		o, err := p.factor()
		if err != nil {
			return nil, err
		}
		d = p.combine(d.And(o))
	}
	return d, nil
}

func (p *parser) factor() (DNF, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		d, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return d, nil
	case tokLink:
		if _, err := p.expect(tokLParen); err != nil {
			return nil, err
		}
		words, err := p.words()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return linkDNF(t.text, words)
	default:
		return nil, fmt.Errorf("%w at %q (offset %d)", ErrSyntax, t.text, t.pos)
	}
}

func (p *parser) words() ([]uint32, error) {
	var ids []uint32
	for {
		t, err := p.expect(tokWord)
		if err != nil {
			return nil, err
		}
		id, err := p.resolve(t.text)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		if p.peek().kind != tokComma {
			return ids, nil
		}
		p.next()
	}
}

func (p *parser) resolve(word string) (uint32, error) {
	if p.vocab != nil {
		id, ok := p.vocab.Id(word)
		if !ok {
			return 0, fmt.Errorf("%w: unknown word %q", ErrBadWordID, word)
		}
		return id, nil
	}
	id, err := strconv.ParseUint(word, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a word id", ErrBadWordID, word)
	}
	return uint32(id), nil
}

func single(c *Conj) DNF { return DNF{c} }

func epConj(words []uint32) (*Conj, error) {
	c := NewConj()
	if err := c.AddEp(words); err != nil {
		return nil, err
	}
	return c, nil
}

func npConj(words ...uint32) *Conj {
	c := NewConj()
	for _, w := range words {
		c.AddNp(w)
	}
	return c
}

// linkDNF translates one link into primitives:
//
//	ML(A,B)      = Ep(A,B)
//	CL(A,B)      = Np(A) | Np(B)
//	IL(A,B)      = Ep(A,B) | Np(A)
//	ISL(A,B,..)  = Np(A) & Np(B) & ..
//	XML(A,B,..)  = Ep(A,B,..)
//	XCL(A,B,..)  = Np(A) | Np(B) | ..
//	XIL(A,..,Y)  = Ep(A,..,Y) | Np(A) | .. (all but Y)
func linkDNF(link string, words []uint32) (DNF, error) {
	arity := func(ok bool) error {
		if !ok {
			return fmt.Errorf("%w: %s does not take %d words", ErrSyntax, link, len(words))
		}
		return nil
	}
	switch link {
	case "ML", "XML":
		if err := arity(link == "XML" || len(words) == 2); err != nil {
			return nil, err
		}
		c, err := epConj(words)
		if err != nil {
			return nil, err
		}
		return single(c), nil
	case "CL", "XCL":
		if err := arity(len(words) >= 2 && (link == "XCL" || len(words) == 2)); err != nil {
			return nil, err
		}
		d := make(DNF, len(words))
		for i, w := range words {
			d[i] = npConj(w)
		}
		return d, nil
	case "IL", "XIL":
		if err := arity(len(words) >= 2 && (link == "XIL" || len(words) == 2)); err != nil {
			return nil, err
		}
		c, err := epConj(words)
		if err != nil {
			return nil, err
		}
		d := DNF{c}
		for _, w := range words[:len(words)-1] {
			d = append(d, npConj(w))
		}
		return d, nil
	case "ISL":
		return single(npConj(words...)), nil
	default:
		return nil, fmt.Errorf("%w: unknown link %s", ErrSyntax, link)
	}
}

// Compile turns a link expression such as ML(a,b)&(CL(a,c)|CL(b,c)) into
// its shrunk DNF. Without a vocabulary words must be integer ids. A blank
// expression compiles to an empty DNF.
func Compile(text string, vocab Vocabulary) (DNF, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, vocab: vocab, shrink: true}
	d, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEOF); err != nil {
		return nil, err
	}

	d = d.Shrink()
	log.V(1).Infof("compiled DNF: %s", d)
	for i, c := range d {
		log.V(1).Infof("dtree-%d: %s", i, c)
	}
	return d, nil
}
