package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/eaburns/peggy/peg"
)

type tokKind int

const (
	tEOF tokKind = iota
	tIdent
	tInt
	tChar
	tString
	tPunct
)

type token struct {
	kind tokKind
	text string
	// pos and end are byte offsets in the source.
	pos, end int
}

var puncts = []string{"->", "(", ")", "{", "}", "<", ">", ",", ";", ":", ".", "|", "?"}

// lex splits src into tokens, ending with a tEOF token.
// On a malformed token it returns the tokens so far
// and the offset of the error.
func lex(src string) ([]token, int) {
	var toks []token
	pos := 0
	for {
		pos = skipSpace(src, pos)
		if pos >= len(src) {
			return append(toks, token{kind: tEOF, pos: pos, end: pos}), -1
		}
		tok, ok := lexToken(src, pos)
		if !ok {
			return toks, pos
		}
		toks = append(toks, tok)
		pos = tok.end
	}
}

func skipSpace(src string, pos int) int {
	for pos < len(src) {
		if strings.HasPrefix(src[pos:], "//") {
			nl := strings.IndexByte(src[pos:], '\n')
			if nl < 0 {
				return len(src)
			}
			pos += nl + 1
			continue
		}
		r, w := peg.DecodeRuneInString(src[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += w
	}
	return pos
}

func lexToken(src string, pos int) (token, bool) {
	rest := src[pos:]
	r, _ := peg.DecodeRuneInString(rest)
	switch {
	case r == '_' || unicode.IsLetter(r):
		end := pos + identLen(rest)
		if src[pos:end] == "non" && strings.HasPrefix(src[end:], "-sealed") {
			end += len("-sealed")
		}
		return token{kind: tIdent, text: src[pos:end], pos: pos, end: end}, true
	case unicode.IsDigit(r) || r == '-' && len(rest) > 1 && rest[1] >= '0' && rest[1] <= '9':
		end := pos + 1
		for end < len(src) && src[end] >= '0' && src[end] <= '9' {
			end++
		}
		return token{kind: tInt, text: src[pos:end], pos: pos, end: end}, true
	case r == '\'' || r == '"':
		end := quotedLen(rest, byte(r))
		if end < 0 {
			return token{}, false
		}
		kind := tString
		if r == '\'' {
			kind = tChar
		}
		return token{kind: kind, text: rest[:end], pos: pos, end: pos + end}, true
	}
	for _, p := range puncts {
		if strings.HasPrefix(rest, p) {
			return token{kind: tPunct, text: p, pos: pos, end: pos + len(p)}, true
		}
	}
	return token{}, false
}

func identLen(s string) int {
	n := 0
	for n < len(s) {
		r, w := peg.DecodeRuneInString(s[n:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		n += w
	}
	return n
}

// quotedLen returns the length of the quoted literal at the start of s,
// including its quotes, or -1 if it is unterminated.
func quotedLen(s string, q byte) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '\n':
			return -1
		case q:
			return i + 1
		}
	}
	return -1
}

func unquoteChar(lit string) (rune, bool) {
	r, _, tail, err := strconv.UnquoteChar(lit[1:len(lit)-1], '\'')
	if err != nil || tail != "" {
		return 0, false
	}
	return r, true
}
