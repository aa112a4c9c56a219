package scope

import (
	"bytes"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken = iota
	commentToken
	cdataToken
	processingToken
	declarationToken
	tagToken
	textToken

	openToken
	slashToken
	nameToken
	equalsToken
	quotedToken
	anyToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
var commentMatcher = parsly.NewToken(commentToken, "Comment", &delimitedMatch{begin: []byte("<!--"), end: []byte("-->")})
var cdataMatcher = parsly.NewToken(cdataToken, "CDATA", &delimitedMatch{begin: []byte("<![CDATA["), end: []byte("]]>")})
var processingMatcher = parsly.NewToken(processingToken, "ProcessingInstruction", &delimitedMatch{begin: []byte("<?"), end: []byte("?>")})
var declarationMatcher = parsly.NewToken(declarationToken, "Declaration", &delimitedMatch{begin: []byte("<!"), end: []byte(">")})
var tagMatcher = parsly.NewToken(tagToken, "Tag", &tagMatch{})
var textMatcher = parsly.NewToken(textToken, "Text", &textMatch{})

var openMatcher = parsly.NewToken(openToken, "<", matcher.NewByte('<'))
var slashMatcher = parsly.NewToken(slashToken, "/", matcher.NewByte('/'))
var nameMatcher = parsly.NewToken(nameToken, "Name", &nameMatch{})
var equalsMatcher = parsly.NewToken(equalsToken, "=", matcher.NewByte('='))
var quotedMatcher = parsly.NewToken(quotedToken, "Quoted", &quotedMatch{})
var anyMatcher = parsly.NewToken(anyToken, "Any", &anyMatch{})

// delimitedMatch matches begin..end; an unterminated block runs to the
// end of input.
type delimitedMatch struct {
	begin []byte
	end   []byte
}

func (d *delimitedMatch) Match(cursor *parsly.Cursor) int {
	input := cursor.Input[cursor.Pos:]
	if !bytes.HasPrefix(input, d.begin) {
		return 0
	}
	if index := bytes.Index(input[len(d.begin):], d.end); index >= 0 {
		return len(d.begin) + index + len(d.end)
	}
	return len(input)
}

// tagMatch matches a start or end tag up to and including '>', skipping
// quoted values. A tag cut short by another '<' or by end of input still
// matches.
type tagMatch struct{}

func (t *tagMatch) Match(cursor *parsly.Cursor) int {
	input := cursor.Input[cursor.Pos:]
	if len(input) == 0 || input[0] != '<' {
		return 0
	}
	if len(input) > 1 && (input[1] == '!' || input[1] == '?' || isSpace(input[1])) {
		return 0
	}
	var quote byte
	for i := 1; i < len(input); i++ {
		b := input[i]
		switch {
		case quote != 0:
			if b == quote {
				quote = 0
			}
		case b == '"' || b == '\'':
			quote = b
		case b == '>':
			return i + 1
		case b == '<':
			return i
		}
	}
	return len(input)
}

// textMatch matches character data up to the next '<'.
type textMatch struct{}

func (t *textMatch) Match(cursor *parsly.Cursor) int {
	input := cursor.Input[cursor.Pos:]
	if len(input) == 0 {
		return 0
	}
	if index := bytes.IndexByte(input[1:], '<'); index >= 0 {
		return index + 1
	}
	return len(input)
}

type nameMatch struct{}

func (n *nameMatch) Match(cursor *parsly.Cursor) int {
	input := cursor.Input[cursor.Pos:]
	size := 0
	for size < len(input) && isNameByte(input[size]) {
		size++
	}
	return size
}

// quotedMatch matches a quoted attribute value; an unterminated value runs
// to the end of input.
type quotedMatch struct{}

func (q *quotedMatch) Match(cursor *parsly.Cursor) int {
	input := cursor.Input[cursor.Pos:]
	if len(input) == 0 || (input[0] != '"' && input[0] != '\'') {
		return 0
	}
	if index := bytes.IndexByte(input[1:], input[0]); index >= 0 {
		return index + 2
	}
	return len(input)
}

type anyMatch struct{}

func (a *anyMatch) Match(cursor *parsly.Cursor) int {
	if cursor.Pos < cursor.InputSize {
		return 1
	}
	return 0
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isNameByte(b byte) bool {
	switch b {
	case '/', '>', '<', '=', '"', '\'':
		return false
	}
	return !isSpace(b)
}
