package scope

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/parsly"
)

// ErrOffsetOutOfRange reports an offset outside the document.
var ErrOffsetOutOfRange = errors.New("scope: offset out of range")

// Classifier reports the Context at an offset.
type Classifier interface {
	Classify(ctx context.Context, text string, offset int) (Context, error)
}

var _ Classifier = (*Scanner)(nil)

// Scanner classifies by lexing the document up to the offset, so unclosed
// tags, comments and quotes from in-progress edits are tolerated.
type Scanner struct{}

// NewScanner returns a Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Classify returns the Context at offset, a byte offset into text.
func (s *Scanner) Classify(ctx context.Context, text string, offset int) (Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 || offset > len(text) {
		return nil, fmt.Errorf("%w: %d not in [0,%d]", ErrOffsetOutOfRange, offset, len(text))
	}

	cursor := parsly.NewCursor("", []byte(text[:offset]), 0)
	lastCode, lastText := textToken, ""
	for cursor.Pos < cursor.InputSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matched := cursor.MatchAny(commentMatcher, cdataMatcher, processingMatcher, declarationMatcher, tagMatcher, textMatcher)
		if matched.Code == parsly.EOF || matched.Code == parsly.Invalid {
			break
		}
		lastCode, lastText = matched.Code, matched.Text(cursor)
	}

	switch lastCode {
	case commentToken:
		return open(lastText, "-->", Comment), nil
	case cdataToken:
		return open(lastText, "]]>", CDATA), nil
	case processingToken:
		return open(lastText, "?>", ProcessingInstruction), nil
	case declarationToken:
		return open(lastText, ">", Declaration), nil
	case tagToken:
		return classifyTag(lastText, text[offset:]), nil
	}
	return OtherContext{Kind: Text}, nil
}

// open returns kind while the block is still unterminated at the offset.
func open(block, end string, kind Kind) Context {
	if len(block) >= len(end) && block[len(block)-len(end):] == end {
		return OtherContext{Kind: Text}
	}
	return OtherContext{Kind: kind}
}

// classifyTag inspects a tag prefix ending at the offset; rest is the
// document after the offset, used to complete names.
func classifyTag(tag, rest string) Context {
	cursor := parsly.NewCursor("", []byte(tag), 0)
	cursor.MatchOne(openMatcher)
	closing := cursor.MatchOne(slashMatcher).Code == slashToken
	name := ""
	if matched := cursor.MatchOne(nameMatcher); matched.Code == nameToken {
		name = matched.Text(cursor)
	}
	if cursor.Pos >= cursor.InputSize {
		return ElementContext{Tag: name + completion(rest), Closing: closing}
	}

	lastCode, lastText := nameToken, name
	for cursor.Pos < cursor.InputSize {
		matched := cursor.MatchAfterOptional(whitespaceMatcher, nameMatcher, equalsMatcher, quotedMatcher, anyMatcher)
		if matched.Code == parsly.EOF || matched.Code == parsly.Invalid {
			break
		}
		lastCode, lastText = matched.Code, matched.Text(cursor)
		if lastCode == anyToken && lastText == ">" {
			return OtherContext{Kind: Text}
		}
	}

	trailingSpace := isSpace(tag[len(tag)-1])
	if closing {
		return OtherContext{Kind: TagEnd}
	}
	switch {
	case lastCode == equalsToken:
		return OtherContext{Kind: AttributeValue}
	case lastCode == quotedToken && !closedQuote(lastText):
		return OtherContext{Kind: AttributeValue}
	case trailingSpace:
		return AttributeContext{Tag: name, Attribute: completion(rest)}
	case lastCode == nameToken:
		return AttributeContext{Tag: name, Attribute: lastText + completion(rest)}
	case lastCode == quotedToken:
		return AttributeContext{Tag: name, Attribute: ""}
	}
	return OtherContext{Kind: TagEnd}
}

// completion returns the name characters that continue past the offset.
func completion(rest string) string {
	size := 0
	for size < len(rest) && isNameByte(rest[size]) {
		size++
	}
	return rest[:size]
}

func closedQuote(value string) bool {
	return len(value) >= 2 && value[len(value)-1] == value[0]
}
