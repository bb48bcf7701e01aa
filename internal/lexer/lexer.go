package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/solisoft/soli-lang-sub001/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; 0 means EOF
}

func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '=':
		tok = l.handleCompoundToken(token.ASSIGN, '=', token.EQ)
	case '+':
		tok = newToken(token.PLUS, l.ch, l.position)
	case '-':
		tok = newToken(token.MINUS, l.ch, l.position)
	case '!':
		tok = l.handleCompoundToken(token.BANG, '=', token.NOT_EQ)
	case '*':
		tok = newToken(token.ASTERISK, l.ch, l.position)
	case '/':
		tok = newToken(token.SLASH, l.ch, l.position)
	case '%':
		tok = newToken(token.PERCENT, l.ch, l.position)
	case '<':
		tok = l.handleCompoundToken(token.LT, '=', token.LT_EQ)
	case '>':
		tok = l.handleCompoundToken(token.GT, '=', token.GT_EQ)
	case '&':
		tok = l.handleCompoundToken(token.ILLEGAL, '&', token.LOGICAL_AND)
	case '|':
		tok = l.handleCompoundToken(token.ILLEGAL, '|', token.LOGICAL_OR)
	case '.':
		tok = newToken(token.PERIOD, l.ch, l.position)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.position)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.position)
	case ':':
		tok = newToken(token.COLON, l.ch, l.position)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.position)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.position)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.position)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.position)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.position)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.position)
	case '"':
		tok.Type = token.STRING
		tok.Position = l.position
		tok.Literal = l.readString()
	case 0:
		tok.Literal = ""
		tok.Type = token.EOF
		tok.Position = l.position
	default:
		if isLetter(l.ch) {
			tok.Position = l.position
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			tok.Position = l.position
			literal, isFloat := l.readNumber()
			tok.Literal = literal
			if isFloat {
				tok.Type = token.FLOAT
			} else {
				tok.Type = token.INT
			}
			return tok
		}
		tok = newToken(token.ILLEGAL, l.ch, l.position)
	}

	l.readChar()
	return tok
}

func (l *Lexer) handleCompoundToken(
	t token.TokenType,
	ch1 rune,
	t1 token.TokenType,
) token.Token {
	startPosition := l.position
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		literal := string(first) + string(l.ch)
		return token.Token{Type: t1, Literal: literal, Position: startPosition}
	}
	return newToken(t, l.ch, startPosition)
}

func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '#':
			l.skipToLineEnd()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipToLineEnd()
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, updating byte positions
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readIdentifier returns the substring (bytes) covering the identifier runes
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads an integer or float literal. The second return value
// reports whether a decimal point was consumed.
func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], isFloat
}

// readString consumes a double-quoted string literal with the usual escapes.
func (l *Lexer) readString() string {
	var out strings.Builder
	for {
		l.readChar()
		if l.ch == '"' || l.ch == 0 {
			break
		}
		if l.ch == '\\' {
			switch l.peekChar() {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case 'r':
				out.WriteRune('\r')
			case '"':
				out.WriteRune('"')
			case '\\':
				out.WriteRune('\\')
			default:
				out.WriteRune(l.peekChar())
			}
			l.readChar()
			continue
		}
		out.WriteRune(l.ch)
	}
	return out.String()
}

// Unicode-aware helpers
func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, position int) token.Token {
	return token.Token{Type: tokenType, Literal: string(ch), Position: position}
}
