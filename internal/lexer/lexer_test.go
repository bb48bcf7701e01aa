package lexer

import (
	"testing"

	"github.com/solisoft/soli-lang-sub001/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
let pi = 3.14;
let add = fn(x, y) {
  x + y;
};
let result = add(five, 10);
!-/*5;
5 < 10 > 5;

if (5 <= 10) {
	return true;
} else {
	return false;
}

10 == 10;
10 != 9;
"foobar"
"foo bar"
[1, 2];
{"foo": "bar"}
a && b || c
while (i < 3) { i = i + 1 }
for x in xs { print(x) }
class Counter < Base {
  static count
  constructor() { this.n = 0 }
}
new Counter()
super.incr()
await f
obj.field
`

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "pi"},
		{token.ASSIGN, "="},
		{token.FLOAT, "3.14"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "add"},
		{token.ASSIGN, "="},
		{token.FUNCTION, "fn"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.LET, "let"},
		{token.IDENT, "result"},
		{token.ASSIGN, "="},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.COMMA, ","},
		{token.INT, "10"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.BANG, "!"},
		{token.MINUS, "-"},
		{token.SLASH, "/"},
		{token.ASTERISK, "*"},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.INT, "5"},
		{token.LT, "<"},
		{token.INT, "10"},
		{token.GT, ">"},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.INT, "5"},
		{token.LT_EQ, "<="},
		{token.INT, "10"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.TRUE, "true"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.INT, "10"},
		{token.EQ, "=="},
		{token.INT, "10"},
		{token.SEMICOLON, ";"},
		{token.INT, "10"},
		{token.NOT_EQ, "!="},
		{token.INT, "9"},
		{token.SEMICOLON, ";"},
		{token.STRING, "foobar"},
		{token.STRING, "foo bar"},
		{token.LBRACKET, "["},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.RBRACKET, "]"},
		{token.SEMICOLON, ";"},
		{token.LBRACE, "{"},
		{token.STRING, "foo"},
		{token.COLON, ":"},
		{token.STRING, "bar"},
		{token.RBRACE, "}"},
		{token.IDENT, "a"},
		{token.LOGICAL_AND, "&&"},
		{token.IDENT, "b"},
		{token.LOGICAL_OR, "||"},
		{token.IDENT, "c"},
		{token.WHILE, "while"},
		{token.LPAREN, "("},
		{token.IDENT, "i"},
		{token.LT, "<"},
		{token.INT, "3"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "i"},
		{token.ASSIGN, "="},
		{token.IDENT, "i"},
		{token.PLUS, "+"},
		{token.INT, "1"},
		{token.RBRACE, "}"},
		{token.FOR, "for"},
		{token.IDENT, "x"},
		{token.IN, "in"},
		{token.IDENT, "xs"},
		{token.LBRACE, "{"},
		{token.IDENT, "print"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.RPAREN, ")"},
		{token.RBRACE, "}"},
		{token.CLASS, "class"},
		{token.IDENT, "Counter"},
		{token.LT, "<"},
		{token.IDENT, "Base"},
		{token.LBRACE, "{"},
		{token.STATIC, "static"},
		{token.IDENT, "count"},
		{token.CONSTRUCTOR, "constructor"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.THIS, "this"},
		{token.PERIOD, "."},
		{token.IDENT, "n"},
		{token.ASSIGN, "="},
		{token.INT, "0"},
		{token.RBRACE, "}"},
		{token.RBRACE, "}"},
		{token.NEW, "new"},
		{token.IDENT, "Counter"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.SUPER, "super"},
		{token.PERIOD, "."},
		{token.IDENT, "incr"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.AWAIT, "await"},
		{token.IDENT, "f"},
		{token.IDENT, "obj"},
		{token.PERIOD, "."},
		{token.IDENT, "field"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"quote \" end"`, `quote " end`},
		{`"back\\slash"`, `back\slash`},
		{`"héllo wörld"`, "héllo wörld"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != token.STRING {
			t.Fatalf("expected STRING, got %q", tok.Type)
		}
		if tok.Literal != tt.expected {
			t.Errorf("wrong literal. expected=%q, got=%q", tt.expected, tok.Literal)
		}
	}
}

func TestComments(t *testing.T) {
	input := "let a = 1 # trailing comment\n// full line\nlet b = 2"
	l := New(input)

	var types []token.TokenType
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		types = append(types, tok.Type)
	}

	expected := []token.TokenType{
		token.LET, token.IDENT, token.ASSIGN, token.INT,
		token.LET, token.IDENT, token.ASSIGN, token.INT,
	}
	if len(types) != len(expected) {
		t.Fatalf("wrong token count. expected=%d, got=%d (%v)", len(expected), len(types), types)
	}
	for i := range expected {
		if types[i] != expected[i] {
			t.Errorf("tokens[%d] wrong. expected=%q, got=%q", i, expected[i], types[i])
		}
	}
}
