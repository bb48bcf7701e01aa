package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers + literals
	IDENT  = "IDENT"  // add, counter, x, y, ...
	INT    = "INT"    // 1343456
	FLOAT  = "FLOAT"  // 13.37
	STRING = "STRING" // "foobar"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	BANG     = "!"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"

	LT    = "<"
	LT_EQ = "<="
	GT    = ">"
	GT_EQ = ">="

	LOGICAL_AND = "&&"
	LOGICAL_OR  = "||"

	EQ     = "=="
	NOT_EQ = "!="

	// Delimiters
	PERIOD    = "."
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	FUNCTION    = "FUNCTION"
	LET         = "LET"
	TRUE        = "TRUE"
	FALSE       = "FALSE"
	NULL        = "NULL"
	IF          = "IF"
	ELSE        = "ELSE"
	WHILE       = "WHILE"
	FOR         = "FOR"
	IN          = "IN"
	RETURN      = "RETURN"
	CLASS       = "CLASS"
	STATIC      = "STATIC"
	CONSTRUCTOR = "CONSTRUCTOR"
	NEW         = "NEW"
	THIS        = "THIS"
	SUPER       = "SUPER"
	AWAIT       = "AWAIT"
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int // the src index of the token
}

var keywords = map[string]TokenType{
	// constants
	"null":  NULL,
	"true":  TRUE,
	"false": FALSE,

	// declarations
	"fn":          FUNCTION,
	"let":         LET,
	"class":       CLASS,
	"static":      STATIC,
	"constructor": CONSTRUCTOR,

	// flow control
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"for":    FOR,
	"in":     IN,
	"return": RETURN,

	// objects
	"new":   NEW,
	"this":  THIS,
	"super": SUPER,

	// futures
	"await": AWAIT,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
