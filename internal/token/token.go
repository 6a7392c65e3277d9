// Package token defines language keywords and tokens used when lexing source code.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Token represents one token lexed from the input source code.
//
// Integer tokens carry their decoded value in Integer, number tokens in
// Number, and string tokens carry the string with escapes resolved in Value.
type Token struct {
	Type          Type
	Literal       string
	Integer       int16
	Number        float64
	Value         string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	ADD          Type = "+"
	ADD_ASSIGN   Type = "+="
	SUB          Type = "-"
	SUB_ASSIGN   Type = "-="
	MUL          Type = "*"
	MUL_ASSIGN   Type = "*="
	DIV          Type = "/"
	DIV_ASSIGN   Type = "/="
	MOD          Type = "%"
	MOD_ASSIGN   Type = "%="
	CONCAT       Type = ".."
	ASSIGN       Type = "="
	EQ           Type = "=="
	NEQ          Type = "!="
	LT           Type = "<"
	LE           Type = "<="
	GT           Type = ">"
	GE           Type = ">="
	AND          Type = "&&"
	OR           Type = "||"
	NOT          Type = "!"
	BIT_AND      Type = "&"
	BIT_OR       Type = "|"
	BIT_XOR      Type = "^"
	BIT_NOT      Type = "~"
	LSHIFT       Type = "<<"
	RSHIFT       Type = ">>"
	LPAREN       Type = "("
	RPAREN       Type = ")"
	LBRACKET     Type = "["
	RBRACKET     Type = "]"
	LBRACE       Type = "{"
	RBRACE       Type = "}"
	COMMA        Type = ","
	DOT          Type = "."
	IDENT        Type = "IDENT"
	STRING       Type = "STRING"
	INTEGER      Type = "INTEGER"
	NUMBER       Type = "NUMBER"
	TRUE         Type = "TRUE"
	FALSE        Type = "FALSE"
	NIL          Type = "NIL"
	IF           Type = "IF"
	ELSE_IF      Type = "ELSE_IF"
	ELSE         Type = "ELSE"
	WHILE        Type = "WHILE"
	LOOP         Type = "LOOP"
	FOR          Type = "FOR"
	BREAK        Type = "BREAK"
	LET          Type = "LET"
	FN           Type = "FN"
	RETURN       Type = "RETURN"
	IMPORT       Type = "IMPORT"
	STRUCT       Type = "STRUCT"
	NEW          Type = "NEW"
	SELF         Type = "SELF"
	EOF          Type = "EOF"
	UNRECOGNISED Type = "UNRECOGNISED"
)

// Reserved keywords. `else if` is matched by the lexer directly since any
// amount of whitespace may separate the two words.
var keywords = map[string]Type{
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"loop":   LOOP,
	"for":    FOR,
	"break":  BREAK,
	"let":    LET,
	"fn":     FN,
	"return": RETURN,
	"import": IMPORT,
	"true":   TRUE,
	"false":  FALSE,
	"nil":    NIL,
	"struct": STRUCT,
	"new":    NEW,
	"self":   SELF,
}

// LookupIdentifier used to determinate whether identifier is keyword nor not
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

// Describe returns a human readable name for a token type, used in syntax
// error messages.
func (t Type) Describe() string {
	switch t {
	case IDENT:
		return "identifier"
	case STRING:
		return "string"
	case INTEGER, NUMBER:
		return "number"
	case EOF:
		return "end of file"
	case ELSE_IF:
		return "`else if`"
	case UNRECOGNISED:
		return "unrecognised character"
	}
	for word, kw := range keywords {
		if kw == t {
			return "`" + word + "`"
		}
	}
	return "`" + string(t) + "`"
}
