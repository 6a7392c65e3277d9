// Package lexer converts source code into a stream of tokens.
package lexer

import (
	"math"
	"strconv"
	"strings"

	"github.com/hydrogen-lang/hydrogen/errors"
	"github.com/hydrogen-lang/hydrogen/internal/token"
)

// Lexer produces tokens one at a time from a source string.
type Lexer struct {
	input     string
	file      string
	pos       int // byte offset of the current character
	line      int // 0-indexed line of the current character
	lineStart int // byte offset of the start of the current line
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithFile sets the filename reported in token positions and errors.
func WithFile(file string) Option {
	return func(l *Lexer) {
		l.file = file
	}
}

// New returns a Lexer for the given input.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{input: input}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// File returns the filename the lexer was created with.
func (l *Lexer) File() string {
	return l.file
}

// LineText returns the full source line containing the given position,
// without its line terminator.
func (l *Lexer) LineText(p token.Position) string {
	if p.LineStart > len(l.input) {
		return ""
	}
	rest := l.input[p.LineStart:]
	if i := strings.IndexAny(rest, "\r\n"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// Next lexes and returns the next token. At the end of the input an EOF token
// is returned on every call.
func (l *Lexer) Next() (token.Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token.Token{}, err
	}
	start := l.position()
	ch := l.current()
	switch ch {
	case 0:
		if l.pos >= len(l.input) {
			return l.token(token.EOF, start), nil
		}
	case '^':
		return l.single(token.BIT_XOR, start), nil
	case '~':
		return l.single(token.BIT_NOT, start), nil
	case '(':
		return l.single(token.LPAREN, start), nil
	case ')':
		return l.single(token.RPAREN, start), nil
	case '[':
		return l.single(token.LBRACKET, start), nil
	case ']':
		return l.single(token.RBRACKET, start), nil
	case '{':
		return l.single(token.LBRACE, start), nil
	case '}':
		return l.single(token.RBRACE, start), nil
	case ',':
		return l.single(token.COMMA, start), nil
	case '+':
		return l.either(token.ADD, '=', token.ADD_ASSIGN, start), nil
	case '-':
		return l.either(token.SUB, '=', token.SUB_ASSIGN, start), nil
	case '*':
		return l.either(token.MUL, '=', token.MUL_ASSIGN, start), nil
	case '/':
		return l.either(token.DIV, '=', token.DIV_ASSIGN, start), nil
	case '%':
		return l.either(token.MOD, '=', token.MOD_ASSIGN, start), nil
	case '=':
		return l.either(token.ASSIGN, '=', token.EQ, start), nil
	case '!':
		return l.either(token.NOT, '=', token.NEQ, start), nil
	case '&':
		return l.either(token.BIT_AND, '&', token.AND, start), nil
	case '|':
		return l.either(token.BIT_OR, '|', token.OR, start), nil
	case '.':
		return l.either(token.DOT, '.', token.CONCAT, start), nil
	case '<':
		l.advance()
		switch l.current() {
		case '=':
			l.advance()
			return l.token(token.LE, start), nil
		case '<':
			l.advance()
			return l.token(token.LSHIFT, start), nil
		}
		return l.token(token.LT, start), nil
	case '>':
		l.advance()
		switch l.current() {
		case '=':
			l.advance()
			return l.token(token.GE, start), nil
		case '>':
			l.advance()
			return l.token(token.RSHIFT, start), nil
		}
		return l.token(token.GT, start), nil
	case '"', '\'':
		return l.readString(start)
	}
	if isDecimal(ch) {
		return l.readNumber(start)
	}
	if isIdentifierStart(ch) {
		return l.readIdentifier(start), nil
	}
	l.advance()
	return token.Token{}, l.errorf(errors.E1001, start, 1, "Unrecognised character `%c`", ch)
}

func (l *Lexer) current() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peek(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// advance moves past the current character, counting `\r\n` and `\n\r` as a
// single newline.
func (l *Lexer) advance() {
	ch := l.current()
	if ch == 0 && l.pos >= len(l.input) {
		return
	}
	l.pos++
	if ch == '\n' || ch == '\r' {
		next := l.current()
		if (next == '\n' || next == '\r') && next != ch {
			l.pos++
		}
		l.line++
		l.lineStart = l.pos
	}
}

func (l *Lexer) position() token.Position {
	return token.Position{
		Char:      l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
		File:      l.file,
	}
}

func (l *Lexer) token(typ token.Type, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       l.input[start.Char:l.pos],
		StartPosition: start,
		EndPosition:   l.position(),
	}
}

func (l *Lexer) single(typ token.Type, start token.Position) token.Token {
	l.advance()
	return l.token(typ, start)
}

// either lexes a one character token, or a two character token when the
// following character is second.
func (l *Lexer) either(one token.Type, second byte, two token.Type, start token.Position) token.Token {
	l.advance()
	if l.current() == second {
		l.advance()
		return l.token(two, start)
	}
	return l.token(one, start)
}

func (l *Lexer) errorf(code errors.ErrorCode, start token.Position, length int, format string, args ...any) *errors.CompileError {
	loc := errors.SourceLocation{
		Filename: l.file,
		Line:     start.LineNumber(),
		Column:   start.ColumnNumber(),
		Source:   l.LineText(start),
	}
	return errors.New(code, loc, format, args...).WithSpan(length)
}

func (l *Lexer) skipWhitespaceAndComments() error {
	for {
		switch ch := l.current(); {
		case isWhitespace(ch):
			l.advance()
		case ch == '/' && l.peek(1) == '/':
			for l.pos < len(l.input) && !isNewline(l.current()) {
				l.advance()
			}
		case ch == '/' && l.peek(1) == '*':
			start := l.position()
			l.advance()
			l.advance()
			for !(l.current() == '*' && l.peek(1) == '/') {
				if l.pos >= len(l.input) {
					return l.errorf(errors.E1005, start, 2, "Unterminated block comment")
				}
				l.advance()
			}
			l.advance()
			l.advance()
		default:
			return nil
		}
	}
}

func (l *Lexer) readIdentifier(start token.Position) token.Token {
	for isIdentifier(l.current()) {
		l.advance()
	}
	word := l.input[start.Char:l.pos]
	typ := token.LookupIdentifier(word)
	if typ == token.ELSE {
		// Collapse `else` followed by `if` into one token, rewinding if there
		// is no `if`.
		saved := *l
		for isWhitespace(l.current()) {
			l.advance()
		}
		if l.current() == 'i' && l.peek(1) == 'f' && !isIdentifier(l.peek(2)) {
			l.advance()
			l.advance()
			return l.token(token.ELSE_IF, start)
		}
		*l = saved
	}
	return l.token(typ, start)
}

func (l *Lexer) readString(start token.Position) (token.Token, error) {
	quote := l.current()
	l.advance()
	var b strings.Builder
	for {
		ch := l.current()
		if l.pos >= len(l.input) {
			return token.Token{}, l.errorf(errors.E1002, start, 1, "Unterminated string literal")
		}
		if ch == quote {
			l.advance()
			break
		}
		if ch != '\\' {
			from := l.pos
			l.advance()
			b.WriteString(l.input[from:l.pos])
			continue
		}
		escape := l.position()
		l.advance()
		switch l.current() {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\'':
			b.WriteByte('\'')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		default:
			next := l.current()
			if l.pos >= len(l.input) || isNewline(next) {
				return token.Token{}, l.errorf(errors.E1003, escape, 1, "Invalid escape sequence")
			}
			return token.Token{}, l.errorf(errors.E1003, escape, 2, "Invalid escape sequence `\\%c`", next)
		}
		l.advance()
	}
	tok := l.token(token.STRING, start)
	tok.Value = b.String()
	return tok, nil
}

func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	base := 10
	if l.current() == '0' && isLetter(l.peek(1)) && l.peek(1) != 'e' && l.peek(1) != 'E' {
		switch l.peek(1) {
		case 'b':
			base = 2
		case 'o':
			base = 8
		case 'x':
			base = 16
		default:
			return token.Token{}, l.errorf(errors.E1004, start, 2, "Invalid base prefix `%s`", l.input[l.pos:l.pos+2])
		}
		l.advance()
		l.advance()
	}

	digitsStart := l.pos
	for isDigit(l.current(), base) {
		l.advance()
	}
	isFloat := false
	if base == 10 {
		if l.current() == '.' && isDecimal(l.peek(1)) {
			isFloat = true
			l.advance()
			for isDecimal(l.current()) {
				l.advance()
			}
		}
		if e := l.current(); e == 'e' || e == 'E' {
			n := 1
			if s := l.peek(1); s == '+' || s == '-' {
				n = 2
			}
			if isDecimal(l.peek(n)) {
				isFloat = true
				for i := 0; i < n; i++ {
					l.advance()
				}
				for isDecimal(l.current()) {
					l.advance()
				}
			}
		}
	}
	digits := l.input[digitsStart:l.pos]

	if isIdentifier(l.current()) {
		return token.Token{}, l.errorf(errors.E1004, start, l.pos-start.Char+1,
			"Unexpected identifier after number `%s`", l.input[start.Char:l.pos+1])
	}
	if digits == "" {
		return token.Token{}, l.errorf(errors.E1004, start, l.pos-start.Char,
			"Expected digits after base prefix `%s`", l.input[start.Char:l.pos])
	}

	tok := l.token(token.NUMBER, start)
	if isFloat {
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil && !isRangeError(err) {
			return token.Token{}, l.errorf(errors.E1004, start, len(tok.Literal), "Invalid number `%s`", tok.Literal)
		}
		tok.Number = f
		return tok, nil
	}
	value, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if !isRangeError(err) {
			return token.Token{}, l.errorf(errors.E1004, start, len(tok.Literal), "Invalid number `%s`", tok.Literal)
		}
		tok.Number = bigInteger(digits, base)
		return tok, nil
	}
	if value > math.MaxInt16 {
		tok.Number = float64(value)
		return tok, nil
	}
	tok.Type = token.INTEGER
	tok.Integer = int16(value)
	tok.Number = float64(value)
	return tok, nil
}

func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// bigInteger converts integer digits too large for 64 bits to the nearest
// float.
func bigInteger(digits string, base int) float64 {
	var f float64
	for i := 0; i < len(digits); i++ {
		f = f*float64(base) + float64(digitValue(digits[i]))
	}
	return f
}

func digitValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'F':
		return int(ch-'A') + 10
	}
	return 0
}

func isDigit(ch byte, base int) bool {
	switch base {
	case 2:
		return ch == '0' || ch == '1'
	case 8:
		return ch >= '0' && ch <= '7'
	case 16:
		return isDecimal(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
	}
	return isDecimal(ch)
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isNewline(ch byte) bool {
	return ch == '\n' || ch == '\r'
}

func isDecimal(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentifierStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentifier(ch byte) bool {
	return isIdentifierStart(ch) || isDecimal(ch)
}
