package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Lexical errors
//   - E2xxx: Syntax errors
//   - E3xxx: Semantic errors
type ErrorCode string

const (
	// Lexical errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unrecognised character
	E1002 ErrorCode = "E1002" // Unterminated string literal
	E1003 ErrorCode = "E1003" // Invalid escape sequence
	E1004 ErrorCode = "E1004" // Invalid number literal
	E1005 ErrorCode = "E1005" // Unterminated block comment

	// Syntax errors (E2xxx)
	E2001 ErrorCode = "E2001" // Unexpected token
	E2002 ErrorCode = "E2002" // Expected expression
	E2003 ErrorCode = "E2003" // Invalid assignment target
	E2004 ErrorCode = "E2004" // Invalid import path

	// Semantic errors (E3xxx)
	E3001 ErrorCode = "E3001" // Undefined variable
	E3002 ErrorCode = "E3002" // Variable already defined
	E3003 ErrorCode = "E3003" // Invalid operand to operator
	E3004 ErrorCode = "E3004" // Break outside loop
	E3005 ErrorCode = "E3005" // Invalid return
	E3006 ErrorCode = "E3006" // Undefined struct
	E3007 ErrorCode = "E3007" // Undefined field
	E3008 ErrorCode = "E3008" // Struct already defined
	E3009 ErrorCode = "E3009" // Wrong argument count
	E3010 ErrorCode = "E3010" // Invalid use of self
	E3011 ErrorCode = "E3011" // Division by zero
	E3012 ErrorCode = "E3012" // Import failed
	E3013 ErrorCode = "E3013" // Too many entries
	E3014 ErrorCode = "E3014" // Invalid assignment
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unrecognised character",
	E1002: "unterminated string literal",
	E1003: "invalid escape sequence",
	E1004: "invalid number literal",
	E1005: "unterminated block comment",

	E2001: "unexpected token",
	E2002: "expected expression",
	E2003: "invalid assignment target",
	E2004: "invalid import path",

	E3001: "undefined variable",
	E3002: "variable already defined",
	E3003: "invalid operand to operator",
	E3004: "break outside loop",
	E3005: "invalid return",
	E3006: "undefined struct",
	E3007: "undefined field",
	E3008: "struct already defined",
	E3009: "wrong argument count",
	E3010: "invalid use of self",
	E3011: "division by zero",
	E3012: "import failed",
	E3013: "too many entries",
	E3014: "invalid assignment",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Kind returns the error kind implied by the code prefix.
func (c ErrorCode) Kind() Kind {
	if len(c) < 2 {
		return Semantic
	}
	switch c[1] {
	case '1':
		return Lexical
	case '2':
		return Syntactic
	default:
		return Semantic
	}
}
