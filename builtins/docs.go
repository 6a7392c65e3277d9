package builtins

import "strings"

// FuncSpec documents one native function.
type FuncSpec struct {
	Package string   `json:"package"`
	Name    string   `json:"name"`
	Doc     string   `json:"doc"`
	Args    []string `json:"args"`
	Returns string   `json:"returns"`
	Example string   `json:"example,omitempty"`
}

// Arity is the number of arguments the function takes, or -1 when it
// accepts any number. Optional arguments end with "?" and variadic ones
// with "...".
func (s FuncSpec) Arity() int {
	for _, arg := range s.Args {
		if strings.HasSuffix(arg, "?") || strings.HasSuffix(arg, "...") {
			return -1
		}
	}
	return len(s.Args)
}

// Docs returns documentation for all native functions.
func Docs() []FuncSpec {
	return nativeDocs
}

var nativeDocs = []FuncSpec{
	{
		Package: "io",
		Name:    "print",
		Doc:     "Write values separated by spaces",
		Args:    []string{"values..."},
		Returns: "nil",
		Example: "io.print(\"total:\", 3)",
	},
	{
		Package: "io",
		Name:    "println",
		Doc:     "Write values separated by spaces, followed by a newline",
		Args:    []string{"values..."},
		Returns: "nil",
		Example: "io.println(\"hello\")",
	},
	{
		Package: "math",
		Name:    "abs",
		Doc:     "Absolute value of a number",
		Args:    []string{"x"},
		Returns: "number",
		Example: "math.abs(-2)",
	},
	{
		Package: "math",
		Name:    "floor",
		Doc:     "Largest integer value not greater than x",
		Args:    []string{"x"},
		Returns: "number",
		Example: "math.floor(2.7)",
	},
	{
		Package: "math",
		Name:    "ceil",
		Doc:     "Smallest integer value not less than x",
		Args:    []string{"x"},
		Returns: "number",
		Example: "math.ceil(2.1)",
	},
	{
		Package: "math",
		Name:    "sqrt",
		Doc:     "Square root of x",
		Args:    []string{"x"},
		Returns: "number",
		Example: "math.sqrt(16)",
	},
	{
		Package: "math",
		Name:    "max",
		Doc:     "Largest of the given numbers",
		Args:    []string{"x", "rest..."},
		Returns: "number",
		Example: "math.max(1, 5, 3)",
	},
	{
		Package: "math",
		Name:    "min",
		Doc:     "Smallest of the given numbers",
		Args:    []string{"x", "rest..."},
		Returns: "number",
		Example: "math.min(1, 5, 3)",
	},
}
