// Package builtins defines the native packages available to Hydrogen
// programs: io for output and math for numeric helpers.
package builtins

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/value"
)

// Printable renders a value the way print shows it. Strings are written
// without quotes.
func Printable(prog *bytecode.Program, v value.Value) string {
	if v.Kind == value.KindString && int(v.Index) < len(prog.Strings) {
		return prog.Strings[v.Index]
	}
	return prog.Describe(v)
}

// Print returns a native writing its arguments to w, separated by spaces.
func Print(w io.Writer) bytecode.NativeFunc {
	return func(prog *bytecode.Program, args []value.Value) (value.Value, error) {
		if _, err := io.WriteString(w, join(prog, args)); err != nil {
			return value.Nil, err
		}
		return value.Nil, nil
	}
}

// Println is like Print but ends the output with a newline.
func Println(w io.Writer) bytecode.NativeFunc {
	return func(prog *bytecode.Program, args []value.Value) (value.Value, error) {
		if _, err := io.WriteString(w, join(prog, args)+"\n"); err != nil {
			return value.Nil, err
		}
		return value.Nil, nil
	}
}

func join(prog *bytecode.Program, args []value.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = Printable(prog, arg)
	}
	return strings.Join(parts, " ")
}

func asNumber(name string, v value.Value) (float64, error) {
	if v.Kind != value.KindNumber {
		return 0, fmt.Errorf("type error: %s() expected a number (%s given)", name, v.Kind)
	}
	return v.Num, nil
}

// unary wraps a float64 function as a native of one argument.
func unary(name string, fn func(float64) float64) bytecode.NativeFunc {
	return func(prog *bytecode.Program, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return value.Nil, fmt.Errorf("%s: expected 1 argument, got %d", name, len(args))
		}
		x, err := asNumber(name, args[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Number(fn(x)), nil
	}
}

// reduce wraps a float64 fold as a native of one or more arguments.
func reduce(name string, fn func(a, b float64) float64) bytecode.NativeFunc {
	return func(prog *bytecode.Program, args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return value.Nil, fmt.Errorf("%s: expected at least 1 argument, got 0", name)
		}
		result, err := asNumber(name, args[0])
		if err != nil {
			return value.Nil, err
		}
		for _, arg := range args[1:] {
			x, err := asNumber(name, arg)
			if err != nil {
				return value.Nil, err
			}
			result = fn(result, x)
		}
		return value.Number(result), nil
	}
}

// Natives returns the native functions of every builtin package, keyed by
// package and function name. Output of the io package goes to out.
func Natives(out io.Writer) map[string]map[string]bytecode.NativeFunc {
	return map[string]map[string]bytecode.NativeFunc{
		"io": {
			"print":   Print(out),
			"println": Println(out),
		},
		"math": {
			"abs":   unary("abs", math.Abs),
			"floor": unary("floor", math.Floor),
			"ceil":  unary("ceil", math.Ceil),
			"sqrt":  unary("sqrt", math.Sqrt),
			"max":   reduce("max", math.Max),
			"min":   reduce("min", math.Min),
		},
	}
}

// Register adds the builtin packages to prog, in the order listed by Docs.
// A package that already exists in the program is extended.
func Register(prog *bytecode.Program, out io.Writer) error {
	natives := Natives(out)
	for _, spec := range Docs() {
		pkg := prog.FindPackage(spec.Package)
		if pkg < 0 {
			index, err := prog.AddPackage(&bytecode.Package{Name: spec.Package})
			if err != nil {
				return err
			}
			pkg = int(index)
		}
		if prog.Packages[pkg].TopLevel(spec.Name) >= 0 {
			return fmt.Errorf("native %s.%s is already defined", spec.Package, spec.Name)
		}
		_, err := prog.AddNative(&bytecode.Native{
			Name:    spec.Name,
			Package: uint16(pkg),
			Arity:   spec.Arity(),
			Fn:      natives[spec.Package][spec.Name],
		})
		if err != nil {
			return err
		}
	}
	return nil
}
