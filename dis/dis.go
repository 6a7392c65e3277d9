// Package dis supports analysis of Hydrogen bytecode by disassembling it.
// Instruction arguments are resolved against the program's tables so that
// constants, variables and jump targets can be read directly.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/hydrogen-lang/hydrogen/bytecode"
	"github.com/hydrogen-lang/hydrogen/internal/table"
	"github.com/hydrogen-lang/hydrogen/op"
	"github.com/hydrogen-lang/hydrogen/value"
)

// Instruction represents a single bytecode instruction and its operands.
type Instruction struct {
	Offset     int      `json:"offset"`
	Line       int      `json:"line"`
	Name       string   `json:"name"`
	Opcode     op.Code  `json:"opcode"`
	Operands   []uint16 `json:"operands"`
	Annotation string   `json:"annotation,omitempty"`
}

// Disassemble returns a parsed representation of the code of the function
// at index fn.
func Disassemble(prog *bytecode.Program, fn uint16) ([]Instruction, error) {
	if int(fn) >= len(prog.Functions) {
		return nil, fmt.Errorf("function index out of range: %d", fn)
	}
	f := prog.Functions[fn]
	instructions := make([]Instruction, 0, len(f.Code))
	for offset, in := range f.Code {
		info := op.GetInfo(in.Op())
		if info.Name == "" {
			return nil, fmt.Errorf("unknown opcode %d at offset %d", in.Op(), offset)
		}
		operands := make([]uint16, info.OperandCount)
		for i := range operands {
			operands[i] = in.Arg(i + 1)
		}
		annotation, err := annotate(prog, offset, in, info)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		var line int
		if offset < len(f.Lines) {
			line = f.Lines[offset]
		}
		instructions = append(instructions, Instruction{
			Offset:     offset,
			Line:       line,
			Name:       info.Name,
			Opcode:     in.Op(),
			Operands:   operands,
			Annotation: annotation,
		})
	}
	return instructions, nil
}

// annotate describes the arguments of an instruction that refer to the
// program's tables.
func annotate(prog *bytecode.Program, offset int, in bytecode.Instruction, info op.Info) (string, error) {
	var notes []string
	for i, kind := range info.Args {
		arg := in.Arg(i + 1)
		var note string
		var err error
		switch kind {
		case op.ArgInteger:
			note = strconv.Itoa(int(int16(arg)))
		case op.ArgNumber:
			note, err = getNumber(prog, arg)
		case op.ArgString:
			note, err = getString(prog, arg)
		case op.ArgPrimitive:
			note = value.Primitive(arg).String()
		case op.ArgFunction:
			note, err = getFunctionName(prog, arg)
		case op.ArgNative:
			note, err = getNativeName(prog, arg)
		case op.ArgUpvalue:
			note, err = getUpvalueName(prog, arg)
		case op.ArgTopLevel:
			note, err = getTopLevelName(prog, arg, in.Arg(3))
		case op.ArgStruct:
			note, err = getStructName(prog, arg)
		case op.ArgField:
			note, err = getFieldName(prog, arg)
		case op.ArgOffset:
			if i > 0 {
				// the second JMP argument links pending jumps
				continue
			}
			target := offset + int(arg)
			if in.Op() == op.Loop {
				target = offset - int(arg)
			}
			note = fmt.Sprintf("-> %d", target)
		}
		if err != nil {
			return "", err
		}
		if note != "" {
			notes = append(notes, note)
		}
	}
	return strings.Join(notes, ", "), nil
}

func getNumber(prog *bytecode.Program, index uint16) (string, error) {
	if int(index) >= len(prog.Numbers) {
		return "", fmt.Errorf("number index out of range: %d", index)
	}
	return strconv.FormatFloat(prog.Numbers[index], 'g', -1, 64), nil
}

func getString(prog *bytecode.Program, index uint16) (string, error) {
	if int(index) >= len(prog.Strings) {
		return "", fmt.Errorf("string index out of range: %d", index)
	}
	s := prog.Strings[index]
	if len(s) > 40 {
		s = s[:37] + "..."
	}
	return strconv.Quote(s), nil
}

func getFunctionName(prog *bytecode.Program, index uint16) (string, error) {
	if int(index) >= len(prog.Functions) {
		return "", fmt.Errorf("function index out of range: %d", index)
	}
	return prog.Functions[index].String(), nil
}

func getNativeName(prog *bytecode.Program, index uint16) (string, error) {
	if int(index) >= len(prog.Natives) {
		return "", fmt.Errorf("native index out of range: %d", index)
	}
	n := prog.Natives[index]
	return fmt.Sprintf("native %s.%s", prog.Packages[n.Package].Name, n.Name), nil
}

func getUpvalueName(prog *bytecode.Program, index uint16) (string, error) {
	if int(index) >= len(prog.Upvalues) {
		return "", fmt.Errorf("upvalue index out of range: %d", index)
	}
	return "^" + prog.Upvalues[index].Name, nil
}

func getTopLevelName(prog *bytecode.Program, index, pkg uint16) (string, error) {
	if int(pkg) >= len(prog.Packages) {
		return "", fmt.Errorf("package index out of range: %d", pkg)
	}
	p := prog.Packages[pkg]
	if int(index) >= len(p.Names) {
		return "", fmt.Errorf("top level index out of range: %d", index)
	}
	return p.Name + "." + p.Names[index], nil
}

func getStructName(prog *bytecode.Program, index uint16) (string, error) {
	if int(index) >= len(prog.Structs) {
		return "", fmt.Errorf("struct index out of range: %d", index)
	}
	return "struct " + prog.Structs[index].Name, nil
}

func getFieldName(prog *bytecode.Program, index uint16) (string, error) {
	if int(index) >= len(prog.Fields) {
		return "", fmt.Errorf("field index out of range: %d", index)
	}
	return "." + prog.Fields[index], nil
}

var (
	bold = color.New(color.Bold).SprintFunc()
	cyan = color.New(color.FgHiCyan).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

// Print a string representation of the given instructions to the given writer.
func Print(instructions []Instruction, writer io.Writer) error {
	var lines [][]string
	for _, instr := range instructions {
		lines = append(lines, []string{
			strconv.Itoa(instr.Offset),
			dim(strconv.Itoa(instr.Line)),
			bold(instr.Name),
			formatOperands(instr.Operands),
			cyan(instr.Annotation),
		})
	}
	return table.NewTable(writer).
		WithHeader([]string{"OFFSET", "LINE", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

func formatOperands(operands []uint16) string {
	var sb strings.Builder
	for i, o := range operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(o)))
	}
	return sb.String()
}

// FindFunction returns the index of the first function with the given name.
func FindFunction(prog *bytecode.Program, name string) (uint16, bool) {
	for i, fn := range prog.Functions {
		if fn.Name == name {
			return uint16(i), true
		}
	}
	return 0, false
}
