package bytecode

import (
	"errors"
	"fmt"
	"math"

	"github.com/gofrs/uuid"
	"github.com/hydrogen-lang/hydrogen/value"
)

// MaxEntries is the number of entries a table can hold while still being
// addressable by a 16-bit instruction argument.
const MaxEntries = math.MaxUint16 + 1

// ErrTableFull is returned when a table cannot hold another entry.
var ErrTableFull = errors.New("table is full")

// Program holds every table populated during a compilation session. Records
// are referenced from instructions by their index in these tables.
type Program struct {
	ID        uuid.UUID
	Sources   []Source
	Packages  []*Package
	Functions []*Function
	Natives   []*Native
	Structs   []*StructDefinition
	Upvalues  []Upvalue
	Numbers   []float64
	Strings   []string
	Fields    []string

	numbers map[uint64]uint16
	strings map[string]uint16
	fields  map[string]uint16
}

// NewProgram returns an empty program with a fresh identifier.
func NewProgram() *Program {
	return &Program{
		ID:      uuid.Must(uuid.NewV4()),
		numbers: map[uint64]uint16{},
		strings: map[string]uint16{},
		fields:  map[string]uint16{},
	}
}

func next(n int) (uint16, error) {
	if n >= MaxEntries {
		return 0, ErrTableFull
	}
	return uint16(n), nil
}

// AddSource records a source unit.
func (p *Program) AddSource(file, contents string) (uint16, error) {
	idx, err := next(len(p.Sources))
	if err != nil {
		return 0, fmt.Errorf("sources: %w", err)
	}
	p.Sources = append(p.Sources, Source{File: file, Contents: contents})
	return idx, nil
}

// AddPackage records a new package.
func (p *Program) AddPackage(pkg *Package) (uint16, error) {
	idx, err := next(len(p.Packages))
	if err != nil {
		return 0, fmt.Errorf("packages: %w", err)
	}
	p.Packages = append(p.Packages, pkg)
	return idx, nil
}

// FindPackage returns the index of the package with the given name, or -1.
func (p *Program) FindPackage(name string) int {
	for i, pkg := range p.Packages {
		if pkg.Name == name {
			return i
		}
	}
	return -1
}

// AddFunction records a new function.
func (p *Program) AddFunction(fn *Function) (uint16, error) {
	idx, err := next(len(p.Functions))
	if err != nil {
		return 0, fmt.Errorf("functions: %w", err)
	}
	p.Functions = append(p.Functions, fn)
	return idx, nil
}

// AddNative records a native function and binds it as a top level variable
// of its package.
func (p *Program) AddNative(native *Native) (uint16, error) {
	idx, err := next(len(p.Natives))
	if err != nil {
		return 0, fmt.Errorf("natives: %w", err)
	}
	if int(native.Package) >= len(p.Packages) {
		return 0, fmt.Errorf("native %s: unknown package %d", native.Name, native.Package)
	}
	pkg := p.Packages[native.Package]
	if _, err := next(len(pkg.Names)); err != nil {
		return 0, fmt.Errorf("package %s: %w", pkg.Name, err)
	}
	p.Natives = append(p.Natives, native)
	pkg.Names = append(pkg.Names, native.Name)
	pkg.Values = append(pkg.Values, value.Native(idx))
	return idx, nil
}

// AddStruct records a new struct definition.
func (p *Program) AddStruct(def *StructDefinition) (uint16, error) {
	idx, err := next(len(p.Structs))
	if err != nil {
		return 0, fmt.Errorf("structs: %w", err)
	}
	p.Structs = append(p.Structs, def)
	return idx, nil
}

// FindStruct returns the index of the struct named name in package pkg, or
// -1.
func (p *Program) FindStruct(pkg uint16, name string) int {
	for i, def := range p.Structs {
		if def.Package == pkg && def.Name == name {
			return i
		}
	}
	return -1
}

// AddUpvalue records a new upvalue.
func (p *Program) AddUpvalue(upv Upvalue) (uint16, error) {
	idx, err := next(len(p.Upvalues))
	if err != nil {
		return 0, fmt.Errorf("upvalues: %w", err)
	}
	p.Upvalues = append(p.Upvalues, upv)
	return idx, nil
}

// AddNumber interns a number constant. Numbers with the same bit pattern
// share an entry.
func (p *Program) AddNumber(f float64) (uint16, error) {
	if p.numbers == nil {
		p.reindex()
	}
	key := math.Float64bits(f)
	if idx, ok := p.numbers[key]; ok {
		return idx, nil
	}
	idx, err := next(len(p.Numbers))
	if err != nil {
		return 0, fmt.Errorf("numbers: %w", err)
	}
	p.Numbers = append(p.Numbers, f)
	p.numbers[key] = idx
	return idx, nil
}

// AddString interns a string constant.
func (p *Program) AddString(s string) (uint16, error) {
	if p.strings == nil {
		p.reindex()
	}
	if idx, ok := p.strings[s]; ok {
		return idx, nil
	}
	idx, err := next(len(p.Strings))
	if err != nil {
		return 0, fmt.Errorf("strings: %w", err)
	}
	p.Strings = append(p.Strings, s)
	p.strings[s] = idx
	return idx, nil
}

// AddField interns a field name.
func (p *Program) AddField(name string) (uint16, error) {
	if p.fields == nil {
		p.reindex()
	}
	if idx, ok := p.fields[name]; ok {
		return idx, nil
	}
	idx, err := next(len(p.Fields))
	if err != nil {
		return 0, fmt.Errorf("fields: %w", err)
	}
	p.Fields = append(p.Fields, name)
	p.fields[name] = idx
	return idx, nil
}

// Mark is a snapshot of the size of every table, used to discard the
// records of a compilation that failed part way through.
type Mark struct {
	sources, packages, functions, natives, structs int
	upvalues, numbers, strings, fields             int
	pkgs                                           []packageMark
	defs                                           []structMark
}

type packageMark struct {
	sources, names, main int
}

type structMark struct {
	fields      int
	constructor int
}

// Mark takes a snapshot of the program.
func (p *Program) Mark() Mark {
	m := Mark{
		sources:   len(p.Sources),
		packages:  len(p.Packages),
		functions: len(p.Functions),
		natives:   len(p.Natives),
		structs:   len(p.Structs),
		upvalues:  len(p.Upvalues),
		numbers:   len(p.Numbers),
		strings:   len(p.Strings),
		fields:    len(p.Fields),
	}
	for _, pkg := range p.Packages {
		m.pkgs = append(m.pkgs, packageMark{len(pkg.Sources), len(pkg.Names), len(pkg.Main)})
	}
	for _, def := range p.Structs {
		m.defs = append(m.defs, structMark{len(def.Fields), def.Constructor})
	}
	return m
}

// Truncate rolls the program back to a snapshot taken by Mark. Records
// created after the snapshot are discarded, and records that existed at the
// snapshot lose anything added to them since.
func (p *Program) Truncate(m Mark) {
	p.Sources = p.Sources[:m.sources]
	p.Packages = p.Packages[:m.packages]
	p.Functions = p.Functions[:m.functions]
	p.Natives = p.Natives[:m.natives]
	p.Structs = p.Structs[:m.structs]
	p.Upvalues = p.Upvalues[:m.upvalues]
	p.Numbers = p.Numbers[:m.numbers]
	p.Strings = p.Strings[:m.strings]
	p.Fields = p.Fields[:m.fields]
	for i, pm := range m.pkgs {
		pkg := p.Packages[i]
		pkg.Sources = pkg.Sources[:pm.sources]
		pkg.Names = pkg.Names[:pm.names]
		pkg.Values = pkg.Values[:pm.names]
		pkg.Main = pkg.Main[:pm.main]
	}
	for i, sm := range m.defs {
		def := p.Structs[i]
		def.Fields = def.Fields[:sm.fields]
		def.Defaults = def.Defaults[:sm.fields]
		def.Constructor = sm.constructor
	}
	p.reindex()
}

// Detach removes from package pkg everything added to it since the snapshot
// start, while leaving every table at its current size so later records
// keep their indices. Structs declared in pkg since start are blanked, which
// hides them from FindStruct, and structs that existed at start lose the
// fields added to them since.
func (p *Program) Detach(start Mark, pkg int) {
	if pkg < len(start.pkgs) && pkg < len(p.Packages) {
		pm := start.pkgs[pkg]
		pack := p.Packages[pkg]
		pack.Sources = pack.Sources[:pm.sources]
		pack.Names = pack.Names[:pm.names]
		pack.Values = pack.Values[:pm.names]
		pack.Main = pack.Main[:pm.main]
	}
	for i, sm := range start.defs {
		def := p.Structs[i]
		def.Fields = def.Fields[:sm.fields]
		def.Defaults = def.Defaults[:sm.fields]
		def.Constructor = sm.constructor
	}
	for i := start.structs; i < len(p.Structs); i++ {
		if int(p.Structs[i].Package) == pkg {
			p.Structs[i] = &StructDefinition{Package: uint16(pkg), Constructor: -1}
		}
	}
}

// reindex rebuilds the interning maps from the tables.
func (p *Program) reindex() {
	p.numbers = make(map[uint64]uint16, len(p.Numbers))
	for i, f := range p.Numbers {
		p.numbers[math.Float64bits(f)] = uint16(i)
	}
	p.strings = make(map[string]uint16, len(p.Strings))
	for i, s := range p.Strings {
		p.strings[s] = uint16(i)
	}
	p.fields = make(map[string]uint16, len(p.Fields))
	for i, f := range p.Fields {
		p.fields[f] = uint16(i)
	}
}

// Describe renders a value using the program's tables.
func (p *Program) Describe(v value.Value) string {
	switch v.Kind {
	case value.KindString:
		if int(v.Index) < len(p.Strings) {
			return fmt.Sprintf("%q", p.Strings[v.Index])
		}
	case value.KindFunction:
		if int(v.Index) < len(p.Functions) {
			return p.Functions[v.Index].String()
		}
	case value.KindNative:
		if int(v.Index) < len(p.Natives) {
			n := p.Natives[v.Index]
			return fmt.Sprintf("native %s.%s", p.Packages[n.Package].Name, n.Name)
		}
	}
	return v.String()
}
