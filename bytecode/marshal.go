package bytecode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
	"github.com/hydrogen-lang/hydrogen/value"
)

// ImageMagic identifies a serialized program.
const ImageMagic = "HYDR"

// FormatVersion is bumped whenever the instruction set or image layout
// changes in an incompatible way.
const FormatVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type image struct {
	Magic     string          `cbor:"1,keyasint"`
	Version   int             `cbor:"2,keyasint"`
	ID        [16]byte        `cbor:"3,keyasint"`
	Sources   []sourceImage   `cbor:"4,keyasint,omitempty"`
	Packages  []packageImage  `cbor:"5,keyasint,omitempty"`
	Functions []functionImage `cbor:"6,keyasint,omitempty"`
	Natives   []nativeImage   `cbor:"7,keyasint,omitempty"`
	Structs   []structImage   `cbor:"8,keyasint,omitempty"`
	Upvalues  []upvalueImage  `cbor:"9,keyasint,omitempty"`
	Numbers   []uint64        `cbor:"10,keyasint,omitempty"` // NaN-boxed
	Strings   []string        `cbor:"11,keyasint,omitempty"`
	Fields    []string        `cbor:"12,keyasint,omitempty"`
}

type sourceImage struct {
	File     string `cbor:"1,keyasint"`
	Contents string `cbor:"2,keyasint"`
}

type packageImage struct {
	Name    string   `cbor:"1,keyasint"`
	Path    string   `cbor:"2,keyasint,omitempty"`
	Sources []uint16 `cbor:"3,keyasint,omitempty"`
	Names   []string `cbor:"4,keyasint,omitempty"`
	Values  []uint64 `cbor:"5,keyasint,omitempty"` // NaN-boxed
	Main    []uint16 `cbor:"6,keyasint,omitempty"`
}

type functionImage struct {
	Name      string   `cbor:"1,keyasint,omitempty"`
	Package   uint16   `cbor:"2,keyasint"`
	Source    uint16   `cbor:"3,keyasint"`
	Line      int      `cbor:"4,keyasint"`
	Arity     int      `cbor:"5,keyasint"`
	FrameSize int      `cbor:"6,keyasint"`
	Code      []uint64 `cbor:"7,keyasint,omitempty"`
	Lines     []int    `cbor:"8,keyasint,omitempty"`
	Upvalues  []uint16 `cbor:"9,keyasint,omitempty"`
}

type nativeImage struct {
	Name    string `cbor:"1,keyasint"`
	Package uint16 `cbor:"2,keyasint"`
	Arity   int    `cbor:"3,keyasint"`
}

type structImage struct {
	Name        string   `cbor:"1,keyasint"`
	Package     uint16   `cbor:"2,keyasint"`
	Source      uint16   `cbor:"3,keyasint"`
	Line        int      `cbor:"4,keyasint"`
	Fields      []uint16 `cbor:"5,keyasint,omitempty"`
	Defaults    []uint64 `cbor:"6,keyasint,omitempty"` // NaN-boxed
	Constructor int      `cbor:"7,keyasint"`
}

type upvalueImage struct {
	Name     string `cbor:"1,keyasint"`
	Function uint16 `cbor:"2,keyasint"`
	Slot     uint16 `cbor:"3,keyasint"`
}

func encodeValues(vs []value.Value) []uint64 {
	if len(vs) == 0 {
		return nil
	}
	out := make([]uint64, len(vs))
	for i, v := range vs {
		out[i] = v.Encode()
	}
	return out
}

func decodeValues(bits []uint64) ([]value.Value, error) {
	if len(bits) == 0 {
		return nil, nil
	}
	out := make([]value.Value, len(bits))
	for i, b := range bits {
		v, err := value.Decode(b)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Marshal serializes a program into a canonical CBOR image. Native callbacks
// are not serialized and must be bound again after loading.
func Marshal(p *Program) ([]byte, error) {
	img := image{
		Magic:   ImageMagic,
		Version: FormatVersion,
		ID:      [16]byte(p.ID),
		Strings: p.Strings,
		Fields:  p.Fields,
	}
	for _, src := range p.Sources {
		img.Sources = append(img.Sources, sourceImage{File: src.File, Contents: src.Contents})
	}
	for _, pkg := range p.Packages {
		img.Packages = append(img.Packages, packageImage{
			Name:    pkg.Name,
			Path:    pkg.Path,
			Sources: pkg.Sources,
			Names:   pkg.Names,
			Values:  encodeValues(pkg.Values),
			Main:    pkg.Main,
		})
	}
	for _, fn := range p.Functions {
		code := make([]uint64, len(fn.Code))
		for i, ins := range fn.Code {
			code[i] = uint64(ins)
		}
		img.Functions = append(img.Functions, functionImage{
			Name:      fn.Name,
			Package:   fn.Package,
			Source:    fn.Source,
			Line:      fn.Line,
			Arity:     fn.Arity,
			FrameSize: fn.FrameSize,
			Code:      code,
			Lines:     fn.Lines,
			Upvalues:  fn.Upvalues,
		})
	}
	for _, n := range p.Natives {
		img.Natives = append(img.Natives, nativeImage{Name: n.Name, Package: n.Package, Arity: n.Arity})
	}
	for _, def := range p.Structs {
		img.Structs = append(img.Structs, structImage{
			Name:        def.Name,
			Package:     def.Package,
			Source:      def.Source,
			Line:        def.Line,
			Fields:      def.Fields,
			Defaults:    encodeValues(def.Defaults),
			Constructor: def.Constructor,
		})
	}
	for _, upv := range p.Upvalues {
		img.Upvalues = append(img.Upvalues, upvalueImage{Name: upv.Name, Function: upv.Function, Slot: upv.Slot})
	}
	for _, f := range p.Numbers {
		img.Numbers = append(img.Numbers, value.Number(f).Encode())
	}
	return cborEncMode.Marshal(&img)
}

// Unmarshal loads a program from an image produced by Marshal.
func Unmarshal(data []byte) (*Program, error) {
	var img image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", err)
	}
	if img.Magic != ImageMagic {
		return nil, fmt.Errorf("bytecode: not a program image")
	}
	if img.Version != FormatVersion {
		return nil, fmt.Errorf("bytecode: unsupported image version %d (want %d)", img.Version, FormatVersion)
	}
	p := &Program{
		ID:      uuid.UUID(img.ID),
		Strings: img.Strings,
		Fields:  img.Fields,
	}
	for _, src := range img.Sources {
		p.Sources = append(p.Sources, Source{File: src.File, Contents: src.Contents})
	}
	for _, pi := range img.Packages {
		values, err := decodeValues(pi.Values)
		if err != nil {
			return nil, fmt.Errorf("bytecode: package %s: %w", pi.Name, err)
		}
		if len(values) != len(pi.Names) {
			return nil, fmt.Errorf("bytecode: package %s: %d names but %d values", pi.Name, len(pi.Names), len(values))
		}
		p.Packages = append(p.Packages, &Package{
			Name:    pi.Name,
			Path:    pi.Path,
			Sources: pi.Sources,
			Names:   pi.Names,
			Values:  values,
			Main:    pi.Main,
		})
	}
	for _, fi := range img.Functions {
		if len(fi.Lines) != len(fi.Code) {
			return nil, fmt.Errorf("bytecode: function %s: line table does not match code", fi.Name)
		}
		code := make([]Instruction, len(fi.Code))
		for i, ins := range fi.Code {
			code[i] = Instruction(ins)
		}
		p.Functions = append(p.Functions, &Function{
			Name:      fi.Name,
			Package:   fi.Package,
			Source:    fi.Source,
			Line:      fi.Line,
			Arity:     fi.Arity,
			FrameSize: fi.FrameSize,
			Code:      code,
			Lines:     fi.Lines,
			Upvalues:  fi.Upvalues,
		})
	}
	for _, ni := range img.Natives {
		p.Natives = append(p.Natives, &Native{Name: ni.Name, Package: ni.Package, Arity: ni.Arity})
	}
	for _, si := range img.Structs {
		defaults, err := decodeValues(si.Defaults)
		if err != nil {
			return nil, fmt.Errorf("bytecode: struct %s: %w", si.Name, err)
		}
		p.Structs = append(p.Structs, &StructDefinition{
			Name:        si.Name,
			Package:     si.Package,
			Source:      si.Source,
			Line:        si.Line,
			Fields:      si.Fields,
			Defaults:    defaults,
			Constructor: si.Constructor,
		})
	}
	for _, ui := range img.Upvalues {
		p.Upvalues = append(p.Upvalues, Upvalue{Name: ui.Name, Function: ui.Function, Slot: ui.Slot})
	}
	for _, bits := range img.Numbers {
		v, err := value.Decode(bits)
		if err != nil || v.Kind != value.KindNumber {
			return nil, fmt.Errorf("bytecode: invalid number constant 0x%016x", bits)
		}
		p.Numbers = append(p.Numbers, v.Num)
	}
	p.reindex()
	return p, nil
}

// Bind attaches a callback to the native function name of package pkg.
// Callbacks are lost when a program is serialized.
func (p *Program) Bind(pkg, name string, fn NativeFunc) error {
	idx := p.FindPackage(pkg)
	if idx < 0 {
		return fmt.Errorf("bind %s.%s: unknown package", pkg, name)
	}
	for _, n := range p.Natives {
		if int(n.Package) == idx && n.Name == name {
			n.Fn = fn
			return nil
		}
	}
	return fmt.Errorf("bind %s.%s: unknown native function", pkg, name)
}
