// Package op defines the opcodes emitted by the Hydrogen compiler.
//
// The order of the opcodes is significant. Families of opcodes that differ
// only in the kind of one argument are laid out contiguously in the order
// local, integer, number, string, primitive, function, native, so the
// compiler selects a variant by adding the operand kind to the first member
// of the family.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint16

const (
	// Store into a local
	MovLL Code = iota
	MovLI
	MovLN
	MovLS
	MovLP
	MovLF
	MovLV

	// Store into an upvalue
	MovUL
	MovUI
	MovUN
	MovUS
	MovUP
	MovUF
	MovUV

	// Upvalues
	MovLU
	UpvalueClose

	// Store into a package top level variable
	MovTL
	MovTI
	MovTN
	MovTS
	MovTP
	MovTF
	MovTV
	MovLT

	MovSelf

	// Arithmetic
	AddLL
	AddLI
	AddLN
	AddIL
	AddNL
	SubLL
	SubLI
	SubLN
	SubIL
	SubNL
	MulLL
	MulLI
	MulLN
	MulIL
	MulNL
	DivLL
	DivLI
	DivLN
	DivIL
	DivNL
	ModLL
	ModLI
	ModLN
	ModIL
	ModNL

	// Bitwise
	BitAndLL
	BitAndLI
	BitAndLN
	BitAndIL
	BitAndNL
	BitOrLL
	BitOrLI
	BitOrLN
	BitOrIL
	BitOrNL
	BitXorLL
	BitXorLI
	BitXorLN
	BitXorIL
	BitXorNL

	// Concatenation
	ConcatLL
	ConcatLS
	ConcatSL

	// Unary
	NegL
	BitNotL

	// Truth tests, followed by a JMP taken when the test holds
	IsTrueL
	IsFalseL

	// Comparisons, followed by a JMP taken when the comparison holds
	EqLL
	EqLI
	EqLN
	EqLS
	EqLP
	EqLF
	EqLV
	NeqLL
	NeqLI
	NeqLN
	NeqLS
	NeqLP
	NeqLF
	NeqLV
	LtLL
	LtLI
	LtLN
	LeLL
	LeLI
	LeLN
	GtLL
	GtLI
	GtLN
	GeLL
	GeLI
	GeLN

	// Control flow
	Jmp
	Loop
	Call
	Ret0
	RetL
	RetI
	RetN
	RetS
	RetP
	RetF
	RetV

	// Structs
	StructNew
	NativeStructNew
	StructCallConstructor
	StructField
	StructSetL
	StructSetI
	StructSetN
	StructSetS
	StructSetP
	StructSetF
	StructSetV

	NoOp

	count
)

// Family sizes used when selecting a variant within a family.
const (
	ArithVariants = AddIL - AddLL + 2 // LL LI LN IL NL
	EqVariants    = NeqLL - EqLL      // LL LI LN LS LP LF LV
	OrdVariants   = LeLL - LtLL       // LL LI LN
)

// Invert returns the opcode testing the opposite condition. Equality tests
// swap with inequality tests of the same operand kind, ordering tests swap
// with their complement (`<` with `>=`, `<=` with `>`), and truth tests swap
// with falsity tests. Any other opcode has no inverse and yields NoOp.
func Invert(code Code) Code {
	switch {
	case code == IsTrueL:
		return IsFalseL
	case code == IsFalseL:
		return IsTrueL
	case code >= EqLL && code < NeqLL:
		return code + EqVariants
	case code >= NeqLL && code <= NeqLV:
		return code - EqVariants
	case code >= LtLL && code < LeLL:
		return code + (GeLL - LtLL)
	case code >= LeLL && code < GtLL:
		return code + (GtLL - LeLL)
	case code >= GtLL && code < GeLL:
		return code - (GtLL - LeLL)
	case code >= GeLL && code <= GeLN:
		return code - (GeLL - LtLL)
	}
	return NoOp
}

// Mirror returns the ordering test with its operands swapped, so that
// `a < b` may be emitted as `b > a`. Other opcodes are returned unchanged.
func Mirror(code Code) Code {
	switch {
	case code >= LtLL && code < LeLL:
		return code + (GtLL - LtLL)
	case code >= GtLL && code < GeLL:
		return code - (GtLL - LtLL)
	case code >= LeLL && code < GtLL:
		return code + (GeLL - LeLL)
	case code >= GeLL && code <= GeLN:
		return code - (GeLL - LeLL)
	}
	return code
}

// IsCondition returns true if the opcode must be followed by a JMP that is
// taken when the condition holds.
func IsCondition(code Code) bool {
	return code >= IsTrueL && code <= GeLN
}

// ArgKind describes how an instruction argument is interpreted.
type ArgKind uint8

const (
	ArgNone ArgKind = iota
	ArgLocal
	ArgInteger
	ArgNumber
	ArgString
	ArgPrimitive
	ArgFunction
	ArgNative
	ArgUpvalue
	ArgTopLevel
	ArgPackage
	ArgStruct
	ArgField
	ArgOffset
	ArgCount
	ArgJumpType
)

// Info contains information about an opcode.
type Info struct {
	Code         Code
	Name         string
	OperandCount int
	Args         [3]ArgKind
}

var infos = make([]Info, count)

func define(code Code, name string, args ...ArgKind) {
	info := Info{Code: code, Name: name, OperandCount: len(args)}
	copy(info.Args[:], args)
	infos[code] = info
}

// valueKinds lists the argument kind of each member of a local, integer,
// number, string, primitive, function, native family.
var valueKinds = []ArgKind{ArgLocal, ArgInteger, ArgNumber, ArgString, ArgPrimitive, ArgFunction, ArgNative}

var valueSuffixes = []string{"L", "I", "N", "S", "P", "F", "V"}

func init() {
	for i, kind := range valueKinds {
		s := valueSuffixes[i]
		define(MovLL+Code(i), "MOV_L"+s, ArgLocal, kind)
		define(MovUL+Code(i), "MOV_U"+s, ArgUpvalue, kind)
		define(MovTL+Code(i), "MOV_T"+s, ArgTopLevel, kind, ArgPackage)
		define(EqLL+Code(i), "EQ_L"+s, ArgLocal, kind)
		define(NeqLL+Code(i), "NEQ_L"+s, ArgLocal, kind)
		define(RetL+Code(i), "RET_"+s, ArgNone, kind)
		define(StructSetL+Code(i), "STRUCT_SET_"+s, ArgField, kind, ArgLocal)
	}
	define(MovLU, "MOV_LU", ArgLocal, ArgUpvalue)
	define(UpvalueClose, "UPVALUE_CLOSE", ArgUpvalue)
	define(MovLT, "MOV_LT", ArgLocal, ArgTopLevel, ArgPackage)
	define(MovSelf, "MOV_SELF", ArgLocal)

	arith := []struct {
		base Code
		name string
	}{
		{AddLL, "ADD"}, {SubLL, "SUB"}, {MulLL, "MUL"}, {DivLL, "DIV"}, {ModLL, "MOD"},
		{BitAndLL, "BAND"}, {BitOrLL, "BOR"}, {BitXorLL, "BXOR"},
	}
	for _, a := range arith {
		define(a.base, a.name+"_LL", ArgLocal, ArgLocal, ArgLocal)
		define(a.base+1, a.name+"_LI", ArgLocal, ArgLocal, ArgInteger)
		define(a.base+2, a.name+"_LN", ArgLocal, ArgLocal, ArgNumber)
		define(a.base+3, a.name+"_IL", ArgLocal, ArgInteger, ArgLocal)
		define(a.base+4, a.name+"_NL", ArgLocal, ArgNumber, ArgLocal)
	}
	define(ConcatLL, "CONCAT_LL", ArgLocal, ArgLocal, ArgLocal)
	define(ConcatLS, "CONCAT_LS", ArgLocal, ArgLocal, ArgString)
	define(ConcatSL, "CONCAT_SL", ArgLocal, ArgString, ArgLocal)
	define(NegL, "NEG_L", ArgLocal, ArgLocal)
	define(BitNotL, "BNOT_L", ArgLocal, ArgLocal)
	define(IsTrueL, "IS_TRUE_L", ArgLocal)
	define(IsFalseL, "IS_FALSE_L", ArgLocal)

	ord := []struct {
		base Code
		name string
	}{
		{LtLL, "LT"}, {LeLL, "LE"}, {GtLL, "GT"}, {GeLL, "GE"},
	}
	for _, o := range ord {
		for i := 0; i < int(OrdVariants); i++ {
			define(o.base+Code(i), o.name+"_L"+valueSuffixes[i], ArgLocal, valueKinds[i])
		}
	}

	define(Jmp, "JMP", ArgOffset, ArgOffset, ArgJumpType)
	define(Loop, "LOOP", ArgOffset)
	define(Call, "CALL", ArgLocal, ArgCount, ArgLocal)
	define(Ret0, "RET0")
	define(StructNew, "STRUCT_NEW", ArgLocal, ArgStruct)
	define(NativeStructNew, "NATIVE_STRUCT_NEW", ArgLocal, ArgStruct)
	define(StructCallConstructor, "STRUCT_CALL_CONSTRUCTOR", ArgLocal, ArgLocal, ArgCount)
	define(StructField, "STRUCT_FIELD", ArgLocal, ArgLocal, ArgField)
	define(NoOp, "NO_OP")
}

// GetInfo returns information about the given opcode. Unknown opcodes yield
// an Info with an empty name.
func GetInfo(code Code) Info {
	if int(code) >= len(infos) {
		return Info{Code: code}
	}
	return infos[code]
}

// Count returns the number of defined opcodes.
func Count() int {
	return int(count)
}

// String returns the opcode's name.
func (c Code) String() string {
	if name := GetInfo(c).Name; name != "" {
		return name
	}
	return "UNKNOWN"
}

// Lookup returns the opcode with the given name.
func Lookup(name string) (Code, bool) {
	for _, info := range infos {
		if info.Name == name {
			return info.Code, true
		}
	}
	return 0, false
}
