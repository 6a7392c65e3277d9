// Package value defines the tagged machine values the compiler folds
// constants into, and their NaN-boxed 64-bit encoding.
package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind discriminates the variants of a Value.
type Kind uint8

// The first three kinds double as the primitive tags stored in the argument
// of a `P` instruction variant.
const (
	KindNil Kind = iota
	KindFalse
	KindTrue
	KindNumber
	KindString
	KindStruct
	KindFunction
	KindNative
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindFalse:
		return "false"
	case KindTrue:
		return "true"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindNative:
		return "native"
	}
	return "unknown"
}

// Value is a tagged machine value. Num holds the payload of a number and
// Index the table index of a string, struct, function or native.
type Value struct {
	Kind  Kind
	Num   float64
	Index uint32
}

var (
	Nil   = Value{Kind: KindNil}
	False = Value{Kind: KindFalse}
	True  = Value{Kind: KindTrue}
)

// Bool returns True or False.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Number returns a number value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// StringRef returns a reference to an entry of the string table.
func StringRef(index uint32) Value {
	return Value{Kind: KindString, Index: index}
}

// StructRef returns a reference to a struct instance.
func StructRef(index uint32) Value {
	return Value{Kind: KindStruct, Index: index}
}

// Function returns a reference to an entry of the function table.
func Function(index uint16) Value {
	return Value{Kind: KindFunction, Index: uint32(index)}
}

// Native returns a reference to an entry of the native function table.
func Native(index uint16) Value {
	return Value{Kind: KindNative, Index: uint32(index)}
}

// Primitive returns the value for a primitive tag, as stored in the argument
// of a `P` instruction. Unknown tags yield nil.
func Primitive(tag uint16) Value {
	switch Kind(tag) {
	case KindFalse:
		return False
	case KindTrue:
		return True
	}
	return Nil
}

// IsPrimitive returns true for nil, false and true.
func (v Value) IsPrimitive() bool {
	return v.Kind <= KindTrue
}

// Truthy returns false only for nil and false.
func (v Value) Truthy() bool {
	return v.Kind != KindNil && v.Kind != KindFalse
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindString, KindStruct, KindFunction, KindNative:
		return fmt.Sprintf("%s#%d", v.Kind, v.Index)
	}
	return v.Kind.String()
}

// Bit patterns of the NaN-boxed encoding. A double is stored as is unless
// every quiet NaN bit is set. Primitives and function references keep the
// sign bit clear, references to heap objects set it.
const (
	QuietNaN uint64 = 0x7ffc000000000000
	SignBit  uint64 = 0x8000000000000000

	TagFunction uint64 = 0x10000
	TagNative   uint64 = 0x20000

	heapString uint64 = 1 << 32
	heapStruct uint64 = 2 << 32
	heapMask   uint64 = 0xffff << 32

	canonicalNaN uint64 = 0x7ff8000000000000
)

// Encode returns the NaN-boxed representation of the value.
func (v Value) Encode() uint64 {
	switch v.Kind {
	case KindNil, KindFalse, KindTrue:
		return QuietNaN | uint64(v.Kind)
	case KindNumber:
		if math.IsNaN(v.Num) {
			return canonicalNaN
		}
		return math.Float64bits(v.Num)
	case KindFunction:
		return QuietNaN | TagFunction | uint64(v.Index&0xffff)
	case KindNative:
		return QuietNaN | TagNative | uint64(v.Index&0xffff)
	case KindString:
		return SignBit | QuietNaN | heapString | uint64(v.Index)
	case KindStruct:
		return SignBit | QuietNaN | heapStruct | uint64(v.Index)
	}
	return QuietNaN
}

// Decode converts a NaN-boxed representation back into a Value.
func Decode(bits uint64) (Value, error) {
	if bits&QuietNaN != QuietNaN {
		return Number(math.Float64frombits(bits)), nil
	}
	if bits&SignBit != 0 {
		index := uint32(bits)
		switch bits & heapMask {
		case heapString:
			return StringRef(index), nil
		case heapStruct:
			return StructRef(index), nil
		}
		return Nil, fmt.Errorf("invalid heap reference 0x%016x", bits)
	}
	payload := bits &^ QuietNaN
	switch {
	case payload&TagNative != 0 && payload&TagFunction == 0:
		return Native(uint16(payload)), nil
	case payload&TagFunction != 0 && payload&TagNative == 0:
		return Function(uint16(payload)), nil
	case payload <= uint64(KindTrue):
		return Primitive(uint16(payload)), nil
	}
	return Nil, fmt.Errorf("invalid value encoding 0x%016x", bits)
}
