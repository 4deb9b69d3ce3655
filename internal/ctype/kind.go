package ctype

import (
	"pyglue-generator/internal/common"
)

// Kind classifies a base type.
type Kind int

const (
	_ Kind = iota // zero value means "not a primitive"

	KindBool
	KindChar
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindVoid
)

var kindNames = map[Kind]string{
	KindBool:    "bool",
	KindChar:    "char",
	KindInt8:    "int8",
	KindUint8:   "uint8",
	KindInt16:   "int16",
	KindUint16:  "uint16",
	KindInt32:   "int32",
	KindUint32:  "uint32",
	KindInt64:   "int64",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindVoid:    "void",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return common.UnknownStr
}

// IsPrimitive reports whether the kind is known.
func (k Kind) IsPrimitive() bool {
	return k != 0
}

// IsNumber reports whether the kind is an integer or floating point number.
func (k Kind) IsNumber() bool {
	return k.IsInteger() || k.IsFloat()
}

// IsInteger reports whether the kind is an integer. char is not.
func (k Kind) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt8, KindUint8, KindInt16, KindUint16, KindInt32, KindUint32, KindInt64, KindUint64:
		return true
	}
}

// IsFloat reports whether the kind is a floating point number.
func (k Kind) IsFloat() bool {
	switch k {
	default:
		return false
	case KindFloat32, KindFloat64:
		return true
	}
}

// IsScalar reports whether the kind is a number or bool.
func (k Kind) IsScalar() bool {
	return k == KindBool || k.IsNumber()
}

// PyType returns the Python type used in stubs for a scalar of this kind.
func (k Kind) PyType() string {
	switch {
	case k == KindBool:
		return "bool"
	case k.IsInteger():
		return "int"
	case k.IsFloat():
		return "float"
	case k == KindChar:
		return "str"
	case k == KindVoid:
		return "None"
	default:
		return "Any"
	}
}

var baseKinds = map[string]Kind{
	"bool":                   KindBool,
	"char":                   KindChar,
	"signed char":            KindInt8,
	"unsigned char":          KindUint8,
	"short":                  KindInt16,
	"short int":              KindInt16,
	"signed short":           KindInt16,
	"unsigned short":         KindUint16,
	"unsigned short int":     KindUint16,
	"int":                    KindInt32,
	"signed":                 KindInt32,
	"signed int":             KindInt32,
	"unsigned":               KindUint32,
	"unsigned int":           KindUint32,
	"long":                   KindInt64,
	"long int":               KindInt64,
	"unsigned long":          KindUint64,
	"unsigned long int":      KindUint64,
	"long long":              KindInt64,
	"long long int":          KindInt64,
	"unsigned long long":     KindUint64,
	"unsigned long long int": KindUint64,
	"float":                  KindFloat32,
	"double":                 KindFloat64,
	"size_t":                 KindUint64,
	"std::size_t":            KindUint64,
	"int8_t":                 KindInt8,
	"uint8_t":                KindUint8,
	"int16_t":                KindInt16,
	"uint16_t":               KindUint16,
	"int32_t":                KindInt32,
	"uint32_t":               KindUint32,
	"int64_t":                KindInt64,
	"uint64_t":               KindUint64,
	"ImS8":                   KindInt8,
	"ImU8":                   KindUint8,
	"ImS16":                  KindInt16,
	"ImU16":                  KindUint16,
	"ImS32":                  KindInt32,
	"ImU32":                  KindUint32,
	"ImS64":                  KindInt64,
	"ImU64":                  KindUint64,
	"void":                   KindVoid,
}

// KindOf classifies a base type name. Unknown names return the zero Kind.
func KindOf(base string) Kind {
	return baseKinds[base]
}
