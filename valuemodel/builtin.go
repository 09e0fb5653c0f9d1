// Package valuemodel implements the OPC UA value model (spec §3/§4.1, C1):
// the typed Variant/DataValue/NumericRange primitives shared by every other
// component. Scalars, node ids and qualified names are represented with
// github.com/gopcua/opcua/ua's wire types directly, localized text with this
// package's own LocalizedText (convertible to ua.LocalizedText); the
// array/matrix shape, sub-range addressing and deadband comparison logic
// that the OPC UA binding library doesn't provide are implemented here.
package valuemodel

// BuiltInType identifies one of the 25 built-in OPC UA data types a Variant
// may hold, numbered per Part 6 Table 1.
type BuiltInType uint32

const (
	TypeBoolean         BuiltInType = 1
	TypeSByte           BuiltInType = 2
	TypeByte            BuiltInType = 3
	TypeInt16           BuiltInType = 4
	TypeUInt16          BuiltInType = 5
	TypeInt32           BuiltInType = 6
	TypeUInt32          BuiltInType = 7
	TypeInt64           BuiltInType = 8
	TypeUInt64          BuiltInType = 9
	TypeFloat           BuiltInType = 10
	TypeDouble          BuiltInType = 11
	TypeString          BuiltInType = 12
	TypeDateTime        BuiltInType = 13
	TypeGUID            BuiltInType = 14
	TypeByteString      BuiltInType = 15
	TypeXMLElement      BuiltInType = 16
	TypeNodeID          BuiltInType = 17
	TypeExpandedNodeID  BuiltInType = 18
	TypeStatusCode      BuiltInType = 19
	TypeQualifiedName   BuiltInType = 20
	TypeLocalizedText   BuiltInType = 21
	TypeExtensionObject BuiltInType = 22
	TypeDataValue       BuiltInType = 23
	TypeVariant         BuiltInType = 24
	TypeDiagnosticInfo  BuiltInType = 25
)

// Well-known DataType NodeIds in namespace 0, per Part 6 Table 1 (node ids
// mirror the built-in type numbering above for the scalar types).
const (
	DataTypeBoolean        = uint32(TypeBoolean)
	DataTypeSByte          = uint32(TypeSByte)
	DataTypeByte           = uint32(TypeByte)
	DataTypeInt16          = uint32(TypeInt16)
	DataTypeUInt16         = uint32(TypeUInt16)
	DataTypeInt32          = uint32(TypeInt32)
	DataTypeUInt32         = uint32(TypeUInt32)
	DataTypeInt64          = uint32(TypeInt64)
	DataTypeUInt64         = uint32(TypeUInt64)
	DataTypeFloat          = uint32(TypeFloat)
	DataTypeDouble         = uint32(TypeDouble)
	DataTypeString         = uint32(TypeString)
	DataTypeDateTime       = uint32(TypeDateTime)
	DataTypeGUID           = uint32(TypeGUID)
	DataTypeByteString     = uint32(TypeByteString)
	DataTypeXMLElement     = uint32(TypeXMLElement)
	DataTypeNodeID         = uint32(TypeNodeID)
	DataTypeExpandedNodeID = uint32(TypeExpandedNodeID)
	DataTypeStatusCode     = uint32(TypeStatusCode)
	DataTypeQualifiedName  = uint32(TypeQualifiedName)
	DataTypeLocalizedText  = uint32(TypeLocalizedText)
	DataTypeStructure      = uint32(22)
	DataTypeDataValue      = uint32(TypeDataValue)
	DataTypeBaseDataType   = uint32(24)
	DataTypeDiagnosticInfo = uint32(TypeDiagnosticInfo)
	DataTypeNumber         = uint32(26)
	DataTypeInteger        = uint32(27)
	DataTypeUInteger       = uint32(28)
	DataTypeEnumeration    = uint32(29)
)

// IsNumeric reports whether t is one of the built-in numeric types (the
// types a Number/Integer/UInteger DataType, and hence an Absolute deadband,
// applies to).
func (t BuiltInType) IsNumeric() bool {
	switch t {
	case TypeSByte, TypeByte, TypeInt16, TypeUInt16, TypeInt32, TypeUInt32,
		TypeInt64, TypeUInt64, TypeFloat, TypeDouble:
		return true
	default:
		return false
	}
}

// IsStringOrBytes reports whether t is String or ByteString — the two types
// for which a NumericRange may carry one extra trailing bound (spec §3).
func (t BuiltInType) IsStringOrBytes() bool {
	return t == TypeString || t == TypeByteString
}
