package valuemodel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systerel/opcua-addrspace-core/rangeexpr"
	"github.com/systerel/opcua-addrspace-core/valuemodel"
)

func TestCopyEquals(t *testing.T) {
	v := valuemodel.NewArray(valuemodel.TypeDouble, []any{1.0, 2.0, 3.0})
	cp := v.Copy()
	assert.True(t, v.Equals(cp))
	assert.NotSame(t, v, cp)
}

func TestMatrixLinearisation(t *testing.T) {
	m, err := valuemodel.NewMatrix(valuemodel.TypeInt32, []uint32{2, 3}, []any{
		int32(0), int32(1), int32(2),
		int32(3), int32(4), int32(5),
	})
	require.NoError(t, err)
	got, err := m.GetArrayValue(4)
	require.NoError(t, err)
	assert.Equal(t, int32(4), got)
}

func TestMatrixDimensionMismatch(t *testing.T) {
	_, err := valuemodel.NewMatrix(valuemodel.TypeInt32, []uint32{2, 2}, []any{int32(1)})
	assert.Error(t, err)
}

func TestGetSetRangeArray(t *testing.T) {
	v := valuemodel.NewArray(valuemodel.TypeUInt32, []any{uint32(0), uint32(1), uint32(2), uint32(3), uint32(4)})
	r, err := rangeexpr.Parse("1:2")
	require.NoError(t, err)

	sub, err := valuemodel.GetRange(v, r)
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Len())
	e0, _ := sub.GetArrayValue(0)
	e1, _ := sub.GetArrayValue(1)
	assert.Equal(t, uint32(1), e0)
	assert.Equal(t, uint32(2), e1)

	repl := valuemodel.NewArray(valuemodel.TypeUInt32, []any{uint32(100), uint32(200)})
	require.NoError(t, valuemodel.SetRange(v, repl, r))
	got, _ := v.GetArrayValue(1)
	assert.Equal(t, uint32(100), got)
	got, _ = v.GetArrayValue(2)
	assert.Equal(t, uint32(200), got)
}

func TestGetRangeScalarString(t *testing.T) {
	v := valuemodel.NewScalar(valuemodel.TypeString, "HelloWorld")
	r, err := rangeexpr.Parse("0:4")
	require.NoError(t, err)
	sub, err := valuemodel.GetRange(v, r)
	require.NoError(t, err)
	assert.Equal(t, "Hello", sub.ScalarValue())
}

func TestHasRangeWrongDims(t *testing.T) {
	v := valuemodel.NewArray(valuemodel.TypeInt32, []any{int32(1), int32(2)})
	r, err := rangeexpr.Parse("0,1")
	require.NoError(t, err)
	assert.Equal(t, valuemodel.RangeInvalid, valuemodel.HasRange(v, r, false))
}

func TestHasRangeNoDataOnRead(t *testing.T) {
	v := valuemodel.NewArray(valuemodel.TypeInt32, []any{int32(1), int32(2)})
	r, err := rangeexpr.Parse("5")
	require.NoError(t, err)
	assert.Equal(t, valuemodel.RangeNoData, valuemodel.HasRange(v, r, false))
	assert.Equal(t, valuemodel.RangeOK, valuemodel.HasRange(v, r, true))
}

func TestDeadbandCompare(t *testing.T) {
	a := valuemodel.NewScalar(valuemodel.TypeDouble, 0.0)
	b := valuemodel.NewScalar(valuemodel.TypeDouble, 0.5)
	c, err := valuemodel.CompareRange(1.0, valuemodel.DeadbandCompare, a, b, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c, "within deadband should not trigger")

	b2 := valuemodel.NewScalar(valuemodel.TypeDouble, 1.2)
	c2, err := valuemodel.CompareRange(1.0, valuemodel.DeadbandCompare, a, b2, nil)
	require.NoError(t, err)
	assert.NotEqual(t, 0, c2, "beyond deadband should trigger")
}

func TestDeadbandCompareNonNumeric(t *testing.T) {
	a := valuemodel.NewScalar(valuemodel.TypeString, "a")
	b := valuemodel.NewScalar(valuemodel.TypeString, "b")
	_, err := valuemodel.CompareRange(1.0, valuemodel.DeadbandCompare, a, b, nil)
	assert.Error(t, err)
}

func TestMergeLocalizedText(t *testing.T) {
	current := valuemodel.NewArray(valuemodel.TypeLocalizedText, []any{
		[]valuemodel.LocalizedText{{Locale: "en", Text: "Hello"}, {Locale: "fr", Text: "Bonjour"}},
	})
	incoming := valuemodel.NewArray(valuemodel.TypeLocalizedText, []any{
		[]valuemodel.LocalizedText{{Locale: "fr", Text: "Salut"}},
	})
	merged, ok := valuemodel.MergeLocalizedText(current, incoming, []string{"en", "fr"})
	require.True(t, ok)
	lts := merged.Dims()
	_ = lts
	val, _ := merged.GetArrayValue(0)
	list := val.([]valuemodel.LocalizedText)
	require.Len(t, list, 2)
	assert.Equal(t, "Salut", list[1].Text)
}

func TestMergeLocalizedTextUnsupportedLocale(t *testing.T) {
	current := valuemodel.NewArray(valuemodel.TypeLocalizedText, []any{
		[]valuemodel.LocalizedText{{Locale: "en", Text: "Hello"}},
	})
	incoming := valuemodel.NewArray(valuemodel.TypeLocalizedText, []any{
		[]valuemodel.LocalizedText{{Locale: "de", Text: "Hallo"}},
	})
	_, ok := valuemodel.MergeLocalizedText(current, incoming, []string{"en", "fr"})
	assert.False(t, ok)
}

func TestGetDataType(t *testing.T) {
	v := valuemodel.NewScalar(valuemodel.TypeDouble, 1.0)
	assert.Equal(t, valuemodel.DataTypeDouble, v.GetDataType())

	ext := valuemodel.NewScalar(valuemodel.TypeExtensionObject, []byte{})
	assert.Equal(t, valuemodel.DataTypeStructure, ext.GetDataType())
}
