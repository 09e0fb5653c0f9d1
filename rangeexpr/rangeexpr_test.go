package rangeexpr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systerel/opcua-addrspace-core/rangeexpr"
)

func TestParse_Single(t *testing.T) {
	r, err := rangeexpr.Parse("3")
	require.NoError(t, err)
	require.Len(t, r, 1)
	assert.Equal(t, uint32(3), r[0].Low)
	assert.Equal(t, uint32(3), r[0].High)
	assert.True(t, r[0].Single)
}

func TestParse_Bounded(t *testing.T) {
	r, err := rangeexpr.Parse("1:4")
	require.NoError(t, err)
	require.Len(t, r, 1)
	assert.Equal(t, uint32(1), r[0].Low)
	assert.Equal(t, uint32(4), r[0].High)
	assert.False(t, r[0].Single)
}

func TestParse_MultiDimension(t *testing.T) {
	r, err := rangeexpr.Parse("0:1,2,3:3")
	require.NoError(t, err)
	require.Len(t, r, 3)
	assert.Equal(t, uint32(0), r[0].Low)
	assert.Equal(t, uint32(1), r[0].High)
	assert.True(t, r[1].Single)
	assert.Equal(t, uint32(3), r[2].Low)
	assert.Equal(t, uint32(3), r[2].High)
}

func TestParse_InvalidOrdering(t *testing.T) {
	_, err := rangeexpr.Parse("5:2")
	assert.ErrorIs(t, err, rangeexpr.ErrInvalid)
}

func TestParse_InvalidSyntax(t *testing.T) {
	cases := []string{"", "a", "1:", ":3", "1,,2", "1:2:3", "-1"}
	for _, c := range cases {
		_, err := rangeexpr.Parse(c)
		assert.ErrorIsf(t, err, rangeexpr.ErrInvalid, "input %q", c)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"3", "1:4", "0:1,2,3:9", "0,1,2"} {
		r, err := rangeexpr.Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}
}

func TestApplicable(t *testing.T) {
	r, err := rangeexpr.Parse("0:1")
	require.NoError(t, err)
	assert.True(t, r.Applicable(1, false))
	assert.False(t, r.Applicable(2, false))
	assert.True(t, r.Applicable(0, true)) // scalar string, trailing bound
}

func TestBoundLen(t *testing.T) {
	r, err := rangeexpr.Parse("2:5")
	require.NoError(t, err)
	assert.Equal(t, uint32(4), r[0].Len())
}
