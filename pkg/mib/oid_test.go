package mib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	oid, ok := Lookup("sysDescr")
	require.True(t, ok)
	assert.Equal(t, SysDescr, oid)

	oid, ok = Lookup("PRTMARKERSUPPLIESLEVEL")
	require.True(t, ok)
	assert.Equal(t, PrtMarkerSuppliesLevel, oid)

	_, ok = Lookup("noSuchObject")
	assert.False(t, ok)
}

func TestNamesResolve(t *testing.T) {
	for _, n := range Names() {
		oid, err := Resolve(n)
		require.NoError(t, err, n)
		_, err = Parse(oid)
		assert.NoError(t, err, n)
		assert.Equal(t, byte('.'), oid[0], n)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"printer", Printer, false},
		{".1.3.6.1", ".1.3.6.1", false},
		{"1.3.6.1", ".1.3.6.1", false},
		{"", "", true},
		{".", "", true},
		{"1..3", "", true},
		{"1.3.x", "", true},
		{"1.3.-1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Resolve(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare(t *testing.T) {
	parse := func(s string) []uint32 {
		ids, err := Parse(s)
		require.NoError(t, err)
		return ids
	}

	assert.Equal(t, -1, Compare(parse(".1.3.6.1.2"), parse(".1.3.6.1.10")))
	assert.Equal(t, 1, Compare(parse(".1.3.6.2"), parse(".1.3.6.1.9.9")))
	assert.Equal(t, -1, Compare(parse(".1.3.6.1"), parse(".1.3.6.1.0")))
	assert.Equal(t, 1, Compare(parse(".1.3.6.1.0"), parse(".1.3.6.1")))
	assert.Equal(t, 0, Compare(parse("1.3.6"), parse(".1.3.6")))
}
