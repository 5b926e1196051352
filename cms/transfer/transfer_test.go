package transfer

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var _ = fmt.Print

func assertRoundTrip(t *testing.T, fn Function, values []float32) {
	t.Helper()
	for _, v := range values {
		encoded := fn.FromLinear(v)
		back := fn.ToLinear(encoded)
		require.InDeltaf(t, v, back, 1e-4,
			"%s roundtrip for %v: encoded=%v back=%v", fn.Name(), v, encoded, back)
	}
}

func TestRoundTrips(t *testing.T) {
	testCases := []struct {
		name   string
		values []float32
	}{
		{"linear", []float32{0, 0.001, 0.01, 0.1, 0.5, 0.9, 1}},
		{"srgb", []float32{0, 0.001, 0.01, 0.1, 0.5, 0.9, 1}},
		{"arri-logc3", []float32{0, 0.005, 0.01, 0.1, 0.5, 1, 5}},
		{"arri-logc4", []float32{0, 0.001, 0.01, 0.1, 0.5, 1}},
		{"slog3", []float32{0.01, 0.1, 0.5, 1}},
		{"log3g10", []float32{0, 0.01, 0.1, 0.5, 1}},
		{"vlog", []float32{0.01, 0.1, 0.5, 1}},
		{"acescc", []float32{0.001, 0.01, 0.1, 0.5, 1}},
		{"acescct", []float32{0.001, 0.01, 0.1, 0.5, 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fn, ok := ForName(tc.name)
			require.True(t, ok)
			require.Equal(t, tc.name, fn.Name())
			assertRoundTrip(t, fn, tc.values)
		})
	}
}

func TestSRGBKnownValues(t *testing.T) {
	fn := SRGB{}
	require.InDelta(t, 0.0, fn.ToLinear(0), 1e-5)
	require.InDelta(t, 1.0, fn.ToLinear(1), 1e-5)
	// Mid-gray sRGB 0.5 decodes to about 0.214 linear.
	require.InDelta(t, 0.214041, fn.ToLinear(0.5), 1e-3)
	// The toe is linear with slope 1/12.92.
	require.InDelta(t, 0.04/12.92, fn.ToLinear(0.04), 1e-6)
}

func TestGamma(t *testing.T) {
	g := NewGamma(2.2)
	assertRoundTrip(t, g, []float32{0, 0.01, 0.1, 0.5, 1})
	require.Equal(t, "gamma-2.2", g.Name())
	require.InDelta(t, math.Pow(0.5, 2.2), float64(g.ToLinear(0.5)), 1e-5)

	// Degenerate exponents collapse to the identity.
	require.Equal(t, Linear{}, NewGamma(0))
	require.Equal(t, Linear{}, NewGamma(-1.8))
	require.Equal(t, Linear{}, NewGamma(1))
}

func TestForNameUnknown(t *testing.T) {
	_, ok := ForName("rec1886")
	require.False(t, ok)
	_, ok = ForName("")
	require.False(t, ok)
}

func TestEqual(t *testing.T) {
	require.True(t, Equal(SRGB{}, SRGB{}))
	require.True(t, Equal(nil, nil))
	require.False(t, Equal(SRGB{}, nil))
	require.False(t, Equal(SRGB{}, Linear{}))
	require.True(t, Equal(NewGamma(2.2), NewGamma(2.2)))
	require.False(t, Equal(NewGamma(2.2), NewGamma(2.4)))
}

func TestMatrixInverse(t *testing.T) {
	for name, m := range primariesToXYZ {
		t.Run(name, func(t *testing.T) {
			inv, ok := m.Inverse()
			require.True(t, ok)
			require.True(t, Mul(inv, m).IsIdentity(1e-5))
			require.True(t, Mul(m, inv).IsIdentity(1e-5))
		})
	}
	singular := Mat3{{1, 2, 3}, {2, 4, 6}, {0, 0, 1}}
	_, ok := singular.Inverse()
	require.False(t, ok)
}

func TestMatrixApply(t *testing.T) {
	id := Identity()
	rgb := [3]float32{0.25, 0.5, 0.75}
	id.Apply(&rgb)
	require.Equal(t, [3]float32{0.25, 0.5, 0.75}, rgb)

	m, ok := PrimariesToXYZ("srgb")
	require.True(t, ok)
	white := [3]float32{1, 1, 1}
	m.Apply(&white)
	// sRGB white maps to D65 in XYZ.
	require.InDelta(t, 0.9505, white[0], 1e-3)
	require.InDelta(t, 1.0, white[1], 1e-3)
	require.InDelta(t, 1.0890, white[2], 1e-3)
}

func TestPrimariesAliases(t *testing.T) {
	canon, ok := PrimariesToXYZ("srgb")
	require.True(t, ok)
	for _, alias := range []string{"rec709", "bt709"} {
		m, ok := PrimariesToXYZ(alias)
		require.True(t, ok, alias)
		require.Equal(t, canon, m)
	}
	ap1, ok := PrimariesToXYZ("ap1")
	require.True(t, ok)
	acescg, ok := PrimariesToXYZ("acescg")
	require.True(t, ok)
	require.Equal(t, acescg, ap1)

	_, ok = PrimariesToXYZ("prophoto")
	require.False(t, ok)
}

func TestPrimariesNames(t *testing.T) {
	names := PrimariesNames()
	require.Len(t, names, len(primariesToXYZ))
	for _, n := range names {
		_, ok := PrimariesToXYZ(n)
		require.True(t, ok, n)
	}
}
