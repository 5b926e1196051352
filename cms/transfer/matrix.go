package transfer

// Mat3 is a 3x3 color matrix, applied to linear RGB triplets.
type Mat3 [3][3]float32

// Identity returns the identity matrix.
func Identity() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Mul returns a*b.
func Mul(a, b Mat3) Mat3 {
	var out Mat3
	for i := range 3 {
		for j := range 3 {
			var sum float32
			for k := range 3 {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Apply multiplies the matrix into rgb in place.
func (m Mat3) Apply(rgb *[3]float32) {
	r, g, b := rgb[0], rgb[1], rgb[2]
	rgb[0] = m[0][0]*r + m[0][1]*g + m[0][2]*b
	rgb[1] = m[1][0]*r + m[1][1]*g + m[1][2]*b
	rgb[2] = m[2][0]*r + m[2][1]*g + m[2][2]*b
}

// IsIdentity reports whether every element is within eps of the identity.
func (m Mat3) IsIdentity(eps float32) bool {
	id := Identity()
	for i := range 3 {
		for j := range 3 {
			d := m[i][j] - id[i][j]
			if d < 0 {
				d = -d
			}
			if d > eps {
				return false
			}
		}
	}
	return true
}

// Inverse returns the matrix inverse. ok is false for a singular matrix.
// The determinant and cofactors are accumulated in float64 to keep the
// inverse usable after fusing several matrices together.
func (m Mat3) Inverse() (inv Mat3, ok bool) {
	a := [3][3]float64{}
	for i := range 3 {
		for j := range 3 {
			a[i][j] = float64(m[i][j])
		}
	}
	det := a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
	if det == 0 {
		return Mat3{}, false
	}
	d := 1 / det
	inv[0][0] = float32((a[1][1]*a[2][2] - a[1][2]*a[2][1]) * d)
	inv[0][1] = float32((a[0][2]*a[2][1] - a[0][1]*a[2][2]) * d)
	inv[0][2] = float32((a[0][1]*a[1][2] - a[0][2]*a[1][1]) * d)
	inv[1][0] = float32((a[1][2]*a[2][0] - a[1][0]*a[2][2]) * d)
	inv[1][1] = float32((a[0][0]*a[2][2] - a[0][2]*a[2][0]) * d)
	inv[1][2] = float32((a[0][2]*a[1][0] - a[0][0]*a[1][2]) * d)
	inv[2][0] = float32((a[1][0]*a[2][1] - a[1][1]*a[2][0]) * d)
	inv[2][1] = float32((a[0][1]*a[2][0] - a[0][0]*a[2][1]) * d)
	inv[2][2] = float32((a[0][0]*a[1][1] - a[0][1]*a[1][0]) * d)
	return inv, true
}

// Published RGB -> CIE XYZ matrices for the gamuts the engine knows about.
// XYZ is the engine's reference space; a transform between two gamuts is the
// destination inverse fused with the source matrix.
var primariesToXYZ = map[string]Mat3{
	"srgb": {
		{0.4124564, 0.3575761, 0.1804375},
		{0.2126729, 0.7151522, 0.0721750},
		{0.0193339, 0.1191920, 0.9503041},
	},
	"rec2020": {
		{0.6369580, 0.1446169, 0.1688810},
		{0.2627002, 0.6779981, 0.0593017},
		{0.0000000, 0.0280727, 1.0609851},
	},
	// AP1, the ACEScg working gamut.
	"acescg": {
		{0.6624542, 0.1340042, 0.1561877},
		{0.2722287, 0.6740818, 0.0536895},
		{-0.0055746, 0.0040607, 1.0103391},
	},
	// AP0, the ACES2065-1 archival gamut.
	"aces2065-1": {
		{0.9525524, 0.0000000, 0.0000937},
		{0.3439664, 0.7281661, -0.0721325},
		{0.0000000, 0.0000000, 1.0088252},
	},
	"display-p3": {
		{0.4865709, 0.2656677, 0.1982173},
		{0.2289746, 0.6917385, 0.0792869},
		{0.0000000, 0.0451134, 1.0439444},
	},
}

var primariesAliases = map[string]string{
	"rec709":   "srgb",
	"bt709":    "srgb",
	"bt2020":   "rec2020",
	"ap1":      "acescg",
	"ap0":      "aces2065-1",
	"p3-d65":   "display-p3",
	"dci-p3":   "display-p3",
}

// PrimariesToXYZ returns the RGB -> XYZ matrix for a named gamut.
func PrimariesToXYZ(name string) (Mat3, bool) {
	if canon, ok := primariesAliases[name]; ok {
		name = canon
	}
	m, ok := primariesToXYZ[name]
	return m, ok
}

// PrimariesNames lists the canonical gamut names the engine accepts.
func PrimariesNames() []string {
	names := make([]string, 0, len(primariesToXYZ))
	for n := range primariesToXYZ {
		names = append(names, n)
	}
	return names
}
