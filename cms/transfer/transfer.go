// Package transfer implements the non-linear encodings (OETF/EOTF pairs) and
// the small amount of 3x3 linear algebra the cms transform engine needs.
// Curve constants follow the published specification for each encoding.
package transfer

import (
	"fmt"
	"math"
)

// Function converts a single component between its encoded representation and
// linear light. Implementations are stateless and safe for concurrent use.
type Function interface {
	// ToLinear converts an encoded value to linear light.
	ToLinear(v float32) float32
	// FromLinear converts a linear light value to the encoded representation.
	FromLinear(v float32) float32
	// Name returns a stable identifier, unique per parametrisation.
	Name() string
}

// Equal reports whether two transfer functions describe the same encoding.
func Equal(a, b Function) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name() == b.Name()
}

// ForName returns the catalogue transfer function with the given name.
// Parametrised curves (pure gamma) are constructed with NewGamma instead.
func ForName(name string) (Function, bool) {
	f, ok := catalogue[name]
	return f, ok
}

var catalogue = map[string]Function{
	"linear":     Linear{},
	"srgb":       SRGB{},
	"acescc":     ACEScc{},
	"acescct":    ACEScct{},
	"arri-logc3": LogC3{},
	"arri-logc4": LogC4{},
	"slog3":      SLog3{},
	"log3g10":    Log3G10{},
	"vlog":       VLog{},
}

func powf(x, y float32) float32 { return float32(math.Pow(float64(x), float64(y))) }
func log10f(x float32) float32  { return float32(math.Log10(float64(x))) }
func log2f(x float32) float32   { return float32(math.Log2(float64(x))) }
func exp10f(x float32) float32  { return float32(math.Pow(10, float64(x))) }
func exp2f(x float32) float32   { return float32(math.Exp2(float64(x))) }

// Linear is the identity encoding.
type Linear struct{}

func (Linear) ToLinear(v float32) float32   { return v }
func (Linear) FromLinear(v float32) float32 { return v }
func (Linear) Name() string                 { return "linear" }

// SRGB is the piecewise sRGB encoding per IEC 61966-2-1.
type SRGB struct{}

func (SRGB) ToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return powf((v+0.055)/1.055, 2.4)
}

func (SRGB) FromLinear(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*powf(v, 1/2.4) - 0.055
}

func (SRGB) Name() string { return "srgb" }

// Gamma is a pure power-law encoding with the given exponent.
type Gamma struct {
	Exponent float32
}

// NewGamma returns a pure gamma curve. Exponents at or below zero degrade to
// the identity encoding.
func NewGamma(exponent float32) Function {
	if exponent <= 0 || exponent == 1 {
		return Linear{}
	}
	return Gamma{Exponent: exponent}
}

func (g Gamma) ToLinear(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return powf(v, g.Exponent)
}

func (g Gamma) FromLinear(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return powf(v, 1/g.Exponent)
}

func (g Gamma) Name() string { return fmt.Sprintf("gamma-%.4g", g.Exponent) }

// ACEScc is the logarithmic ACES working-space encoding per S-2014-003.
type ACEScc struct{}

func (ACEScc) ToLinear(v float32) float32 {
	if v <= -0.3014 {
		return (exp2f(v*17.52-9.72) - 1e-15) * 2
	}
	return exp2f(v*17.52 - 9.72)
}

func (ACEScc) FromLinear(v float32) float32 {
	minVal := exp2f(-15)
	switch {
	case v <= 0:
		return (log2f(1e-15) + 9.72) / 17.52
	case v < minVal:
		return (log2f(1e-15+v*0.5) + 9.72) / 17.52
	default:
		return (log2f(v) + 9.72) / 17.52
	}
}

func (ACEScc) Name() string { return "acescc" }

// ACEScct is the quasi-logarithmic ACES encoding with a shadow toe per
// S-2016-001.
type ACEScct struct{}

const (
	acescctCut        = 0.0078125
	acescctCutEncoded = 0.15525114
	acescctSlope      = 10.540238
	acescctOffset     = 0.072905534
)

func (ACEScct) ToLinear(v float32) float32 {
	if v <= acescctCutEncoded {
		return (v - acescctOffset) / acescctSlope
	}
	return exp2f(v*17.52 - 9.72)
}

func (ACEScct) FromLinear(v float32) float32 {
	if v <= acescctCut {
		return acescctSlope*v + acescctOffset
	}
	return (log2f(v) + 9.72) / 17.52
}

func (ACEScct) Name() string { return "acescct" }

// LogC3 is the ARRI LogC3 encoding for ALEXA classic sensors at EI 800.
type LogC3 struct{}

const (
	logc3A    = 5.555556
	logc3B    = 0.052272
	logc3C    = 0.247190
	logc3D    = 0.385537
	logc3Cut  = 0.010591
	logc3E    = 5.367655
	logc3F    = 0.092809
	logc3ECut = 0.149651 // logc3E*logc3Cut + logc3F
)

func (LogC3) ToLinear(v float32) float32 {
	if v <= logc3ECut {
		return (v - logc3F) / logc3E
	}
	return (exp10f((v-logc3D)/logc3C) - logc3B) / logc3A
}

func (LogC3) FromLinear(v float32) float32 {
	if v <= logc3Cut {
		return logc3E*v + logc3F
	}
	return logc3C*log10f(logc3A*v+logc3B) + logc3D
}

func (LogC3) Name() string { return "arri-logc3" }

// LogC4 is the ARRI LogC4 encoding for ALEXA 35 sensors.
type LogC4 struct{}

const (
	logc4A    = 2231.8263
	logc4B    = 64.0
	logc4C    = 0.07410756
	logc4D    = 0.09286412
	logc4Cut  = -0.02344045
	logc4ECut = 0.09060096
)

func (LogC4) ToLinear(v float32) float32 {
	if v <= logc4ECut {
		return (v - logc4D) / logc4C
	}
	return (exp2f((v-logc4D)/logc4C) - logc4B) / logc4A
}

func (LogC4) FromLinear(v float32) float32 {
	if v <= logc4Cut {
		return logc4C*v + logc4D
	}
	return logc4C*log2f(logc4A*v+logc4B) + logc4D
}

func (LogC4) Name() string { return "arri-logc4" }

// SLog3 is the Sony S-Log3 encoding.
type SLog3 struct{}

const (
	slog3Threshold        = 0.01125
	slog3ThresholdEncoded = 0.167360 // 171.2102946929 / 1023
)

func (SLog3) ToLinear(v float32) float32 {
	if v >= slog3ThresholdEncoded {
		return 0.19*exp10f((v*1023.0-420.0)/261.5) - 0.01
	}
	return (v*1023.0 - 95.0) * 0.01125 / (171.2103 - 95.0)
}

func (SLog3) FromLinear(v float32) float32 {
	if v >= slog3Threshold {
		return (420.0 + 261.5*log10f((v+0.01)/0.19)) / 1023.0
	}
	return (v*(171.2103-95.0)/0.01125 + 95.0) / 1023.0
}

func (SLog3) Name() string { return "slog3" }

// Log3G10 is the RED Log3G10 encoding.
type Log3G10 struct{}

const (
	log3g10A = 155.97533
	log3g10B = 0.01
	log3g10C = 0.224282
)

func (Log3G10) ToLinear(v float32) float32 {
	if v < 0 {
		return (v - log3g10B) / log3g10A
	}
	return (exp10f(v/log3g10C) - 1) / log3g10A
}

func (Log3G10) FromLinear(v float32) float32 {
	x := v * log3g10A
	if x < 0 {
		return x + log3g10B
	}
	return log3g10C * log10f(x+1)
}

func (Log3G10) Name() string { return "log3g10" }

// VLog is the Panasonic V-Log encoding.
type VLog struct{}

const (
	vlogB          = 0.00873
	vlogC          = 0.241514
	vlogD          = 0.598206
	vlogCut        = 0.01
	vlogCutEncoded = 0.181 // 5.6*vlogCut + 0.125
)

func (VLog) ToLinear(v float32) float32 {
	if v < vlogCutEncoded {
		return (v - 0.125) / 5.6
	}
	return exp10f((v-vlogD)/vlogC) - vlogB
}

func (VLog) FromLinear(v float32) float32 {
	if v < vlogCut {
		return 5.6*v + 0.125
	}
	return vlogC*log10f(v+vlogB) + vlogD
}

func (VLog) Name() string { return "vlog" }
