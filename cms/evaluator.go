package cms

import (
	"fmt"

	"github.com/kovidgoyal/colorbridge/cms/transfer"
)

// matrixEps bounds how far a fused gamut matrix may drift from the identity
// before the compiled evaluator keeps it.
const matrixEps = 1e-5

// Evaluator is the compiled, reusable form of a Transform specialised for
// float32 application: at most a decode curve, one fused 3x3 matrix and an
// encode curve. It is stateless with respect to the pixels it processes, so
// concurrent application to distinct buffers is safe. Evaluators hold their
// own copy of the compiled pipeline and do not alias their parent Transform.
type Evaluator struct {
	decode transfer.Function // nil when the source is already linear
	matrix *transfer.Mat3    // nil when the gamuts agree
	encode transfer.Function // nil when the destination is linear
}

// NewEvaluator compiles a resolved Transform for repeated float32
// application. Returns nil and records a failure on a nil or destroyed
// transform, or when the destination gamut matrix cannot be inverted.
func NewEvaluator(t *Transform) *Evaluator {
	lastError.Clear()
	if t == nil || t.src.transfer == nil || t.dst.transfer == nil {
		lastError.Set(fmt.Errorf("%w: nil transform", ErrInvalidArgument))
		return nil
	}

	fromXYZ, ok := t.dst.toXYZ.Inverse()
	if !ok {
		lastError.Set(fmt.Errorf("%w: singular gamut matrix for %q", ErrCompile, t.dst.name))
		return nil
	}
	m := transfer.Mul(fromXYZ, t.src.toXYZ)

	e := &Evaluator{}
	sameCurve := transfer.Equal(t.src.transfer, t.dst.transfer)
	if t.src.name == t.dst.name || (sameCurve && m.IsIdentity(matrixEps)) {
		return e // identity mapping
	}
	linear := transfer.Linear{}
	if !transfer.Equal(t.src.transfer, linear) {
		e.decode = t.src.transfer
	}
	if !m.IsIdentity(matrixEps) {
		e.matrix = &m
	}
	if !transfer.Equal(t.dst.transfer, linear) {
		e.encode = t.dst.transfer
	}
	return e
}

// IsNoOp reports whether applying the evaluator leaves pixels unchanged. A
// nil evaluator conservatively reads as a no-op so callers can skip work
// when no evaluator is available.
func (e *Evaluator) IsNoOp() bool {
	if e == nil {
		return true
	}
	return e.decode == nil && e.matrix == nil && e.encode == nil
}

func (e *Evaluator) applyPixel(rgb *[3]float32) {
	if e.decode != nil {
		rgb[0] = e.decode.ToLinear(rgb[0])
		rgb[1] = e.decode.ToLinear(rgb[1])
		rgb[2] = e.decode.ToLinear(rgb[2])
	}
	if e.matrix != nil {
		e.matrix.Apply(rgb)
	}
	if e.encode != nil {
		rgb[0] = e.encode.FromLinear(rgb[0])
		rgb[1] = e.encode.FromLinear(rgb[1])
		rgb[2] = e.encode.FromLinear(rgb[2])
	}
}

// ApplyRGBA transforms buf in place. buf must hold width*height*4 contiguous
// float32 samples in tightly packed row-major RGBA order; alpha passes
// through untouched. A nil evaluator, nil/short buffer or non-positive
// dimension is a benign empty input: the call returns without touching the
// buffer or the last-error slot. The slot is deliberately not cleared on
// entry either; a stale failure from an earlier call stays visible. On an
// internal failure the error is recorded and the buffer may be left
// partially transformed.
func (e *Evaluator) ApplyRGBA(buf []float32, width, height int) {
	if e == nil || buf == nil || width <= 0 || height <= 0 {
		return
	}
	n := width * height * 4
	if len(buf) < n {
		return
	}
	if e.IsNoOp() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			lastError.Set(fmt.Errorf("cms: apply rgba: %v", r))
		}
	}()
	var rgb [3]float32
	for i := 0; i < n; i += 4 {
		rgb[0], rgb[1], rgb[2] = buf[i], buf[i+1], buf[i+2]
		e.applyPixel(&rgb)
		buf[i], buf[i+1], buf[i+2] = rgb[0], rgb[1], rgb[2]
	}
}

// ApplyRGBPixel transforms a single RGB triplet in place. pix must hold at
// least 3 samples; shorter input and nil evaluators are benign no-ops under
// the same policy as ApplyRGBA.
func (e *Evaluator) ApplyRGBPixel(pix []float32) {
	if e == nil || len(pix) < 3 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			lastError.Set(fmt.Errorf("cms: apply rgb pixel: %v", r))
		}
	}()
	rgb := [3]float32{pix[0], pix[1], pix[2]}
	e.applyPixel(&rgb)
	pix[0], pix[1], pix[2] = rgb[0], rgb[1], rgb[2]
}

// BakeLUT3D samples the evaluator over a size^3 grid and returns the result
// as RGBA entries with red fastest, then green, then blue. Sizes below 2
// yield a single opaque black entry.
func (e *Evaluator) BakeLUT3D(size int) [][4]float32 {
	if size < 2 {
		return [][4]float32{{0, 0, 0, 1}}
	}
	lut := make([][4]float32, 0, size*size*size)
	denom := float32(size - 1)
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				rgb := [3]float32{float32(x) / denom, float32(y) / denom, float32(z) / denom}
				if e != nil {
					e.applyPixel(&rgb)
				}
				lut = append(lut, [4]float32{rgb[0], rgb[1], rgb[2], 1})
			}
		}
	}
	return lut
}

// Destroy releases the evaluator. Safe on a nil handle.
func (e *Evaluator) Destroy() {
	if e == nil {
		return
	}
	e.decode, e.matrix, e.encode = nil, nil, nil
}
