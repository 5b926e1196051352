// Package imagein exposes the image-decoding side of the bridge: an opaque
// Handle over an eagerly decoded image, metadata accessors and a reader that
// normalises any native channel layout into packed float32 RGBA. Open
// returns nil on failure and records the reason in this family's last-error
// slot (see LastError); metadata accessors are infallible by contract and
// return zero sentinels on a nil handle without touching the slot.
package imagein

import (
	"errors"
	"fmt"
	"os"

	"github.com/kovidgoyal/colorbridge/errstate"
)

// Failure kinds recorded by this family's fallible entry points.
var (
	ErrInvalidArgument = errors.New("imagein: invalid argument")
	ErrDecode          = errors.New("imagein: decode failed")
	ErrBufferTooSmall  = errors.New("imagein: destination buffer too small")
)

var lastError errstate.Cell

// LastError returns the most recent failure recorded by this family, or nil.
// The read is non-consuming.
func LastError() error { return lastError.Last() }

// SampleFormat identifies the native sample encoding of a decoded image.
// The codes follow the OpenImageIO TypeDesc basetype numbering so they stay
// meaningful to hosts that already speak it.
type SampleFormat int

const (
	FormatUnknown SampleFormat = 0
	FormatUInt8   SampleFormat = 2
	FormatUInt16  SampleFormat = 4
	FormatInt16   SampleFormat = 5
	FormatHalf    SampleFormat = 10
	FormatFloat32 SampleFormat = 11
	FormatFloat64 SampleFormat = 12
)

func (f SampleFormat) String() string {
	switch f {
	case FormatUInt8:
		return "uint8"
	case FormatUInt16:
		return "uint16"
	case FormatInt16:
		return "int16"
	case FormatHalf:
		return "half"
	case FormatFloat32:
		return "float32"
	case FormatFloat64:
		return "float64"
	}
	return "unknown"
}

// Handle is an opened, fully decoded image. Decoding happens eagerly at Open
// time; there is no lazy or streaming access. samples holds
// width*height*channels float32 values, row-major and interleaved.
type Handle struct {
	width, height int
	channels      int
	format        SampleFormat
	colorSpace    string
	samples       []float32
}

// Open decodes the image file at path. Returns nil and records a failure on
// an empty path or when no registered codec can decode the file. A missing
// color-space tag in the image metadata is not a failure; ColorSpaceTag
// simply reads as absent.
func Open(path string) *Handle {
	lastError.Clear()
	if path == "" {
		lastError.Set(fmt.Errorf("%w: empty image path", ErrInvalidArgument))
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		lastError.Set(fmt.Errorf("%w: %v", ErrDecode, err))
		return nil
	}
	h, err := decodeBytes(data, path)
	if err != nil {
		lastError.Set(fmt.Errorf("%w: %v", ErrDecode, err))
		return nil
	}
	return h
}

// Destroy releases the decoded pixel store. Safe on a nil handle. The handle
// must not be used afterwards.
func (h *Handle) Destroy() {
	if h == nil {
		return
	}
	h.samples = nil
	h.width, h.height, h.channels = 0, 0, 0
	h.format = FormatUnknown
	h.colorSpace = ""
}

// Width returns the image width in pixels, or 0 on a nil handle.
func (h *Handle) Width() int {
	if h == nil {
		return 0
	}
	return h.width
}

// Height returns the image height in pixels, or 0 on a nil handle.
func (h *Handle) Height() int {
	if h == nil {
		return 0
	}
	return h.height
}

// Channels returns the native channel count before RGBA normalisation, or 0
// on a nil handle.
func (h *Handle) Channels() int {
	if h == nil {
		return 0
	}
	return h.channels
}

// SampleFormat returns the native sample encoding of the source image, or
// FormatUnknown on a nil handle.
func (h *Handle) SampleFormat() SampleFormat {
	if h == nil {
		return FormatUnknown
	}
	return h.format
}

// ColorSpaceTag returns the color space detected from image metadata, or ""
// when the decoder found none. An empty tag reads as absent.
func (h *Handle) ColorSpaceTag() string {
	if h == nil {
		return ""
	}
	return h.colorSpace
}

// ReadRGBAFloat32 packs the decoded image into dst as width*height*4
// float32 samples in row-major RGBA order, normalising the native channel
// count to exactly 4 (see remapRGBA). Returns false and records a failure on
// a nil handle, nil destination or a destination shorter than the required
// capacity; the destination is left untouched in every failure case.
func (h *Handle) ReadRGBAFloat32(dst []float32) bool {
	lastError.Clear()
	if h == nil || h.samples == nil || dst == nil {
		lastError.Set(fmt.Errorf("%w: nil handle or destination", ErrInvalidArgument))
		return false
	}
	required := h.width * h.height * 4
	if len(dst) < required {
		lastError.Set(fmt.Errorf("%w: need %d floats, have %d", ErrBufferTooSmall, required, len(dst)))
		return false
	}
	if h.channels <= 0 || len(h.samples) < h.width*h.height*h.channels {
		lastError.Set(fmt.Errorf("%w: inconsistent pixel store", ErrDecode))
		return false
	}
	remapRGBA(h.samples, h.channels, h.width*h.height, dst)
	return true
}
