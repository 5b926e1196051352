package cms

import (
	"fmt"

	"github.com/kovidgoyal/colorbridge/cms/ociocfg"
	"github.com/kovidgoyal/colorbridge/cms/transfer"
)

// spaceSpec is a resolved color space, copied out of the configuration at
// resolution time so the Transform never needs the Config again.
type spaceSpec struct {
	name     string
	transfer transfer.Function
	toXYZ    transfer.Mat3
}

func copySpec(cs *ociocfg.ColorSpace) spaceSpec {
	return spaceSpec{name: cs.Name, transfer: cs.Transfer, toXYZ: cs.ToXYZ}
}

// Transform is a resolved, directional color mapping between two spaces of a
// configuration. It captures everything needed for evaluation, so it remains
// valid after the Config that produced it is destroyed. Resolution is
// deterministic and performs no caching: equal inputs yield equivalent but
// independent Transforms.
type Transform struct {
	src, dst spaceSpec
}

// NewTransform resolves the mapping from srcSpace to dstSpace. Either name
// may be a color-space name or a declared role. Returns nil and records a
// failure on a nil/destroyed config, empty names (checked before resolution)
// or names unknown to the configuration.
func NewTransform(cfg *Config, srcSpace, dstSpace string) *Transform {
	lastError.Clear()
	if cfg == nil || cfg.cfg == nil || srcSpace == "" || dstSpace == "" {
		lastError.Set(fmt.Errorf("%w: transform needs a config and two color-space names", ErrInvalidArgument))
		return nil
	}
	src := cfg.cfg.ColorSpaceByName(srcSpace)
	if src == nil {
		lastError.Set(fmt.Errorf("%w: unknown color space %q", ErrResolution, srcSpace))
		return nil
	}
	dst := cfg.cfg.ColorSpaceByName(dstSpace)
	if dst == nil {
		lastError.Set(fmt.Errorf("%w: unknown color space %q", ErrResolution, dstSpace))
		return nil
	}
	return &Transform{src: copySpec(src), dst: copySpec(dst)}
}

// NewDisplayTransform resolves the forward, scene-to-display mapping from
// srcSpace to the color space a display/view pair encodes into.
func NewDisplayTransform(cfg *Config, srcSpace, display, view string) *Transform {
	lastError.Clear()
	if cfg == nil || cfg.cfg == nil || srcSpace == "" || display == "" || view == "" {
		lastError.Set(fmt.Errorf("%w: display transform needs a config, a source space, a display and a view", ErrInvalidArgument))
		return nil
	}
	src := cfg.cfg.ColorSpaceByName(srcSpace)
	if src == nil {
		lastError.Set(fmt.Errorf("%w: unknown color space %q", ErrResolution, srcSpace))
		return nil
	}
	dst := cfg.cfg.ViewColorSpace(display, view)
	if dst == nil {
		lastError.Set(fmt.Errorf("%w: unknown display/view %q / %q", ErrResolution, display, view))
		return nil
	}
	return &Transform{src: copySpec(src), dst: copySpec(dst)}
}

// SrcName returns the resolved source color-space name, or "" on nil.
func (t *Transform) SrcName() string {
	if t == nil {
		return ""
	}
	return t.src.name
}

// DstName returns the resolved destination color-space name, or "" on nil.
func (t *Transform) DstName() string {
	if t == nil {
		return ""
	}
	return t.dst.name
}

// Destroy releases the transform. Safe on a nil handle. Evaluators compiled
// from it stay valid; they hold their own copies.
func (t *Transform) Destroy() {
	if t == nil {
		return
	}
	t.src = spaceSpec{}
	t.dst = spaceSpec{}
}
