/*
Package colorbridge is a narrow-waist bridge over two engine families behind
opaque handles: color management (configurations, transforms and pixel
evaluators, see cms) and image input (decoding to packed float32 RGBA, see
imagein).

Each family keeps its own last-error slot. Fallible operations clear the slot
on entry and record a failure before returning their sentinel (nil handle,
false, -1 or ""); read-only accessors never touch it. The capi directory
builds the same surface as a flat C-callable library.
*/
package colorbridge

import "fmt"

type BridgeVersion struct {
	Major, Minor, Patch uint
}

func (v BridgeVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v BridgeVersion) Equal(o BridgeVersion) bool {
	return v.Major == o.Major && v.Minor == o.Minor && v.Patch == o.Patch
}

func (v BridgeVersion) After(o BridgeVersion) bool {
	switch {
	case v.Major == o.Major:
		switch {
		case v.Minor == o.Minor:
			return v.Patch > o.Patch
		case v.Minor > o.Minor:
			return true
		case v.Minor < o.Minor:
			return false
		}
	case v.Major > o.Major:
		return true
	case v.Major < o.Major:
		return false
	}
	return false
}

func (v BridgeVersion) Before(o BridgeVersion) bool {
	return !v.Equal(o) && !v.After(o)
}

var Version = BridgeVersion{0, 3, 0}
