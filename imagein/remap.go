package imagein

// synthesize marks a destination slot with no native source channel; the
// slot takes its fill constant instead.
const synthesize = -1

// remapRGBA normalises interleaved native samples with an arbitrary channel
// count into packed RGBA. The remap table is fixed per call: destination
// slot i copies native channel i while one exists; slots past the native
// count synthesize their fill constant, 1 for alpha and 0 otherwise. Native
// channels past the fourth are discarded.
func remapRGBA(src []float32, channels, pixels int, dst []float32) {
	var order [4]int
	fill := [4]float32{0, 0, 0, 1}
	for i := range order {
		if i < channels {
			order[i] = i
		} else {
			order[i] = synthesize
		}
	}

	si, di := 0, 0
	for p := 0; p < pixels; p++ {
		for i, o := range order {
			if o == synthesize {
				dst[di+i] = fill[i]
			} else {
				dst[di+i] = src[si+o]
			}
		}
		si += channels
		di += 4
	}
}
