package audio

import "math"

// SaturatingAdd sums two samples and clamps the result to the int16 range
// instead of wrapping around.
func SaturatingAdd(a, b int16) int16 {
	s := int32(a) + int32(b)
	if s > math.MaxInt16 {
		return math.MaxInt16
	}
	if s < math.MinInt16 {
		return math.MinInt16
	}
	return int16(s)
}

// mixInto adds src onto dst sample by sample with saturation.
// len(src) must not exceed len(dst).
func mixInto(dst, src []int16) {
	for i, v := range src {
		dst[i] = SaturatingAdd(dst[i], v)
	}
}
