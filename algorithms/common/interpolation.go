package common

// ParabolicOffset fits a parabola through three equally spaced points
// (s0, s1, s2) centred on s1 and returns the abscissa of its vertex relative
// to the centre. The result lies in (-1, 1) for a true extremum; a flat or
// degenerate triple yields 0.
func ParabolicOffset(s0, s1, s2 float64) float64 {
	denominator := 2 * (2*s1 - s2 - s0)
	if denominator == 0 {
		return 0
	}

	offset := (s2 - s0) / denominator
	if !IsFinite(offset) || offset <= -1 || offset >= 1 {
		return 0
	}
	return offset
}

// ParabolicPeak refines the integer index i of an extremum in data using its
// neighbours. Indices at either edge are returned unchanged.
func ParabolicPeak(data []float64, i int) float64 {
	if i <= 0 || i >= len(data)-1 {
		return float64(i)
	}
	return float64(i) + ParabolicOffset(data[i-1], data[i], data[i+1])
}
