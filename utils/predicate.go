package utils

// FloatFitsInt64 reports whether the integral value f converts to int64 exactly.
// 2^63 itself does not fit, NaN never does.
func FloatFitsInt64(f float64) bool {
	return f >= -(1<<63) && f < 1<<63
}

// FloatFitsUint64 reports whether the integral value f converts to uint64 exactly.
func FloatFitsUint64(f float64) bool {
	return f >= 0 && f < 1<<64
}
