package database

type scanBuffers struct {
	vals []any
	ptrs []any
}

// prepare sizes the buffers for a row of n columns and points ptrs at vals.
func (sb *scanBuffers) prepare(n int) {
	if cap(sb.vals) < n {
		sb.vals = make([]any, n)
		sb.ptrs = make([]any, n)
	}
	sb.vals = sb.vals[:n]
	sb.ptrs = sb.ptrs[:n]
	for i := range sb.vals {
		sb.vals[i] = nil
		sb.ptrs[i] = &sb.vals[i]
	}
}
