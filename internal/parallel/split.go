package parallel

// Span is a half-open index range [Start, End).
type Span struct {
	Start, End int
}

// Len returns the number of indices in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Split divides n items into at most parts contiguous spans whose lengths
// differ by at most one. The first n%parts spans get the extra item. Empty
// spans are never returned.
func Split(n, parts int) []Span {
	if n <= 0 {
		return nil
	}
	if parts <= 0 {
		parts = 1
	}
	if parts > n {
		parts = n
	}

	spans := make([]Span, parts)
	base, extra := n/parts, n%parts
	start := 0
	for i := range parts {
		size := base
		if i < extra {
			size++
		}
		spans[i] = Span{Start: start, End: start + size}
		start += size
	}
	return spans
}
