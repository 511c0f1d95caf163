package media

// Buffer is a simple non-concurrent safe ring buffer for audio samples.
// It gathers arbitrarily sized sample blocks into fixed-size frames.
type Buffer struct {
	s  []int16
	wi int
}

func NewBuffer(frameLen int) Buffer { return Buffer{s: make([]int16, frameLen)} }

// Write fills the buffer until it's full and then passes the gathered data
// into a callback.
//
// There are two cases to consider:
// 1. Underflow, when the length of the written data is less than the buffer's available space.
// 2. Overflow, when the length exceeds the current available buffer space.
//
// We overwrite any previous values in the buffer and move the internal write
// pointer by the length of the written data. In the first case, we won't call
// the callback, but it will be called every time the internal buffer
// overflows until all samples are read.
func (b *Buffer) Write(s []int16, onFull func([]int16)) (r int) {
	for r < len(s) {
		w := copy(b.s[b.wi:], s[r:])
		r += w
		b.wi += w
		if b.wi == len(b.s) {
			b.wi = 0
			onFull(b.s)
		}
	}
	return
}
