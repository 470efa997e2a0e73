package buffer

// Window is a circular buffer of float64 samples with the ability to iterate
// over the first and second halves of the values collected, in the order that
// they were appended. Split convergence checks compare the two halves of a
// chain's recent scalar history.
type Window struct {
	buffer    []float64 // actual storage
	pos       int       // Current position in buffer
	BufSize   int       // BufSize is the fixed number of samples maintained in memory
	Count     int       // Count is the number of samples in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewWindow creates a new circular window of totalSize. If totalSize is not a
// multiple of 2, it will be adjusted.
func NewWindow(totalSize int) *Window {
	// Fix odd number situations
	half := totalSize / 2
	total := half + half

	return &Window{
		buffer:  make([]float64, total),
		pos:     0,
		BufSize: total,
		Count:   0,
	}
}

// Internal: return the next array position
func (w *Window) nextPos() int {
	return (w.pos + 1) % w.BufSize
}

// Add appends the given sample to the window, overwriting the oldest entry
func (w *Window) Add(v float64) {
	w.TotalSeen++

	w.buffer[w.pos] = v

	w.pos = w.nextPos()

	w.Count++
	if w.Count > w.BufSize {
		w.Count = w.BufSize // max out
	}
}

// Full returns true once Add has been called at least BufSize times
func (w *Window) Full() bool {
	return w.Count >= w.BufSize
}

// FirstHalf returns an iterator over the first (oldest) half of the stored
// values. Will not return a valid iterator until the window is Full
func (w *Window) FirstHalf() *WindowIterator {
	if !w.Full() {
		return nil
	}

	return &WindowIterator{
		buf:    w,
		curr:   w.pos, // Oldest is the one we're about to write
		remain: w.BufSize / 2,
	}
}

// SecondHalf returns an iterator over the second (most recent) half of the
// stored values. Will not return a valid iterator until the window is Full
func (w *Window) SecondHalf() *WindowIterator {
	if !w.Full() {
		return nil
	}

	half := w.BufSize / 2
	pos := (w.pos + half) % w.BufSize

	return &WindowIterator{
		buf:    w,
		curr:   pos,
		remain: half,
	}
}

// WindowIterator provides an iterator over one half of a Window
type WindowIterator struct {
	buf    *Window
	curr   int
	remain int
}

// Next returns True when there are more values to read via Value
func (i *WindowIterator) Next() bool {
	return i.remain > 0
}

// Value returns the next sample to be read. Should only be called if Next()
// is True
func (i *WindowIterator) Value() float64 {
	v := i.buf.buffer[i.curr]
	i.curr = (i.curr + 1) % i.buf.BufSize
	i.remain--
	return v
}
