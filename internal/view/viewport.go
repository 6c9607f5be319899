package view

// Viewport windows the filtered sequence into height rows. offset is the
// filtered index of the top row and is kept in [0, MaxOffset()] after
// every mutation.
type Viewport struct {
	offset int
	height int
	count  int
	tail   bool
}

// New returns a viewport in tail mode.
func New(height int) *Viewport {
	v := &Viewport{tail: true}
	v.Resize(height)
	return v
}

func (v *Viewport) Offset() int { return v.offset }
func (v *Viewport) Height() int { return v.height }
func (v *Viewport) Count() int { return v.count }
func (v *Viewport) Tail() bool { return v.tail }

// MaxOffset is max(0, count-height); a zero-height viewport never scrolls.
func (v *Viewport) MaxOffset() int {
	if v.height <= 0 || v.count <= v.height {
		return 0
	}
	return v.count - v.height
}

func (v *Viewport) AtBottom() bool { return v.offset >= v.MaxOffset() }

// Window returns the half-open range of filtered indices on screen.
func (v *Viewport) Window() (start, end int) {
	if v.height <= 0 || v.count == 0 {
		return 0, 0
	}
	end = v.offset + v.height
	if end > v.count {
		end = v.count
	}
	return v.offset, end
}

func (v *Viewport) clamp() {
	if hi := v.MaxOffset(); v.offset > hi {
		v.offset = hi
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

// settle applies a user scroll: tail mode follows whether the scroll
// ended at the bottom.
func (v *Viewport) settle() {
	v.clamp()
	v.tail = v.AtBottom()
}

func (v *Viewport) ScrollBy(delta int) {
	v.offset += delta
	v.settle()
}

func (v *Viewport) page() int {
	if v.height > 1 {
		return v.height
	}
	return 1
}

func (v *Viewport) PageUp()   { v.ScrollBy(-v.page()) }
func (v *Viewport) PageDown() { v.ScrollBy(v.page()) }

func (v *Viewport) ScrollToTop() {
	v.offset = 0
	v.settle()
}

func (v *Viewport) ScrollToBottom() {
	v.offset = v.MaxOffset()
	v.tail = true
}

// SetFollow turns tail mode on (jumping to the bottom) or off (pausing in
// place).
func (v *Viewport) SetFollow(on bool) {
	if on {
		v.ScrollToBottom()
		return
	}
	v.tail = false
}

// SetCount records a new filtered length after appends. In tail mode the
// newest row stays on screen; otherwise the top row stays put.
func (v *Viewport) SetCount(n int) {
	if n < 0 {
		n = 0
	}
	v.count = n
	if v.tail {
		v.offset = v.MaxOffset()
		return
	}
	v.clamp()
}

// Resize keeps the bottom edge anchored in tail mode and the top edge
// otherwise.
func (v *Viewport) Resize(height int) {
	if height < 0 {
		height = 0
	}
	v.height = height
	if v.tail {
		v.offset = v.MaxOffset()
		return
	}
	v.clamp()
}

// AnchorAt is used after a filter change: the filtered length becomes n and,
// unless tailing, the row at filtered index top is placed at the top.
func (v *Viewport) AnchorAt(n, top int) {
	if n < 0 {
		n = 0
	}
	v.count = n
	if v.tail {
		v.offset = v.MaxOffset()
		return
	}
	v.offset = top
	v.clamp()
}

// JumpTo places filtered index i at the top and leaves tail mode unless that
// position is also the bottom.
func (v *Viewport) JumpTo(i int) {
	v.offset = i
	v.settle()
}
