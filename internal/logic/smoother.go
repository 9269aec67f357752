package logic

// Smoother is a fixed-capacity circular history over the most recent raw
// samples with an O(1) running mean. Until the window fills, the mean is
// taken over however many samples have been admitted (no zero padding).
// Not safe for concurrent use — only the control loop touches it.
type Smoother struct {
	buf   []int
	head  int // next write position
	count int
	sum   int
}

// NewSmoother creates a Smoother averaging over the given window size.
// window must be >= 1; this is a configuration-time invariant validated
// by the config package, not rechecked here.
func NewSmoother(window int) *Smoother {
	return &Smoother{buf: make([]int, window)}
}

// Admit records a raw sample, evicting the oldest if the window is full,
// and returns the integer mean of the currently held samples.
func (s *Smoother) Admit(raw int) int {
	if s.count == len(s.buf) {
		s.sum -= s.buf[s.head]
	} else {
		s.count++
	}
	s.buf[s.head] = raw
	s.head = (s.head + 1) % len(s.buf)
	s.sum += raw
	return s.sum / s.count
}

// Value returns the current mean, or 0 before any sample was admitted.
func (s *Smoother) Value() int {
	if s.count == 0 {
		return 0
	}
	return s.sum / s.count
}

// Count returns how many samples are currently held.
func (s *Smoother) Count() int {
	return s.count
}
