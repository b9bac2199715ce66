package discovery

import "time"

// LoopState is the mutable state carried between continuous cycles. It is
// owned by the goroutine running the loop.
type LoopState struct {
	Cycle               int
	Cursor              int
	ConsecutiveFailures int
	LastCycleAt         time.Time
	LastStats           CycleStats
}

// CycleStats counts what one pass did.
type CycleStats struct {
	Products       int
	Keywords       int
	Videos         int
	AlreadyLinked  int
	RateLimited    int
	ClassifyFailed int
	Rejected       int
	Indexed        int
	Linked         int
	Errors         int
}

func (s CycleStats) Map() map[string]int {
	return map[string]int{
		"products":        s.Products,
		"keywords":        s.Keywords,
		"videos":          s.Videos,
		"already_linked":  s.AlreadyLinked,
		"rate_limited":    s.RateLimited,
		"classify_failed": s.ClassifyFailed,
		"rejected":        s.Rejected,
		"indexed":         s.Indexed,
		"linked":          s.Linked,
		"errors":          s.Errors,
	}
}

// advance moves the catalog cursor past a batch of n products. A short batch
// means the end of the catalog was reached, so the next cycle starts over.
func (s *LoopState) advance(n, batch int) {
	if n < batch {
		s.Cursor = 0
		return
	}
	s.Cursor += n
}
