package service

import "sync"

// Stats counts routing outcomes since the last digest.
type Stats struct {
	mu           sync.Mutex
	counts       map[Outcome]int
	unrecognized int
}

func NewStats() *Stats {
	return &Stats{counts: make(map[Outcome]int)}
}

func (s *Stats) Record(o Outcome) {
	s.mu.Lock()
	s.counts[o]++
	s.mu.Unlock()
}

// RecordUnrecognized counts voice messages that produced no text.
func (s *Stats) RecordUnrecognized() {
	s.mu.Lock()
	s.unrecognized++
	s.mu.Unlock()
}

// StatsSnapshot is a frozen copy of the counters.
type StatsSnapshot struct {
	Saved         int
	Cards         int
	CardFailures  int
	SheetFailures int
	Unconfigured  int
	Unrecognized  int
}

// Total is the number of notes that reached the router.
func (s StatsSnapshot) Total() int {
	return s.Saved + s.Cards + s.CardFailures + s.SheetFailures + s.Unconfigured
}

// Take returns the counters and resets them.
func (s *Stats) Take() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := StatsSnapshot{
		Saved:         s.counts[OutcomeSaved],
		Cards:         s.counts[OutcomeSavedWithCard],
		CardFailures:  s.counts[OutcomeCardFailed],
		SheetFailures: s.counts[OutcomePrimaryFailed],
		Unconfigured:  s.counts[OutcomeNoDestination],
		Unrecognized:  s.unrecognized,
	}
	s.counts = make(map[Outcome]int)
	s.unrecognized = 0
	return snap
}
