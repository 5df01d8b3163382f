package loading

import "sort"

// Progress is a loaded/total handle count.
type Progress struct {
	Done  int
	Total int
}

// Fraction is Done/Total, 1 when nothing is tracked.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

func (p Progress) Add(o Progress) Progress {
	return Progress{Done: p.Done + o.Done, Total: p.Total + o.Total}
}

// ProgressSink receives the progress of a phase run once per tick.
type ProgressSink interface {
	Report(phase string, p Progress)
}

type ProgressSinkFunc func(phase string, p Progress)

func (f ProgressSinkFunc) Report(phase string, p Progress) {
	f(phase, p)
}

// Counter sums the latest progress of every phase reporting to it, so one
// loading screen can follow several state families at once.
type Counter struct {
	phases map[string]Progress
}

func NewCounter() *Counter {
	return &Counter{phases: make(map[string]Progress)}
}

func (c *Counter) Report(phase string, p Progress) {
	c.phases[phase] = p
}

// Total sums every phase.
func (c *Counter) Total() Progress {
	var total Progress
	for _, p := range c.phases {
		total = total.Add(p)
	}
	return total
}

// Phase returns the last progress reported by one phase.
func (c *Counter) Phase(phase string) (Progress, bool) {
	p, ok := c.phases[phase]
	return p, ok
}

func (c *Counter) Phases() []string {
	names := make([]string, 0, len(c.phases))
	for name := range c.phases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset forgets every phase.
func (c *Counter) Reset() {
	clear(c.phases)
}
