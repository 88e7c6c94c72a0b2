package watch

import (
	"path/filepath"
	"strings"
	"time"
)

// ewmaAlpha is the smoothing factor for per-path inter-event intervals.
const ewmaAlpha = 0.3

// Coalescer folds bursts of file events into single signals. An event
// arriving while idle starts an accumulation window of the base delay;
// further events extend the window, so a burst that keeps arriving
// keeps the window open. When the window expires the accumulated path
// set is emitted on Signals and the coalescer returns to idle.
//
// Paths matching an ignore pattern never start or extend a window.
//
// Paths that fire rapidly widen their own window: each path keeps an
// exponentially weighted moving average of its inter-event interval,
// and the effective delay grows as that average shrinks, clamped
// between the base delay and base times the multiplier. A multiplier
// of zero or one disables widening.
type Coalescer struct {
	base       time.Duration
	multiplier float64
	ignore     []string

	events  chan string
	signals chan []string
	stopCh  chan struct{}
	doneCh  chan struct{}

	now func() time.Time
}

type pathStats struct {
	last time.Time
	ewma float64 // seconds
}

// NewCoalescer starts a coalescer with the given base delay, adaptive
// multiplier, and ignore patterns. Call Stop when done.
func NewCoalescer(base time.Duration, multiplier float64, ignore []string) *Coalescer {
	c := &Coalescer{
		base:       base,
		multiplier: multiplier,
		ignore:     ignore,
		events:     make(chan string, 256),
		signals:    make(chan []string, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		now:        time.Now,
	}
	go c.run()
	return c
}

// Offer feeds one file event into the coalescer. Ignored paths are
// dropped here, before they can touch the accumulation window.
func (c *Coalescer) Offer(path string) {
	if c.ignored(path) {
		return
	}
	select {
	case c.events <- path:
	case <-c.stopCh:
	}
}

// Signals delivers one accumulated path set per expired window.
func (c *Coalescer) Signals() <-chan []string {
	return c.signals
}

// Stop shuts down the coalescer. A window in progress is discarded.
func (c *Coalescer) Stop() {
	close(c.stopCh)
	<-c.doneCh
}

func (c *Coalescer) run() {
	defer close(c.doneCh)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]struct{})
		stats   = make(map[string]*pathStats)
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	defer stopTimer()

	for {
		select {
		case path := <-c.events:
			pending[path] = struct{}{}
			delay := c.observe(stats, path)
			stopTimer()
			timer = time.NewTimer(delay)
			timerC = timer.C

		case <-timerC:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			pending = make(map[string]struct{})
			timer = nil
			timerC = nil
			select {
			case c.signals <- paths:
			case <-c.stopCh:
				return
			}

		case <-c.stopCh:
			return
		}
	}
}

// observe updates the per-path interval average and returns the delay
// for the window this event opens or extends.
func (c *Coalescer) observe(stats map[string]*pathStats, path string) time.Duration {
	now := c.now()
	st := stats[path]
	if st == nil {
		stats[path] = &pathStats{last: now}
		return c.base
	}
	interval := now.Sub(st.last).Seconds()
	st.last = now
	if st.ewma == 0 {
		st.ewma = interval
	} else {
		st.ewma = ewmaAlpha*interval + (1-ewmaAlpha)*st.ewma
	}
	return c.delayFor(st.ewma)
}

func (c *Coalescer) delayFor(ewmaSeconds float64) time.Duration {
	if c.multiplier <= 1 || ewmaSeconds <= 0 {
		return c.base
	}
	baseSec := c.base.Seconds()
	widened := baseSec * (baseSec / ewmaSeconds)
	if widened < baseSec {
		widened = baseSec
	}
	if max := baseSec * c.multiplier; widened > max {
		widened = max
	}
	return time.Duration(widened * float64(time.Second))
}

// ignored matches a path against the configured patterns. Plain
// patterns (".git/", "__pycache__/") match as substrings the way the
// glob-free majority of ignore lists expect; patterns with glob
// metacharacters match against the basename.
func (c *Coalescer) ignored(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range c.ignore {
		if strings.ContainsAny(pattern, "*?[") {
			if ok, err := filepath.Match(pattern, base); err == nil && ok {
				return true
			}
			continue
		}
		if strings.Contains(path, strings.TrimSuffix(pattern, "/")) {
			return true
		}
	}
	return false
}
