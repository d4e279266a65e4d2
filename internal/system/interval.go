package system

import "time"

// interval fires once every period of accumulated tick time. A zero period
// never fires.
type interval struct {
	period  time.Duration
	elapsed time.Duration
}

func (i *interval) due(dt time.Duration) bool {
	if i.period <= 0 {
		return false
	}
	i.elapsed += dt
	if i.elapsed < i.period {
		return false
	}
	i.elapsed -= i.period
	if i.elapsed >= i.period {
		i.elapsed = 0 // drop missed periods after a stall
	}
	return true
}
