package firmware

import (
	"sync"
	"time"
)

// Restarter reboots the controller into a freshly committed image.
type Restarter interface {
	Restart()
}

// DelayedRestarter calls Fn once, Delay after the first Restart call,
// leaving time for the final response to reach the client.
type DelayedRestarter struct {
	Delay time.Duration
	Fn    func()

	once sync.Once
}

// Restart schedules the restart.
func (r *DelayedRestarter) Restart() {
	r.once.Do(func() {
		time.AfterFunc(r.Delay, r.Fn)
	})
}
