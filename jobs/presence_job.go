package jobs

import (
	"log"

	"github.com/robfig/cron/v3"
)

const presenceSweepSpec = "@every 30s"

// Pinger is implemented by the websocket hub.
type Pinger interface {
	PingAll() int
}

// SweepPresence pings every live connection once and drops the dead ones.
func SweepPresence(p Pinger) {
	if dropped := p.PingAll(); dropped > 0 {
		log.Printf("Presence sweep dropped %d stale connection(s)", dropped)
	}
}

// SchedulePresenceSweep registers the sweep on c. The caller starts and stops c.
func SchedulePresenceSweep(c *cron.Cron, p Pinger) (cron.EntryID, error) {
	return c.AddFunc(presenceSweepSpec, func() { SweepPresence(p) })
}
