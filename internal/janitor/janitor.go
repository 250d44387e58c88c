package janitor

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper removes scratch files older than maxAge.
type Sweeper interface {
	Sweep(maxAge time.Duration) (int, error)
}

// Janitor periodically sweeps the scratch directories. Per-request cleanup
// handles the normal case; the janitor only collects leftovers of crashed
// runs.
type Janitor struct {
	cron     *cron.Cron
	store    Sweeper
	schedule string
	maxAge   time.Duration
}

func New(store Sweeper, schedule string, maxAge time.Duration) *Janitor {
	return &Janitor{
		cron:     cron.New(),
		store:    store,
		schedule: schedule,
		maxAge:   maxAge,
	}
}

func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	log.Printf("🧹 Janitor scheduled (%s, max age %s)", j.schedule, j.maxAge)
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

func (j *Janitor) sweep() {
	removed, err := j.store.Sweep(j.maxAge)
	if err != nil {
		log.Printf("⚠️ Janitor sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("🧹 Janitor removed %d orphaned scratch files", removed)
	}
}
