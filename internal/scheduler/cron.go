package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"civicnews/internal/cache"
)

// defaultSweepSpec is used when the configured spec does not parse.
const defaultSweepSpec = "0 * * * *"

// Scheduler owns the periodic sweep of aged persistent cache rows. Running it
// on a timer instead of piggybacking on requests keeps its failures visible
// and its absence testable.
type Scheduler struct {
	cron         *cron.Cron
	store        *cache.Store
	sweepSpec    string
	sweepAge     time.Duration
	sweepEntryID cron.EntryID
}

func NewScheduler(store *cache.Store, sweepSpec string, sweepAge time.Duration) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		store:     store,
		sweepSpec: sweepSpec,
		sweepAge:  sweepAge,
	}
}

func (s *Scheduler) Start() {
	id, err := s.cron.AddFunc(s.sweepSpec, s.sweep)
	if err != nil {
		log.Printf("[Cron] invalid sweep spec %q: %v, falling back to %q", s.sweepSpec, err, defaultSweepSpec)
		s.sweepSpec = defaultSweepSpec
		if id, err = s.cron.AddFunc(s.sweepSpec, s.sweep); err != nil {
			log.Printf("[Cron] cache sweep not scheduled: %v", err)
		}
	}
	s.sweepEntryID = id

	s.cron.Start()
	log.Printf("[Cron] Scheduler started (sweep: %s, max age: %s)", s.sweepSpec, s.sweepAge)
}

func (s *Scheduler) sweep() {
	n, err := s.store.SweepOlderThan(s.sweepAge)
	if err != nil {
		log.Printf("[Cron] cache sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[Cron] swept %d aged cache rows", n)
	}
}

// NextSweepTime reports when the next sweep will run, or the zero time if no
// sweep could be scheduled.
func (s *Scheduler) NextSweepTime() time.Time {
	if s.sweepEntryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.sweepEntryID).Next
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
