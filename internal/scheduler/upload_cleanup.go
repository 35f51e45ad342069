package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/tasks"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Enqueuer hands a task to the background queue.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// UploadCleanupScheduler periodically enqueues the orphan upload sweep.
type UploadCleanupScheduler struct {
	queue  Enqueuer
	config config.UploadCleanup

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewUploadCleanupScheduler(queue Enqueuer, cfg config.UploadCleanup) *UploadCleanupScheduler {
	return &UploadCleanupScheduler{
		queue:  queue,
		config: cfg,
		cron:   cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler if the sweep is enabled.
func (s *UploadCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("[SCHEDULER] Upload cleanup: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.config.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunNow(); err != nil {
			log.Printf("[SCHEDULER] Upload cleanup: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule upload cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SCHEDULER] Upload cleanup: started with schedule '%s'. Next run: %v",
		s.config.Schedule, s.nextRunLocked())

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *UploadCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("[SCHEDULER] Upload cleanup: stopped")
}

// RunNow enqueues a sweep immediately and returns the task ID.
func (s *UploadCleanupScheduler) RunNow() (string, error) {
	id, err := s.queue.Enqueue(tasks.CleanupOrphanUploadsTask{Grace: s.config.Grace})
	if err != nil {
		return "", err
	}
	log.Printf("[SCHEDULER] Upload cleanup: enqueued task %s", id)
	return id, nil
}

func (s *UploadCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sweep will be enqueued, or nil when
// the scheduler is not running.
func (s *UploadCleanupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	return s.nextRunLocked()
}

func (s *UploadCleanupScheduler) nextRunLocked() *time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			if t.IsZero() {
				// The cron loop fills Next asynchronously after Start
				next := entry.Schedule.Next(time.Now())
				return &next
			}
			return &t
		}
	}
	return nil
}
