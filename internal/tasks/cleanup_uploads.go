package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/metrics"
)

// CleanupOrphanUploadsQueue is the queue name of the orphan upload sweep.
const CleanupOrphanUploadsQueue = "cleanup_orphan_uploads"

// ImageReferences lists the upload paths still referenced by books.
type ImageReferences interface {
	ImagePaths() ([]string, error)
}

// OrphanSweeper deletes unreferenced files from the upload directory.
type OrphanSweeper interface {
	SweepOrphans(referenced []string, grace time.Duration) ([]string, error)
}

// CleanupOrphanUploadsTask removes cover images no book points at, such as
// files left behind when an insert failed after the upload was written.
type CleanupOrphanUploadsTask struct {
	// Grace protects files written by adds that are still in flight.
	Grace time.Duration `json:"grace"`
}

// Config returns the queue configuration for upload cleanup tasks.
func (t CleanupOrphanUploadsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        CleanupOrphanUploadsQueue,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SweepOrphanUploads runs one sweep and returns the removed file names.
func SweepOrphanUploads(refs ImageReferences, sweeper OrphanSweeper, grace time.Duration) ([]string, error) {
	referenced, err := refs.ImagePaths()
	if err != nil {
		return nil, fmt.Errorf("list referenced images: %w", err)
	}

	removed, err := sweeper.SweepOrphans(referenced, grace)
	metrics.RecordOrphansRemoved(len(removed))
	if err != nil {
		return removed, fmt.Errorf("sweep uploads: %w", err)
	}
	return removed, nil
}

// CleanupOrphanUploadsProcessor creates a processor function for CleanupOrphanUploadsTask.
func CleanupOrphanUploadsProcessor(refs ImageReferences, sweeper OrphanSweeper) backlite.QueueProcessor[CleanupOrphanUploadsTask] {
	return func(ctx context.Context, task CleanupOrphanUploadsTask) error {
		if refs == nil || sweeper == nil {
			return fmt.Errorf("upload cleanup not configured")
		}

		removed, err := SweepOrphanUploads(refs, sweeper, task.Grace)
		if err != nil {
			return err
		}

		log.Printf("[TASK] Removed %d orphan uploads", len(removed))
		return nil
	}
}

// NewCleanupOrphanUploadsQueue creates a backlite queue for upload cleanup tasks.
func NewCleanupOrphanUploadsQueue(refs ImageReferences, sweeper OrphanSweeper) backlite.Queue {
	return backlite.NewQueue(CleanupOrphanUploadsProcessor(refs, sweeper))
}
