package http

import (
	"context"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/entities"
)

// This file consolidates the interfaces HTTP controllers depend on.

// BookReader provides read access for the JSON API.
type BookReader interface {
	ListBooks() ([]entities.Book, error)
	SearchByTitle(query string) ([]entities.Book, error)
}

// Pinger reports storage connectivity for health checks.
type Pinger interface {
	Ping() error
}

// CleanupRunner enqueues an orphan upload sweep.
type CleanupRunner interface {
	RunNow() (string, error)
}

// TaskStatusReader looks up queued task status.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}
