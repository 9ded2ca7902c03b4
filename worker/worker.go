package worker

import (
	"context"
)

// Worker long running worker
type Worker interface {
	Run(ctx context.Context) error
}
