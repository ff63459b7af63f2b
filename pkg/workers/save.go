package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/settlers/pkg/log"
	"github.com/cbodonnell/settlers/pkg/repositories"
	"github.com/cbodonnell/settlers/pkg/repositories/models"
)

// DefaultSaveTimeout bounds a single repository write
const DefaultSaveTimeout = 10 * time.Second

type SaveMatchResultWorker struct {
	repository          repositories.Repository
	saveMatchResultChan <-chan SaveMatchResultRequest
	timeout             time.Duration
}

type NewSaveMatchResultWorkerOptions struct {
	Repository          repositories.Repository
	SaveMatchResultChan <-chan SaveMatchResultRequest
	Timeout             time.Duration
}

type SaveMatchResultRequest struct {
	Result *models.MatchResult
}

// NewSaveMatchResultWorker creates a new SaveMatchResultWorker.
// The worker stores the results of finished matches sent by the game loop.
func NewSaveMatchResultWorker(opts NewSaveMatchResultWorkerOptions) *SaveMatchResultWorker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultSaveTimeout
	}
	return &SaveMatchResultWorker{
		repository:          opts.Repository,
		saveMatchResultChan: opts.SaveMatchResultChan,
		timeout:             opts.Timeout,
	}
}

func (w *SaveMatchResultWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case saveRequest := <-w.saveMatchResultChan:
			w.saveMatchResult(ctx, saveRequest)
		}
	}
}

func (w *SaveMatchResultWorker) saveMatchResult(ctx context.Context, saveRequest SaveMatchResultRequest) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.repository.SaveMatchResult(ctx, saveRequest.Result); err != nil {
		log.Error("Failed to save match result for session %s: %v", saveRequest.Result.SessionID, err)
		return
	}
	log.Info("Saved match result for session %s", saveRequest.Result.SessionID)
}
