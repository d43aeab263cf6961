package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
)

// Event is a single update of an extraction stream. Exactly one event per
// stream is terminal: it carries either Graph or Err.
type Event struct {
	Progress int           `json:"progress"`
	Stage    string        `json:"stage,omitempty"`
	Graph    *common.Graph `json:"graph,omitempty"`
	Err      error         `json:"-"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Graph != nil || e.Err != nil
}

const streamBuffer = 16

// Stream runs the extractor on its own goroutine and reports its progress
// on the returned channel. The channel receives any number of progress
// events followed by exactly one terminal event and is closed afterwards.
//
// Once ctx is done, progress events are no longer delivered and the stream
// ends with an error event. Callers must drain the channel.
func Stream(ctx context.Context, ex Extractor, text, filename string, opts Options) <-chan Event {
	events := make(chan Event, streamBuffer)

	go func() {
		defer close(events)

		if ex == nil {
			events <- Event{Err: ErrExtractorMissing}
			return
		}
		if err := ValidateText(text); err != nil {
			events <- Event{Err: err}
			return
		}

		var (
			mu       sync.Mutex
			last     = -1
			finished bool
		)
		userProgress := opts.Progress
		opts.Progress = func(progress int, stage string) {
			if userProgress != nil {
				userProgress(progress, stage)
			}

			mu.Lock()
			defer mu.Unlock()
			if finished {
				return
			}
			// progress never goes backwards on the wire
			progress = max(progress, last)
			last = progress
			select {
			case events <- Event{Progress: progress, Stage: stage}:
			case <-ctx.Done():
			}
		}

		graph, err := extractSafely(ctx, ex, text, filename, opts)

		mu.Lock()
		finished = true
		mu.Unlock()

		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err != nil {
			logger.Warn("[Extract] Extraction failed", "strategy", ex.Name(), "file", filename, "err", err)
			events <- Event{Progress: max(last, 0), Err: err}
			return
		}

		logger.Debug("[Extract] Extraction finished", "strategy", ex.Name(), "concepts", len(graph.Concepts), "relations", len(graph.Relations))
		events <- Event{Progress: 100, Stage: "Complete", Graph: graph}
	}()

	return events
}

func extractSafely(ctx context.Context, ex Extractor, text, filename string, opts Options) (graph *common.Graph, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor %s panicked: %v", ex.Name(), r)
		}
	}()

	graph, err = ex.Extract(ctx, text, filename, opts)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, fmt.Errorf("extractor %s returned no graph", ex.Name())
	}
	return graph, nil
}
