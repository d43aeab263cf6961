package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/layout"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader/source"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene/echarts"
)

// ErrPermanent marks failures that will not go away on redelivery.
var ErrPermanent = errors.New("permanent failure")

func permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// FileStore keeps rendered graphs.
type FileStore interface {
	PutFile(ctx context.Context, path, name, key string, file io.ReadSeeker) (string, error)
	GenerateDownloadLink(ctx context.Context, key string) (string, error)
}

// Processor turns extraction jobs into graphs and announces the results.
type Processor struct {
	files      loader.FileLoader
	web        loader.FileLoader
	extractors *extract.Registry
	engine     *layout.Engine
	viewport   layout.Viewport
	options    extract.Options
	store      FileStore
	publisher  Publisher
}

// NewProcessorParams defines the collaborators of a Processor.
//
// Files loads uploaded documents by their object key and Web loads
// documents by URL. Store is optional; without it no rendered page is
// linked in the result.
type NewProcessorParams struct {
	Files      loader.FileLoader
	Web        loader.FileLoader
	Extractors *extract.Registry
	Engine     *layout.Engine
	Viewport   layout.Viewport
	Options    extract.Options
	Store      FileStore
	Publisher  Publisher
}

func NewProcessor(params NewProcessorParams) (*Processor, error) {
	if params.Extractors == nil {
		return nil, errors.New("processor requires an extractor registry")
	}
	if params.Publisher == nil {
		return nil, errors.New("processor requires a publisher")
	}
	if params.Engine == nil {
		params.Engine = layout.NewEngine(layout.DefaultParams())
	}
	if params.Viewport == (layout.Viewport{}) {
		params.Viewport = layout.DefaultViewport()
	}

	return &Processor{
		files:      params.Files,
		web:        params.Web,
		extractors: params.Extractors,
		engine:     params.Engine,
		viewport:   params.Viewport,
		options:    params.Options,
		store:      params.Store,
		publisher:  params.Publisher,
	}, nil
}

// ProcessExtractMessage handles one message of ExtractQueue. Errors wrapping
// ErrPermanent should not be retried.
func (p *Processor) ProcessExtractMessage(ctx context.Context, msg []byte) error {
	var job ExtractJobMsg
	if err := json.Unmarshal(msg, &job); err != nil {
		return permanent(fmt.Errorf("failed to decode job: %w", err))
	}
	if job.JobID == "" {
		return permanent(errors.New("job has no id"))
	}

	start := time.Now()
	logger.Info("[Queue] Processing extraction job", "job_id", job.JobID, "strategy", job.Strategy)

	path, raw := job.FileKey, p.files
	if job.SourceURL != "" {
		path, raw = job.SourceURL, p.web
	}
	if path == "" || raw == nil {
		return permanent(fmt.Errorf("job %s has no loadable source", job.JobID))
	}

	file, err := source.New(job.JobID, path, raw)
	if err != nil {
		return permanent(err)
	}
	text, err := file.GetText(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := extract.ValidateText(string(text)); err != nil {
		return permanent(err)
	}

	ex, err := p.extractors.Get(job.Strategy)
	if err != nil {
		return permanent(err)
	}

	filename := job.FileName
	if filename == "" {
		filename = filepath.Base(path)
	}

	opts := p.options
	opts.Progress = func(progress int, stage string) {
		logger.Debug("[Queue] Extraction progress", "job_id", job.JobID, "progress", progress, "stage", stage)
	}

	g, err := ex.Extract(ctx, string(text), filename, opts)
	if err != nil {
		if errors.Is(err, extract.ErrNoConceptsFound) {
			return permanent(err)
		}
		return fmt.Errorf("failed to extract graph: %w", err)
	}

	sc := scene.Compose(g, "", p.engine, p.viewport)
	result := GraphCompletedMsg{
		JobID: job.JobID,
		Graph: g,
		Scene: &sc,
	}

	if p.store != nil {
		link, err := p.storeScene(ctx, job.JobID, sc)
		if err != nil {
			logger.Warn("[Queue] Failed to store rendered graph", "job_id", job.JobID, "err", err)
		}
		result.Link = link
	}

	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if err := PublishTopic(p.publisher, GraphCompletedTopic, body); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}

	logger.Info(
		"[Queue] Extraction job finished",
		"job_id", job.JobID,
		"concepts", len(g.Concepts),
		"relations", len(g.Relations),
		"duration", time.Since(start),
	)
	return nil
}

func (p *Processor) storeScene(ctx context.Context, jobID string, sc scene.Scene) (string, error) {
	var buf bytes.Buffer
	if err := echarts.Render(&buf, sc); err != nil {
		return "", err
	}
	key, err := p.store.PutFile(ctx, "graphs", "graph.html", jobID, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", err
	}
	return p.store.GenerateDownloadLink(ctx, key)
}
