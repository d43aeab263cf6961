package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	gUtil "github.com/OFFIS-RIT/synthetix/backend/internal/util"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Extract builds a graph from text. Units are extracted concurrently, but
// the merge runs in unit order so equal model answers give equal graphs.
func (g *GraphClient) Extract(
	ctx context.Context,
	text string,
	filename string,
	opts extract.Options,
) (*common.Graph, error) {
	start := time.Now()
	opts.Report(5, "Splitting text...")

	units, err := transformIntoUnits(text, g.tokenEncoder, g.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to split text into units: %w", err)
	}
	if len(units) == 0 {
		return nil, extract.ErrNoConceptsFound
	}

	maxConcepts := g.maxConcepts
	if opts.MaxConcepts > 0 {
		maxConcepts = opts.MaxConcepts
	}
	baseName := filepath.Base(filename)

	opts.Report(10, fmt.Sprintf("Extracting concepts from %d sections...", len(units)))

	results := make([]*extractResponse, len(units))
	var (
		progressMu sync.Mutex
		done       int
	)

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.parallelAiRequests)
	for i, unit := range units {
		eg.Go(func() error {
			res, err := gUtil.RetryWithContext(gCtx, g.maxRetries, func(ctx context.Context) (*extractResponse, error) {
				return extractFromUnit(ctx, unit, baseName, maxConcepts, g.aiClient)
			})
			if err != nil {
				return fmt.Errorf("failed to extract concepts from unit %s: %w", unit.id, err)
			}
			results[i] = res

			progressMu.Lock()
			done++
			opts.Report(10+80*done/len(units), fmt.Sprintf("Extracted %d of %d sections...", done, len(units)))
			progressMu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	opts.Report(92, "Merging concepts...")
	concepts := mergeConcepts(results)
	aliases := map[string]string{}
	if g.dedupe && len(units) > 1 {
		deduped, dedupeAliases, err := g.dedupeConcepts(ctx, concepts)
		if err != nil {
			logger.Warn("[Graph] Concept deduplication failed, keeping concepts as extracted", "err", err)
		} else {
			concepts, aliases = deduped, dedupeAliases
		}
	}
	concepts = capConcepts(concepts, maxConcepts)
	if len(concepts) == 0 {
		return nil, extract.ErrNoConceptsFound
	}

	opts.Report(96, "Building graph...")
	graph := extract.Finalize(
		extract.TitleFromFilename(filename),
		conceptDrafts(concepts),
		mergeRelations(results, aliases),
		maxConcepts,
		opts.MaxRelations,
	)

	logger.Info(
		"[Graph] Extracted graph",
		"file", baseName,
		"units", len(units),
		"concepts", len(graph.Concepts),
		"relations", len(graph.Relations),
		"duration", time.Since(start),
	)
	return graph, nil
}
