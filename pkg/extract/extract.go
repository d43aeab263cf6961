package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
)

// MinTextLength is the minimum number of characters a document needs after
// trimming before a graph is extracted from it.
const MinTextLength = 50

// DefaultRelationLabel is used for relations without a label.
const DefaultRelationLabel = "relates to"

var (
	ErrTextTooShort     = errors.New("text is empty or too short")
	ErrUnknownStrategy  = errors.New("unknown extraction strategy")
	ErrNoConceptsFound  = errors.New("no concepts found")
	ErrExtractorMissing = errors.New("extractor is nil")
)

// ProgressFunc receives progress updates in percent together with a human
// readable stage.
type ProgressFunc func(progress int, stage string)

// Options tunes a single extraction. Zero values select the defaults of the
// strategy.
type Options struct {
	MaxConcepts  int
	MaxRelations int
	Progress     ProgressFunc
}

// Report forwards a progress update if a ProgressFunc is set.
func (o Options) Report(progress int, stage string) {
	if o.Progress != nil {
		o.Progress(progress, stage)
	}
}

// Extractor turns document text into a knowledge graph.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, text, filename string, opts Options) (*common.Graph, error)
}

// ValidateText rejects documents that contain too little text.
func ValidateText(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinTextLength {
		return fmt.Errorf("%w: need at least %d characters", ErrTextTooShort, MinTextLength)
	}
	return nil
}
