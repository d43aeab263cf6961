package graph

import (
	"errors"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
)

const (
	// Name is the registry name of the AI extraction strategy.
	Name = "ai"

	DefaultTokenEncoder       = "o200k_base"
	DefaultMaxTokens          = 2000
	DefaultParallelAiRequests = 4
	DefaultMaxRetries         = 3
	DefaultMaxConcepts        = 60
)

// GraphClient extracts knowledge graphs with a language model. Documents
// are split into token limited units which are extracted in parallel and
// merged into one graph.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	tokenEncoder       string
	maxTokens          int
	parallelAiRequests int
	maxRetries         int
	maxConcepts        int
	dedupe             bool

	aiClient ai.GraphAIClient
}

var _ extract.Extractor = (*GraphClient)(nil)

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// TokenEncoder is the tiktoken encoding used to size units and MaxTokens the
// size of a unit. ParallelAiRequests controls how many units are extracted
// concurrently. Dedupe enables a final AI pass that merges concepts named
// differently by different units.
type NewGraphClientParams struct {
	TokenEncoder       string
	MaxTokens          int
	ParallelAiRequests int
	MaxRetries         int
	MaxConcepts        int
	Dedupe             bool

	AIClient ai.GraphAIClient
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters. Zero values are replaced by defaults.
//
// Example:
//
//	params := graph.NewGraphClientParams{
//		TokenEncoder:       "o200k_base",
//		ParallelAiRequests: 8,
//		AIClient:           aiClient,
//	}
//	client, err := graph.NewGraphClient(params)
//	if err != nil {
//		log.Fatal(err)
//	}
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	if params.AIClient == nil {
		return nil, errors.New("graph client requires an ai client")
	}

	g := &GraphClient{
		tokenEncoder:       params.TokenEncoder,
		maxTokens:          params.MaxTokens,
		parallelAiRequests: params.ParallelAiRequests,
		maxRetries:         params.MaxRetries,
		maxConcepts:        params.MaxConcepts,
		dedupe:             params.Dedupe,
		aiClient:           params.AIClient,
	}
	if g.tokenEncoder == "" {
		g.tokenEncoder = DefaultTokenEncoder
	}
	if g.maxTokens <= 0 {
		g.maxTokens = DefaultMaxTokens
	}
	if g.parallelAiRequests <= 0 {
		g.parallelAiRequests = DefaultParallelAiRequests
	}
	if g.maxRetries <= 0 {
		g.maxRetries = DefaultMaxRetries
	}
	if g.maxConcepts <= 0 {
		g.maxConcepts = DefaultMaxConcepts
	}

	return g, nil
}

func (g *GraphClient) Name() string {
	return Name
}
