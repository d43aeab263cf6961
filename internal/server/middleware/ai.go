package middleware

import (
	"fmt"

	"github.com/OFFIS-RIT/synthetix/backend/internal/util"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/ai"
	oai "github.com/OFFIS-RIT/synthetix/backend/pkg/ai/ollama"
	gai "github.com/OFFIS-RIT/synthetix/backend/pkg/ai/openai"
)

// NewAIClientFromEnv creates the AI client selected by AI_ADAPTER. It
// returns nil without error when no model is configured, which leaves the
// AI strategies unavailable.
func NewAIClientFromEnv() (ai.GraphAIClient, error) {
	describeModel := util.GetEnv("AI_CHAT_DESCRIBE_MODEL")
	extractModel := util.GetEnv("AI_CHAT_EXTRACT_MODEL")
	if describeModel == "" && extractModel == "" {
		return nil, nil
	}

	switch adapter := util.GetEnvString("AI_ADAPTER", "openai"); adapter {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			DescriptionModel: describeModel,
			ExtractionModel:  extractModel,

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return client, nil
	case "openai":
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			DescriptionModel: describeModel,
			ExtractionModel:  extractModel,

			ChatURL: util.GetEnv("AI_CHAT_URL"),
			ChatKey: util.GetEnv("AI_CHAT_KEY"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown AI_ADAPTER %q", adapter)
	}
}
