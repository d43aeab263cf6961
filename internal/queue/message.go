package queue

import (
	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene"
)

// ExtractJobMsg asks the worker to build a graph from a stored upload or
// from a web page.
type ExtractJobMsg struct {
	JobID     string `json:"job_id"`
	FileKey   string `json:"file_key,omitempty"`
	FileName  string `json:"file_name"`
	SourceURL string `json:"source_url,omitempty"`
	Strategy  string `json:"strategy,omitempty"`
}

// GraphCompletedMsg is published on GraphCompletedTopic for a finished job
// and on GraphFailedTopic, with Error set, for a job that was given up.
type GraphCompletedMsg struct {
	JobID string        `json:"job_id"`
	Graph *common.Graph `json:"graph,omitempty"`
	Scene *scene.Scene  `json:"scene,omitempty"`
	Link  string        `json:"link,omitempty"`
	Error string        `json:"error,omitempty"`
}
