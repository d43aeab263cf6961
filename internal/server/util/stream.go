package util

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/extract"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/layout"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/scene"
)

// StreamPayload is the wire form of an extraction event. The terminal
// event carries either the graph with its scene or an error.
type StreamPayload struct {
	Progress int           `json:"progress"`
	Stage    string        `json:"stage,omitempty"`
	Graph    *common.Graph `json:"graph,omitempty"`
	Scene    *scene.Scene  `json:"scene,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Done reports whether the payload ends the stream.
func (p StreamPayload) Done() bool {
	return p.Graph != nil || p.Error != ""
}

// PayloadFor converts an event. A terminal graph is laid out with engine
// into vp.
func PayloadFor(ev extract.Event, engine *layout.Engine, vp layout.Viewport) StreamPayload {
	p := StreamPayload{
		Progress: ev.Progress,
		Stage:    ev.Stage,
		Graph:    ev.Graph,
	}
	if ev.Err != nil {
		p.Error = ev.Err.Error()
	}
	if ev.Graph != nil {
		s := scene.Compose(ev.Graph, "", engine, vp)
		p.Scene = &s
	}
	return p
}

// WriteSSE writes v as one server sent event and flushes it.
func WriteSSE(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
