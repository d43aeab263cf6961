package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/OFFIS-RIT/synthetix/backend/internal/queue"
	"github.com/OFFIS-RIT/synthetix/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CreateJobHandler queues an extraction for the worker. Uploads are stored
// first; URLs are fetched by the worker. The result is announced on the
// graph.completed topic under the returned job id.
func CreateJobHandler(c echo.Context) error {
	type createJobResponse struct {
		Message string `json:"message"`
		JobID   string `json:"job_id,omitempty"`
	}

	app := c.(*middleware.AppContext).App
	if app.Queue == nil {
		return c.JSON(http.StatusServiceUnavailable, createJobResponse{Message: "Jobs are disabled"})
	}

	data := new(sourceRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{Message: "Invalid request body"})
	}
	if _, err := app.Extractors.Get(data.Strategy); err != nil {
		return c.JSON(http.StatusBadRequest, createJobResponse{Message: err.Error()})
	}

	ctx := c.Request().Context()
	job := queue.ExtractJobMsg{
		JobID:    gonanoid.Must(),
		Strategy: data.Strategy,
	}

	switch fh := formFile(c); {
	case fh != nil:
		if app.Store == nil {
			return c.JSON(http.StatusServiceUnavailable, createJobResponse{Message: "Uploads are disabled"})
		}
		if _, err := loader.DetectFileType(fh.Filename); err != nil {
			return c.JSON(http.StatusBadRequest, createJobResponse{Message: err.Error()})
		}
		content, err := readUpload(fh)
		if err != nil {
			return c.JSON(statusOf(err), createJobResponse{Message: err.Error()})
		}

		key, err := app.Store.PutFile(ctx, "uploads", fh.Filename, job.JobID, bytes.NewReader(content))
		if err != nil {
			logger.Error("[Server] Failed to store upload", "job_id", job.JobID, "err", err)
			return c.JSON(http.StatusInternalServerError, createJobResponse{Message: "Internal server error"})
		}
		job.FileKey = key
		job.FileName = filepath.Base(fh.Filename)
	case data.URL != "":
		if _, err := loader.DetectFileType(data.URL); err != nil {
			return c.JSON(http.StatusBadRequest, createJobResponse{Message: err.Error()})
		}
		job.SourceURL = data.URL
		job.FileName = data.Filename
	default:
		return c.JSON(http.StatusBadRequest, createJobResponse{Message: errNoSource.Error()})
	}

	msg, err := json.Marshal(job)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createJobResponse{Message: "Internal server error"})
	}
	if err := queue.PublishFIFO(app.Queue, queue.ExtractQueue, msg); err != nil {
		logger.Error("[Server] Failed to queue job", "job_id", job.JobID, "err", err)
		return c.JSON(http.StatusInternalServerError, createJobResponse{Message: "Internal server error"})
	}

	logger.Info("[Server] Queued extraction job", "job_id", job.JobID)
	return c.JSON(http.StatusAccepted, createJobResponse{Message: "Job queued", JobID: job.JobID})
}
