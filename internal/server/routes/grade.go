package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/synthetix/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/common"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/grade"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GradeHandler scores an answer to the socratic question of a concept.
func GradeHandler(c echo.Context) error {
	type gradeBody struct {
		grade.Submission
		Strategy string `json:"strategy"`
	}

	app := c.(*middleware.AppContext).App

	data := new(gradeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := data.Submission.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	scorer, err := app.Scorers.Get(data.Strategy)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := scorer.Score(c.Request().Context(), data.Submission)
	if err != nil {
		logger.Error("[Server] Failed to grade answer", "concept", data.ConceptLabel, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to grade answer"})
	}
	return c.JSON(http.StatusOK, result)
}

// MasteryHandler applies a mastery update to a graph and returns the new
// graph. Mastery never decreases.
func MasteryHandler(c echo.Context) error {
	type masteryBody struct {
		Graph   *common.Graph `json:"graph" validate:"required"`
		NodeID  string        `json:"node_id" validate:"required"`
		Mastery int           `json:"mastery"`
	}
	type masteryResponse struct {
		Graph        *common.Graph `json:"graph"`
		LearnedCount int           `json:"learned_count"`
	}

	data := new(masteryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	g, err := data.Graph.WithMastery(data.NodeID, data.Mastery)
	if errors.Is(err, common.ErrConceptNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, masteryResponse{Graph: g, LearnedCount: g.LearnedCount()})
}
