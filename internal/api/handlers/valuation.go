package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/roster-optimizer/internal/valuation"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// ValuationHandler handles player and portfolio valuation endpoints
type ValuationHandler struct {
	model  *valuation.Model
	logger *logrus.Logger
}

// ValuationRequest carries the players to value
type ValuationRequest struct {
	Players []types.PlayerRecord `json:"players" binding:"required"`
}

// NewValuationHandler creates a new valuation handler
func NewValuationHandler(logger *logrus.Logger) *ValuationHandler {
	return &ValuationHandler{
		model:  valuation.NewModel(),
		logger: logger,
	}
}

// ValuePlayers computes valuation metrics for each submitted player
func (h *ValuationHandler) ValuePlayers(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	if len(req.Players) == 0 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Players are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	h.model.ValueRoster(req.Players)

	h.logger.WithField("player_count", len(req.Players)).Debug("Valued players")

	c.JSON(http.StatusOK, gin.H{
		"players": req.Players,
		"count":   len(req.Players),
	})
}

// AnalyzePortfolio computes roster-level valuation metrics
func (h *ValuationHandler) AnalyzePortfolio(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	if len(req.Players) == 0 {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Players are required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	h.model.ValueRoster(req.Players)

	players := make([]*types.PlayerRecord, len(req.Players))
	for i := range req.Players {
		players[i] = &req.Players[i]
	}

	summary := valuation.NewPortfolioAnalyzer(players).SummaryReport()

	c.JSON(http.StatusOK, summary)
}
