package api

import (
	"context"
	"net/http"

	reqdto "facility-booking/internal/handler/dto/request"
	resdto "facility-booking/internal/handler/dto/response"
	"facility-booking/internal/handler/httperr"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/shared"

	"github.com/gin-gonic/gin"
)

// SweepRunner runs sweeps on demand. An empty kind list runs all of them.
type SweepRunner interface {
	RunNow(ctx context.Context, kinds ...shared.SweepKind) ([]commands.SweepResult, error)
}

type AdminHandler struct {
	sweeps SweepRunner
}

func NewAdminHandler(sweeps SweepRunner) *AdminHandler {
	return &AdminHandler{sweeps: sweeps}
}

// @Summary Run sweeps now
// @Description Runs one sweep, or all of them: expire, start, complete, then the two reminder sweeps
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.RunSweepRequest false "Sweep kind"
// @Success 200 {object} resdto.SweepResultsResponse
// @Failure 403 {object} httperr.Response
// @Router /admin/sweeps [post]
func (h *AdminHandler) RunSweeps(c *gin.Context) {
	var req reqdto.RunSweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
			return
		}
	}

	var kinds []shared.SweepKind
	if req.Kind != "" {
		kinds = append(kinds, shared.SweepKind(req.Kind))
	}

	results, err := h.sweeps.RunNow(c.Request.Context(), kinds...)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.SweepResultsResponse{Results: results})
}
