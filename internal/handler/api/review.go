package api

import (
	"net/http"

	domreview "facility-booking/internal/domain/review"
	reqdto "facility-booking/internal/handler/dto/request"
	resdto "facility-booking/internal/handler/dto/response"
	"facility-booking/internal/handler/httperr"
	"facility-booking/internal/handler/middleware"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReviewHandler struct {
	cmds commands.ReviewCommands
	q    queries.ReviewQueries
}

func NewReviewHandler(cmds commands.ReviewCommands, q queries.ReviewQueries) *ReviewHandler {
	return &ReviewHandler{cmds: cmds, q: q}
}

// @Summary Create review
// @Description Review the other party of a completed reservation
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateReviewRequest true "Create review request"
// @Success 201 {object} resdto.ReviewResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 412 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	a, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingActor, "Internal server error", nil)
		return
	}
	var req reqdto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	rev, err := h.cmds.CreateReview(c.Request.Context(), a, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromReview(rev))
}

// @Summary Delete review
// @Description Delete own review (admins can delete any)
// @Tags reviews
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 204 "No Content"
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	a, id, ok := actorAndID(c)
	if !ok {
		return
	}
	if err := h.cmds.DeleteReview(c.Request.Context(), a, id); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Hide or show a review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body reqdto.SetReviewVisibilityRequest true "Visibility"
// @Success 200 {object} resdto.ReviewResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /reviews/{id}/visibility [patch]
func (h *ReviewHandler) SetVisibility(c *gin.Context) {
	a, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req reqdto.SetReviewVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	rev, err := h.cmds.SetReviewVisibility(c.Request.Context(), a, id, *req.Hidden)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReview(rev))
}

// @Summary Report a review
// @Tags reviews
// @Accept json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body reqdto.ReportReviewRequest true "Report reason"
// @Success 202 "Accepted"
// @Failure 404 {object} httperr.Response
// @Router /reviews/{id}/report [post]
func (h *ReviewHandler) Report(c *gin.Context) {
	a, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req reqdto.ReportReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	if err := h.cmds.ReportReview(c.Request.Context(), a, id, req.Reason); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// @Summary List reviews
// @Description Visible reviews of a profile, newest first, with keyset pagination
// @Tags reviews
// @Produce json
// @Param revieweeId query string true "Reviewed profile ID"
// @Param type query string true "coach_to_facility or facility_to_coach"
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Max items (default 20)"
// @Success 200 {object} resdto.ReviewListResponse
// @Failure 400 {object} httperr.Response
// @Router /reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	var req reqdto.ListReviewsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	page, err := h.q.ListReviews(c.Request.Context(), req.RevieweeID, domreview.Type(req.Type), req.Cursor, req.Limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReviewPage(page))
}

// @Summary Review statistics
// @Description Total, average and rating distribution of a profile's visible reviews
// @Tags reviews
// @Produce json
// @Param revieweeId query string true "Reviewed profile ID"
// @Param type query string true "coach_to_facility or facility_to_coach"
// @Success 200 {object} resdto.ReviewStatsResponse
// @Failure 400 {object} httperr.Response
// @Router /reviews/stats [get]
func (h *ReviewHandler) Stats(c *gin.Context) {
	var req reqdto.ReviewStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}
	dist, err := h.q.ReviewStats(c.Request.Context(), req.RevieweeID, domreview.Type(req.Type))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDistribution(dist))
}

// @Summary Rating summary
// @Description Aggregated rating of a coach, facility or owner profile
// @Tags ratings
// @Produce json
// @Param kind path string true "coach, facility or owner"
// @Param id path string true "Profile ID"
// @Success 200 {object} resdto.RatingSummaryResponse
// @Failure 400 {object} httperr.Response
// @Router /ratings/{kind}/{id} [get]
func (h *ReviewHandler) RatingSummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	target := domreview.Target{Kind: domreview.ProfileKind(c.Param("kind")), ID: id}
	rec, err := h.q.GetRatingSummary(c.Request.Context(), target)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRatingRecord(rec))
}
