package api

import (
	"crypto/subtle"
	"errors"
	"net/http"

	reqdto "facility-booking/internal/handler/dto/request"
	resdto "facility-booking/internal/handler/dto/response"
	"facility-booking/internal/handler/httperr"
	"facility-booking/internal/pkg/config"
	"facility-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const webhookSecretHeader = "X-Webhook-Secret"

var errBadWebhookSecret = errors.New("webhook secret mismatch")

type PaymentWebhookHandler struct {
	cmds   commands.PaymentCommands
	secret []byte
}

func NewPaymentWebhookHandler(cmds commands.PaymentCommands, cfg config.WebhookConfig) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{cmds: cmds, secret: []byte(cfg.Secret)}
}

// @Summary Payment gateway callback
// @Description Delivers payment_succeeded, payment_failed, payment_cancelled and refund_completed events
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared gateway secret"
// @Param request body reqdto.PaymentEventRequest true "Payment event"
// @Success 200 {object} resdto.PaymentEventResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 412 {object} httperr.Response
// @Router /webhooks/payments [post]
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	if !h.authorized(c.GetHeader(webhookSecretHeader)) {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadWebhookSecret, "Invalid webhook secret", nil)
		return
	}

	var req reqdto.PaymentEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	res, t, err := h.cmds.HandlePaymentEvent(c.Request.Context(), req.ToEvent())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPaymentEvent(res, t))
}

func (h *PaymentWebhookHandler) authorized(got string) bool {
	if len(h.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), h.secret) == 1
}
