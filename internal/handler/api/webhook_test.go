//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"

	"facility-booking/internal/domain/reservation"
	"facility-booking/internal/handler/api"
	resdto "facility-booking/internal/handler/dto/response"
	"facility-booking/internal/pkg/config"
	"facility-booking/internal/usecase/commands"
	"facility-booking/internal/usecase/shared"
	"facility-booking/tests/common/builder"
	"facility-booking/tests/common/httptest"
	commandsmock "facility-booking/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testWebhookSecret = "whsec_test"

func newWebhookRouter(t *testing.T, secret string) (*gin.Engine, *commandsmock.MockPaymentCommands) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	mock := commandsmock.NewMockPaymentCommands(ctrl)

	r := gin.New()
	h := api.NewPaymentWebhookHandler(mock, config.WebhookConfig{Secret: secret})
	r.POST("/webhooks/payments", h.Handle)
	return r, mock
}

func TestPaymentWebhook(t *testing.T) {
	paid := builder.NewReservationBuilder().AsConfirmed().Build()
	body := map[string]any{
		"type":          "payment_succeeded",
		"reservationId": paid.ID(),
		"reference":     "pi_123",
		"method":        "card",
	}
	signed := map[string]string{"X-Webhook-Secret": testWebhookSecret}

	t.Run("success: event is forwarded and the outcome returned", func(t *testing.T) {
		router, mock := newWebhookRouter(t, testWebhookSecret)
		mock.EXPECT().HandlePaymentEvent(gomock.Any(), commands.PaymentEvent{
			Type:           commands.PaymentSucceeded,
			ReservationID:  paid.ID(),
			Reference:      "pi_123",
			Method:         "card",
			RefundedAmount: decimal.Zero,
		}).Return(paid, reservation.Transition{Changed: true}, nil)

		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodPost, "/webhooks/payments", body, "", signed)

		var resp resdto.PaymentEventResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &resp)
		assert.True(t, resp.Changed)
		require.NotNil(t, resp.Reservation)
		assert.Equal(t, "confirmed", resp.Reservation.Status)
	})

	t.Run("success: refund amount is parsed as a decimal", func(t *testing.T) {
		router, mock := newWebhookRouter(t, testWebhookSecret)
		mock.EXPECT().HandlePaymentEvent(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev commands.PaymentEvent) (*reservation.Reservation, reservation.Transition, error) {
				assert.Equal(t, commands.RefundCompleted, ev.Type)
				assert.True(t, decimal.RequireFromString("28.75").Equal(ev.RefundedAmount))
				return paid, reservation.Transition{}, nil
			})

		refund := map[string]any{"type": "refund_completed", "reservationId": paid.ID(), "refundedAmount": "28.75"}
		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodPost, "/webhooks/payments", refund, "", signed)

		var resp resdto.PaymentEventResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &resp)
		assert.False(t, resp.Changed)
	})

	t.Run("error: secret mismatch is rejected before the body is read", func(t *testing.T) {
		for name, headers := range map[string]map[string]string{
			"missing": nil,
			"wrong":   {"X-Webhook-Secret": "nope"},
		} {
			t.Run(name, func(t *testing.T) {
				router, _ := newWebhookRouter(t, testWebhookSecret)
				rec := httptest.PerformRequestWithHeaders(t, router, http.MethodPost, "/webhooks/payments", body, "", headers)
				httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, "Invalid webhook secret")
			})
		}
	})

	t.Run("error: an unset secret rejects every call", func(t *testing.T) {
		router, _ := newWebhookRouter(t, "")
		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodPost, "/webhooks/payments", body, "",
			map[string]string{"X-Webhook-Secret": ""})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("error: unknown event type is 422", func(t *testing.T) {
		router, mock := newWebhookRouter(t, testWebhookSecret)
		mock.EXPECT().HandlePaymentEvent(gomock.Any(), gomock.Any()).
			Return(nil, reservation.Transition{}, commands.ErrUnknownPaymentEvent)

		ev := map[string]any{"type": "chargeback", "reservationId": uuid.New()}
		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodPost, "/webhooks/payments", ev, "", signed)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("error: unknown reservation is 404", func(t *testing.T) {
		router, mock := newWebhookRouter(t, testWebhookSecret)
		mock.EXPECT().HandlePaymentEvent(gomock.Any(), gomock.Any()).
			Return(nil, reservation.Transition{}, reservation.ErrReservationNotFound)

		rec := httptest.PerformRequestWithHeaders(t, router, http.MethodPost, "/webhooks/payments", body, "", signed)
		httptest.AssertErrorResponse(t, rec, http.StatusNotFound, "not found")
	})
}

type stubSweeps struct {
	got     []shared.SweepKind
	results []commands.SweepResult
	err     error
}

func (s *stubSweeps) RunNow(_ context.Context, kinds ...shared.SweepKind) ([]commands.SweepResult, error) {
	s.got = kinds
	return s.results, s.err
}

func TestAdminRunSweeps(t *testing.T) {
	gin.SetMode(gin.TestMode)

	setup := func(stub *stubSweeps) *gin.Engine {
		r := gin.New()
		r.POST("/admin/sweeps", api.NewAdminHandler(stub).RunSweeps)
		return r
	}

	t.Run("empty body runs every sweep", func(t *testing.T) {
		stub := &stubSweeps{results: []commands.SweepResult{
			{Kind: shared.SweepExpire, Scanned: 2, Transitioned: 2},
			{Kind: shared.SweepStart},
			{Kind: shared.SweepComplete},
		}}
		rec := httptest.PerformRequest(t, setup(stub), http.MethodPost, "/admin/sweeps", nil, "")

		var resp resdto.SweepResultsResponse
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &resp)
		assert.Empty(t, stub.got)
		require.Len(t, resp.Results, 3)
		assert.Equal(t, 2, resp.Results[0].Transitioned)
	})

	t.Run("single kind", func(t *testing.T) {
		stub := &stubSweeps{results: []commands.SweepResult{{Kind: shared.SweepStart}}}
		rec := httptest.PerformRequest(t, setup(stub), http.MethodPost, "/admin/sweeps", map[string]string{"kind": "start"}, "")

		httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
		assert.Equal(t, []shared.SweepKind{shared.SweepStart}, stub.got)
	})

	t.Run("reminder kind", func(t *testing.T) {
		stub := &stubSweeps{results: []commands.SweepResult{{Kind: shared.SweepReviewRemind}}}
		rec := httptest.PerformRequest(t, setup(stub), http.MethodPost, "/admin/sweeps", map[string]string{"kind": "review_remind"}, "")

		httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
		assert.Equal(t, []shared.SweepKind{shared.SweepReviewRemind}, stub.got)
	})

	t.Run("unknown kind is a 400", func(t *testing.T) {
		stub := &stubSweeps{}
		rec := httptest.PerformRequest(t, setup(stub), http.MethodPost, "/admin/sweeps", map[string]string{"kind": "purge"}, "")
		httptest.AssertErrorResponse(t, rec, http.StatusBadRequest, "Invalid request format")
		assert.Nil(t, stub.got)
	})
}
