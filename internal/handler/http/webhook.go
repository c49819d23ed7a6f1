package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/workpulse/workpulse-backend-go/internal/domain/payroll"
	"github.com/workpulse/workpulse-backend-go/internal/handler/http/response"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/webhook"
)

// maxWebhookBody caps payment callback payloads at 1MB.
const maxWebhookBody = 1 << 20

type WebhookHandler interface {
	PaymentConfirmation(w http.ResponseWriter, r *http.Request)
}

type webhookHandlerImpl struct {
	verifier       *webhook.Verifier
	payrollService payroll.PayrollService
}

func NewWebhookHandler(verifier *webhook.Verifier, payrollService payroll.PayrollService) WebhookHandler {
	return &webhookHandlerImpl{
		verifier:       verifier,
		payrollService: payrollService,
	}
}

// PaymentConfirmation implements WebhookHandler. The signature covers the raw
// body, so the body is read before decoding and verification happens before
// any payroll state is touched.
func (h *webhookHandlerImpl) PaymentConfirmation(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "Failed to read request body", nil)
		return
	}

	signature := r.Header.Get("signature")
	timestamp := r.Header.Get("timestamp")

	if err := h.verifier.Verify(signature, timestamp, body); err != nil {
		slog.Warn("rejected payment webhook", "error", err, "remote_addr", r.RemoteAddr)
		response.Unauthorized(w, err.Error())
		return
	}

	var conf payroll.PaymentConfirmation
	if err := json.Unmarshal(body, &conf); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.payrollService.ConfirmPayment(r.Context(), conf)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
