package apiv1

import (
	"errors"
	"io"
	"net/http"

	"fideliza/internal/domain"
	"fideliza/internal/infra/logging"
)

const stripeSignatureHeader = "Stripe-Signature"

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubscriptionID string `json:"subscriptionId"`
	}
	if err := decodeValid(r, checkoutSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.provisioning.StartCheckout(r.Context(), ActorFrom(r.Context()), req.SubscriptionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// handleStripeWebhook provisions subscriptions from checkout completions.
// Unknown plans answer 404; transient failures answer 500 so the processor
// retries; replays answer 200.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, domain.ErrInvalidArgument)
		return
	}
	evt, ok, err := s.gateway.ParseWebhook(payload, r.Header.Get(stripeSignatureHeader))
	if err != nil {
		log.Warn().Err(err).Msg("webhook rejected")
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid webhook"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"received": true})
		return
	}

	sub, created, err := s.provisioning.Provision(r.Context(), *evt)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Str("plan_id", evt.SubscriptionID).Msg("webhook for unknown plan")
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"received":           true,
		"created":            created,
		"userSubscriptionId": sub.ID,
	})
}
