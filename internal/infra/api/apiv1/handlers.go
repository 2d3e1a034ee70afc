package apiv1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fideliza/internal/domain"
	"fideliza/internal/infra/logging"
	"fideliza/internal/usecase"
)

// ---- codes ----

func (s *Server) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubscriptionID string `json:"subscriptionId"`
	}
	if err := decodeValid(r, generateCodeSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	code, err := s.codes.Generate(r.Context(), ActorFrom(r.Context()), req.SubscriptionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCode(code))
}

func (s *Server) handleRedeemCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeValid(r, redeemCodeSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	details, err := s.codes.Redeem(r.Context(), ActorFrom(r.Context()), req.Code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleLookupCode(w http.ResponseWriter, r *http.Request) {
	details, err := s.codes.Lookup(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "code"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// ---- validations ----

func (s *Server) handleRecordValidation(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if actor.IsZero() {
		s.writeError(w, r, domain.ErrUnauthenticated)
		return
	}
	var in usecase.RecordValidationInput
	if err := decodeValid(r, recordValidationSchema, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.validations.Record(r.Context(), actor, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toValidation(v))
}

func (s *Server) handleListValidations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := usecase.ValidationQuery{PlaceID: q.Get("placeId")}
	var err error
	if query.Limit, err = intParam(q.Get("limit")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if query.Offset, err = intParam(q.Get("offset")); err != nil {
		s.writeError(w, r, err)
		return
	}
	if since := q.Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			s.writeError(w, r, domain.ErrInvalidArgument)
			return
		}
		query.Since = &t
	}

	rows, err := s.validations.List(r.Context(), ActorFrom(r.Context()), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items := make([]Validation, 0, len(rows))
	for _, v := range rows {
		items = append(items, toValidation(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// ---- QR ----

func (s *Server) handleVerifyQR(w http.ResponseWriter, r *http.Request) {
	var req QRPayload
	if err := decodeValid(r, verifyQRSchema, &req); err != nil {
		writeJSON(w, statusFor(err), VerifyResponse{Valid: false, Reason: reasonFor(err)})
		return
	}
	res, err := s.qr.Verify(r.Context(), ActorFrom(r.Context()), usecase.QRPayload{
		SubscriptionID:     req.SubscriptionID,
		UserSubscriptionID: req.UserSubscriptionID,
		Timestamp:          time.UnixMilli(req.Timestamp),
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logging.With(r.Context(), s.log).Error().Err(err).Msg("qr verification failed")
		}
		writeJSON(w, status, VerifyResponse{Valid: false, Reason: reasonFor(err)})
		return
	}
	writeJSON(w, http.StatusOK, VerifyResponse{Valid: res.Valid, Reason: res.Reason})
}

func (s *Server) handleGenerateQR(w http.ResponseWriter, r *http.Request) {
	p, err := s.qr.GenerateQR(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QRPayload{
		SubscriptionID:     p.SubscriptionID,
		UserSubscriptionID: p.UserSubscriptionID,
		Timestamp:          p.Timestamp.UnixMilli(),
	})
}

// ---- subscriptions ----

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.ListMine(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items := make([]Subscription, 0, len(subs))
	for _, sub := range subs {
		items = append(items, toSubscription(sub))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subscriptions.Cancel(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSubscription(sub))
}

// ---- plans ----

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListByPlace(r.Context(), chi.URLParam(r, "placeID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items := make([]Plan, 0, len(plans))
	for _, p := range plans {
		items = append(items, toPlan(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlan(p))
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var in usecase.PlanInput
	if err := decodeValid(r, planSchema, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.plans.Create(r.Context(), ActorFrom(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlan(p))
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var in usecase.PlanInput
	if err := decodeValid(r, planSchema, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.plans.Update(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlan(p))
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.plans.Delete(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, domain.ErrInvalidArgument
	}
	return n, nil
}
