// Package apiv1 is the JSON API consumed by the customer app and the
// point-of-sale UI.
package apiv1

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"fideliza/internal/domain"
	"fideliza/internal/domain/ports/adapter"
	"fideliza/internal/infra/logging"
	red "fideliza/internal/infra/redis"
	"fideliza/internal/usecase"
)

// Limiter is the fixed-window rate limiter guarding redemption endpoints.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Deps groups what the API needs. Limiter and Auth may be nil in tests.
type Deps struct {
	Codes         usecase.CodeUseCase
	Validations   usecase.ValidationUseCase
	QR            usecase.QRUseCase
	Provisioning  usecase.ProvisioningUseCase
	Subscriptions usecase.SubscriptionUseCase
	Plans         usecase.PlanUseCase
	Gateway       adapter.PaymentGateway
	Auth          *AuthManager
	Limiter       Limiter
}

type Server struct {
	codes         usecase.CodeUseCase
	validations   usecase.ValidationUseCase
	qr            usecase.QRUseCase
	provisioning  usecase.ProvisioningUseCase
	subscriptions usecase.SubscriptionUseCase
	plans         usecase.PlanUseCase
	gateway       adapter.PaymentGateway
	auth          *AuthManager
	limiter       Limiter
	log           *zerolog.Logger
}

func NewServer(d Deps, logger *zerolog.Logger) *Server {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Server{
		codes:         d.Codes,
		validations:   d.Validations,
		qr:            d.QR,
		provisioning:  d.Provisioning,
		subscriptions: d.Subscriptions,
		plans:         d.Plans,
		gateway:       d.Gateway,
		auth:          d.Auth,
		limiter:       d.Limiter,
		log:           logging.Component(logger, "apiv1"),
	}
}

// RegisterAPIV1 mounts every /api/v1 route on r.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		// processor callbacks carry no session
		r.Post("/webhooks/stripe", s.handleStripeWebhook)
		r.Get("/places/{placeID}/plans", s.handleListPlans)

		r.Group(func(r chi.Router) {
			r.Use(s.Authenticate)

			r.Post("/codes", s.handleGenerateCode)
			r.With(s.RateLimit("redeem")).Post("/codes/validate", s.handleRedeemCode)
			r.Get("/codes/{code}", s.handleLookupCode)

			r.Post("/validations", s.handleRecordValidation)
			r.Get("/validations", s.handleListValidations)

			r.With(s.RateLimit("qr")).Post("/qr/verify", s.handleVerifyQR)

			r.Get("/subscriptions", s.handleListSubscriptions)
			r.Get("/subscriptions/{id}/qr", s.handleGenerateQR)
			r.Post("/subscriptions/{id}/cancel", s.handleCancelSubscription)

			r.Post("/plans", s.handleCreatePlan)
			r.Get("/plans/{id}", s.handleGetPlan)
			r.Put("/plans/{id}", s.handleUpdatePlan)
			r.Delete("/plans/{id}", s.handleDeletePlan)

			r.Post("/checkout", s.handleCheckout)
		})
	})
}

// RateLimit caps attempts per session on the given scope. Limiter outages
// let requests through.
func (s *Server) RateLimit(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFrom(r.Context())
			if s.limiter == nil || actor.IsZero() {
				next.ServeHTTP(w, r)
				return
			}
			key := red.RedeemKey(actor.UserID)
			if scope != "redeem" {
				key = key + ":" + scope
			}
			ok, err := s.limiter.Allow(r.Context(), key)
			if err != nil {
				logging.With(r.Context(), s.log).Warn().Err(err).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				s.writeError(w, r, domain.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
