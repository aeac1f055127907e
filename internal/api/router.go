// Package api is the HTTP surface of the rewards backend: web
// registration, the user wallet and the admin approval desk.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestTimeout = 30 * time.Second

// Deps are the services behind the routes. Webhook is optional and is
// mounted on /telegram/webhook when set.
type Deps struct {
	Tokens    TokenVerifier
	Users     UserService
	Ledger    LedgerService
	Exchange  ExchangeService
	Withdraw  WithdrawService
	Referrals ReferralService
	Missions  MissionService
	Approvals ApprovalService
	Settings  SettingsService
	Stats     StatsService
	Webhook   http.Handler
}

type server struct {
	Deps
}

// NewRouter builds the chi router serving the API.
func NewRouter(deps Deps) chi.Router {
	s := &server{Deps: deps}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	if deps.Webhook != nil {
		r.Post("/telegram/webhook", deps.Webhook.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(requestTimeout))

		r.Post("/users", handle(s.register))

		r.Group(func(r chi.Router) {
			r.Use(authenticate(deps.Tokens))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", handle(s.me))
				r.Get("/transactions", handle(s.myTransactions))
				r.Post("/exchange", handle(s.exchange))
				r.Post("/withdraw", handle(s.withdraw))
				r.Post("/deposit", handle(s.deposit))
				r.Get("/referrals", handle(s.referrals))
				r.Post("/referrals/claim", handle(s.claimReferrals))
				r.Get("/missions", handle(s.missions))
				r.Post("/missions/{id}/complete", handle(s.completeMission))
				r.Post("/missions/{id}/claim", handle(s.claimMission))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin(deps.Users))

				r.Get("/transactions/pending", handle(s.pendingTransactions))
				r.Get("/transactions", handle(s.allTransactions))
				r.Post("/transactions/approve-all", handle(s.approveAll))
				r.Post("/transactions/reject-all", handle(s.rejectAll))
				r.Post("/transactions/{id}/approve", handle(s.approve))
				r.Post("/transactions/{id}/reject", handle(s.reject))
				r.Get("/settings/min-withdraw", handle(s.minWithdraw))
				r.Put("/settings/min-withdraw", handle(s.setMinWithdraw))
				r.Post("/referrals/activate", handle(s.activateReferrals))
				r.Get("/stats", handle(s.platformStats))
			})
		})
	})

	return r
}
