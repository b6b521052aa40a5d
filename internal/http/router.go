package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/finplan/internal/http/debt"
	"github.com/MrJamesThe3rd/finplan/internal/http/importcsv"
	"github.com/MrJamesThe3rd/finplan/internal/http/installment"
	"github.com/MrJamesThe3rd/finplan/internal/http/ledger"
	"github.com/MrJamesThe3rd/finplan/internal/http/loan"
	"github.com/MrJamesThe3rd/finplan/internal/http/matching"
	"github.com/MrJamesThe3rd/finplan/internal/http/projection"
	"github.com/MrJamesThe3rd/finplan/internal/http/recurring"
)

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

func New(
	opts Options,
	ledgerV1 *ledger.Handler,
	recurringV1 *recurring.Handler,
	loanV1 *loan.Handler,
	installmentV1 *installment.Handler,
	projectionV1 *projection.Handler,
	importV1 *importcsv.Handler,
	rulesV1 *matching.Handler,
	debtV1 *debt.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	if opts.Timeout > 0 {
		router.Use(middleware.Timeout(opts.Timeout))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))

			r.Route("/transactions", ledgerV1.TransactionRoutes)
			r.Route("/categories", ledgerV1.CategoryRoutes)
			r.Route("/accounts", ledgerV1.AccountRoutes)
			r.Route("/recurring", recurringV1.Routes)
			r.Route("/loans", loanV1.Routes)
			r.Route("/installments", installmentV1.Routes)
			r.Route("/rules", rulesV1.Routes)
			r.Route("/debts", debtV1.Routes)
		})

		r.Route("/projections", projectionV1.Routes)

		r.With(middleware.AllowContentType("multipart/form-data")).Route("/imports", importV1.Routes)
	})

	return router
}
