package projection

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/projection"
)

type Handler struct {
	svc *projection.Service
	now func() time.Time
}

func NewHandler(svc *projection.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/budget", h.budget)
	r.Get("/cashflow", h.cashflow)
	r.Get("/summary", h.summary)
}

// request reads ?month=YYYY-MM and ?strategy=, defaulting to the current
// month and the recurring strategy.
func (h *Handler) request(r *http.Request) (projection.Request, error) {
	month, err := render.QueryMonth(r, "month", h.now())
	if err != nil {
		return projection.Request{}, err
	}

	strategy := projection.Strategy(r.URL.Query().Get("strategy"))
	if strategy == "" {
		strategy = projection.StrategyRecurring
	}

	return projection.Request{Period: projection.MonthPeriod(month), Strategy: strategy}, nil
}

func (h *Handler) budget(w http.ResponseWriter, r *http.Request) {
	req, err := h.request(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	res, err := h.svc.Budget(r.Context(), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toBudgetResponse(res))
}

func (h *Handler) cashflow(w http.ResponseWriter, r *http.Request) {
	req, err := h.request(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	res, err := h.svc.Cashflow(r.Context(), req)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toCashflowResponse(res))
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	req, err := h.request(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	s, err := h.svc.Summary(r.Context(), req.Period)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toSummaryResponse(s))
}
