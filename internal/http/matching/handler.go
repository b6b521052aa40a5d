package matching

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
	"github.com/MrJamesThe3rd/finplan/internal/http/render"
	"github.com/MrJamesThe3rd/finplan/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type ruleResponse struct {
	ID          uuid.UUID  `json:"id"`
	Pattern     string     `json:"pattern"`
	Description string     `json:"description,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toRuleResponse(r *matching.Rule) ruleResponse {
	return ruleResponse{
		ID:          r.ID,
		Pattern:     r.Pattern,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		CreatedAt:   r.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.Rules(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]ruleResponse, len(rules))
	for i, rule := range rules {
		resp[i] = toRuleResponse(rule)
	}

	render.JSON(w, http.StatusOK, resp)
}

type suggestResponse struct {
	RawDescription string        `json:"raw_description"`
	Rule           *ruleResponse `json:"rule"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	rawDesc := r.URL.Query().Get("raw_description")
	if rawDesc == "" {
		render.Error(w, r, apperrors.WithMessage(apperrors.ErrInvalidInput, "raw_description query parameter is required"))
		return
	}

	rule, err := h.svc.Suggest(r.Context(), rawDesc)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := suggestResponse{RawDescription: rawDesc}
	if rule != nil {
		rr := toRuleResponse(rule)
		resp.Rule = &rr
	}

	render.JSON(w, http.StatusOK, resp)
}

type learnRequest struct {
	Pattern     string     `json:"pattern"`
	Description string     `json:"description"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	rule, err := h.svc.Learn(r.Context(), matching.LearnParams{
		Pattern:     req.Pattern,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toRuleResponse(rule))
}
