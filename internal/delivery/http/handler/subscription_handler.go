package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"jobhunter/internal/delivery/http/dto"
	"jobhunter/internal/delivery/http/middleware"
	"jobhunter/internal/domain/profile"
	"jobhunter/internal/domain/scoring"
	"jobhunter/internal/pkg/managetoken"
	"jobhunter/internal/pkg/response"
	"jobhunter/internal/usecase"
)

type SubscriptionHandler struct {
	uc          usecase.SubscriptionUsecase
	submissions usecase.SubmissionUsecase
	tokens      managetoken.Service
}

type createSubscriptionRequest struct {
	Email        string              `json:"email"`
	DurationDays int                 `json:"durationDays"`
	SubmissionID *uuid.UUID          `json:"submissionId"`
	Profile      *dto.ProfileDTO     `json:"profile"`
	Preferences  *dto.PreferencesDTO `json:"preferences"`
	Weights      *dto.WeightsDTO     `json:"weights"`
}

func NewSubscriptionHandler(uc usecase.SubscriptionUsecase, submissions usecase.SubmissionUsecase, tokens managetoken.Service) *SubscriptionHandler {
	return &SubscriptionHandler{uc: uc, submissions: submissions, tokens: tokens}
}

func (h *SubscriptionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Create)
	r.Get("/manage", h.Manage)
	r.Get("/:id", h.Get)
	r.Post("/:id/pause", h.Pause)
	r.Post("/:id/resume", h.Resume)
	r.Post("/:id/cancel", h.Cancel)
}

// Create accepts either a completed submission to copy the search
// inputs from, or an inline profile.
func (h *SubscriptionHandler) Create(c fiber.Ctx) error {
	var req createSubscriptionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	prof, prefs, weights, err := h.searchInputs(c, req)
	if err != nil {
		return err
	}

	sub, err := h.uc.Create(c.Context(), req.Email, req.DurationDays, prof, prefs, weights)
	if err != nil {
		return h.mapError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Subscription created", dto.NewSubscriptionResponse(sub, nil))
}

func (h *SubscriptionHandler) Get(c fiber.Ctx) error {
	id, err := subscriptionID(c)
	if err != nil {
		return err
	}
	rec, runs, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return h.mapError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSubscriptionResponse(rec.Subscription, runs))
}

func (h *SubscriptionHandler) Pause(c fiber.Ctx) error  { return h.lifecycle(c, h.uc.Pause) }
func (h *SubscriptionHandler) Resume(c fiber.Ctx) error { return h.lifecycle(c, h.uc.Resume) }
func (h *SubscriptionHandler) Cancel(c fiber.Ctx) error { return h.lifecycle(c, h.uc.Cancel) }

// Manage handles the signed links in digest emails. The token
// identifies the subscription; the action query picks the operation.
func (h *SubscriptionHandler) Manage(c fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing token", nil, nil)
	}
	id, err := h.tokens.Validate(token)
	if err != nil {
		if errors.Is(err, managetoken.ErrTokenExpired) {
			return middleware.NewAppError(fiber.StatusUnauthorized, "Manage link expired", nil, err)
		}
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid manage link", nil, err)
	}

	var opErr error
	switch c.Query("action") {
	case "pause":
		opErr = h.uc.Pause(c.Context(), id)
	case "resume":
		opErr = h.uc.Resume(c.Context(), id)
	case "cancel":
		opErr = h.uc.Cancel(c.Context(), id)
	default:
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown action", nil, nil)
	}
	if opErr != nil {
		return h.mapError(opErr)
	}
	return response.Success(c, fiber.StatusOK, "Subscription updated", nil)
}

func (h *SubscriptionHandler) lifecycle(c fiber.Ctx, op func(ctx context.Context, id uuid.UUID) error) error {
	id, err := subscriptionID(c)
	if err != nil {
		return err
	}
	if err := op(c.Context(), id); err != nil {
		return h.mapError(err)
	}
	return response.Success(c, fiber.StatusOK, "Subscription updated", nil)
}

func (h *SubscriptionHandler) searchInputs(c fiber.Ctx, req createSubscriptionRequest) (*profile.Profile, profile.Preferences, scoring.Weights, error) {
	if req.SubmissionID != nil {
		sub, _, err := h.submissions.Get(c.Context(), *req.SubmissionID)
		if err != nil {
			return nil, profile.Preferences{}, scoring.Weights{}, h.mapError(err)
		}
		return sub.Profile, sub.Preferences, sub.Weights, nil
	}

	var prof *profile.Profile
	if req.Profile != nil {
		p := profileFromDTO(*req.Profile)
		prof = &p
	}
	var prefs profile.Preferences
	if req.Preferences != nil {
		prefs = profile.Preferences{Locations: req.Preferences.Locations, Roles: req.Preferences.Roles}
	}
	weights := scoring.DefaultWeights()
	if req.Weights != nil {
		weights = req.Weights.ToDomain()
	}
	return prof, prefs, weights, nil
}

func subscriptionID(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid subscription id", nil, err)
	}
	return id, nil
}

func (h *SubscriptionHandler) mapError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrSubscriptionNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Subscription not found", nil, err)
	case errors.Is(err, usecase.ErrSubmissionNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Submission not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidState):
		return middleware.NewAppError(fiber.StatusConflict, "Operation not allowed in current state", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func profileFromDTO(d dto.ProfileDTO) profile.Profile {
	p := profile.Profile{
		Titles:   d.Titles,
		Keywords: d.Keywords,
	}
	if d.Experience != nil {
		p.Experience = &profile.Experience{
			Years: d.Experience.Years,
			Level: profile.ExperienceLevel(d.Experience.Level),
		}
	}
	for _, s := range d.Skills {
		p.Skills = append(p.Skills, profile.Skill{Name: s.Name, Tier: profile.ParseTier(s.Tier)})
	}
	for _, s := range d.CustomSkills {
		p.CustomSkills = append(p.CustomSkills, profile.Skill{Name: s.Name, Tier: profile.ParseTier(s.Tier)})
	}
	return p
}
