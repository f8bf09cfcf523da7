package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"jobhunter/internal/delivery/http/dto"
	"jobhunter/internal/delivery/http/middleware"
	"jobhunter/internal/domain/profile"
	"jobhunter/internal/pkg/response"
	"jobhunter/internal/usecase"
)

type SubmissionHandler struct {
	uc         usecase.SubmissionUsecase
	workerAuth *middleware.WorkerAuthMiddleware
}

type createSubmissionRequest struct {
	Email string `json:"email"`
}

type updateProfileRequest struct {
	CustomSkills []dto.SkillDTO     `json:"customSkills"`
	Preferences  dto.PreferencesDTO `json:"preferences"`
	Weights      *dto.WeightsDTO    `json:"weights"`
}

type reportRequest struct {
	Status   string `json:"status"`
	JobCount int    `json:"jobCount"`
	Error    string `json:"error"`
}

func NewSubmissionHandler(uc usecase.SubmissionUsecase, workerAuth *middleware.WorkerAuthMiddleware) *SubmissionHandler {
	return &SubmissionHandler{uc: uc, workerAuth: workerAuth}
}

func (h *SubmissionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Create)
	r.Post("/:id/resume", h.UploadResume)
	r.Put("/:id/profile", h.UpdateProfile)
	r.Post("/:id/confirm", h.Confirm)
	r.Post("/:id/cancel", h.Cancel)
	r.Get("/:id", h.Get)
	r.Post("/:id/report", h.workerAuth.Middleware(), h.Report)
}

func (h *SubmissionHandler) Create(c fiber.Ctx) error {
	var req createSubmissionRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	sub, err := h.uc.Create(c.Context(), req.Email)
	if err != nil {
		return h.mapError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Submission created", dto.NewSubmissionResponse(sub))
}

func (h *SubmissionHandler) UploadResume(c fiber.Ctx) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}

	pdf := c.Body()
	if len(pdf) == 0 {
		// Also accept multipart uploads with a "resume" field.
		if file, ferr := c.FormFile("resume"); ferr == nil {
			f, oerr := file.Open()
			if oerr != nil {
				return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable upload", nil, oerr)
			}
			defer f.Close()
			buf, rerr := io.ReadAll(f)
			if rerr != nil {
				return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable upload", nil, rerr)
			}
			pdf = buf
		}
	}

	if err := h.uc.SubmitResume(c.Context(), id, pdf); err != nil {
		return h.mapError(err)
	}
	return response.Success(c, fiber.StatusAccepted, "Resume accepted for parsing", nil)
}

func (h *SubmissionHandler) UpdateProfile(c fiber.Ctx) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}
	if req.Weights == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Missing weights", nil, nil)
	}

	custom := make([]profile.Skill, 0, len(req.CustomSkills))
	for _, s := range req.CustomSkills {
		custom = append(custom, profile.Skill{Name: s.Name, Tier: profile.ParseTier(s.Tier)})
	}
	prefs := profile.Preferences{Locations: req.Preferences.Locations, Roles: req.Preferences.Roles}

	if err := h.uc.UpdateReview(c.Context(), id, custom, prefs, req.Weights.ToDomain()); err != nil {
		return h.mapError(err)
	}
	return response.Success(c, fiber.StatusOK, "Profile updated", nil)
}

func (h *SubmissionHandler) Confirm(c fiber.Ctx) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}
	if err := h.uc.StartScrape(c.Context(), id); err != nil {
		return h.mapError(err)
	}
	return response.Success(c, fiber.StatusAccepted, "Scraping started", nil)
}

func (h *SubmissionHandler) Cancel(c fiber.Ctx) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}
	if err := h.uc.Cancel(c.Context(), id); err != nil {
		return h.mapError(err)
	}
	return response.Success(c, fiber.StatusOK, "Submission cancelled", nil)
}

func (h *SubmissionHandler) Get(c fiber.Ctx) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}

	sub, results, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return h.mapError(err)
	}

	res := struct {
		dto.SubmissionResponse
		Results []dto.ScoredJobResponse `json:"results,omitempty"`
	}{
		SubmissionResponse: dto.NewSubmissionResponse(sub),
		Results:            dto.NewScoredJobResponses(results),
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *SubmissionHandler) Report(c fiber.Ctx) error {
	id, err := submissionID(c)
	if err != nil {
		return err
	}

	var req reportRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	if err := h.uc.Report(c.Context(), id, req.Status, req.JobCount, req.Error); err != nil {
		return h.mapError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *SubmissionHandler) mapError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrSubmissionNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Submission not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidState):
		return middleware.NewAppError(fiber.StatusConflict, "Operation not allowed in current state", nil, err)
	case errors.Is(err, usecase.ErrRateLimited):
		return middleware.NewAppError(fiber.StatusTooManyRequests, "Too many submissions for this email, try again later", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func submissionID(c fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid submission id", nil, err)
	}
	return id, nil
}
