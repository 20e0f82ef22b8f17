// handler.go

package question

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Laurel-rao/pmp-exam-assistant/internal/core"
	"github.com/Laurel-rao/pmp-exam-assistant/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/questions", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListQuestions)
		r.Post("/", h.CreateQuestion)
		r.Get("/{questionID}", h.GetQuestion)
		r.Put("/{questionID}", h.UpdateQuestion)
		r.Delete("/{questionID}", h.DeleteQuestion)
	})

	r.Route("/practice", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/questions", h.PracticeQuestions)
		r.Get("/browse", h.BrowseQuestions)
		r.Post("/submit", h.SubmitAnswer)
		r.Get("/mistakes", h.ListMistakes)
		r.Get("/favorites", h.ListFavorites)
		r.Post("/favorites/{questionID}", h.ToggleFavorite)
	})
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	params := ListQuestionsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "pageSize", 20),
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
	}

	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		if difficulty, err := strconv.Atoi(raw); err == nil {
			params.Difficulty = &difficulty
		}
	}

	questions, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToQuestionResponseList(questions),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	q, err := h.service.Get(r.Context(), questionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "question")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToQuestionResponse(q))
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	q, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToQuestionResponse(q))
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	var req UpdateQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	q, err := h.service.Update(r.Context(), questionID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "question")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToQuestionResponse(q))
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")

	if err := h.service.Delete(r.Context(), questionID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "question")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OKMessage(w, "question deleted")
}

func (h *Handler) PracticeQuestions(w http.ResponseWriter, r *http.Request) {
	count := parseIntQuery(r, "count", 10)
	category := r.URL.Query().Get("category")

	var difficulty *int
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		if d, err := strconv.Atoi(raw); err == nil {
			difficulty = &d
		}
	}

	questions, err := h.service.Practice(
		r.Context(),
		count,
		category,
		difficulty,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPracticeQuestionResponseList(questions))
}

// BrowseQuestions is the paginated listing for practice clients: enabled
// questions only, answers and analysis stripped.
func (h *Handler) BrowseQuestions(w http.ResponseWriter, r *http.Request) {
	params := ListQuestionsParams{
		Page:        parseIntQuery(r, "page", 1),
		PageSize:    parseIntQuery(r, "pageSize", 20),
		Search:      r.URL.Query().Get("search"),
		Category:    r.URL.Query().Get("category"),
		EnabledOnly: true,
	}

	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		if difficulty, err := strconv.Atoi(raw); err == nil {
			params.Difficulty = &difficulty
		}
	}

	questions, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToPracticeQuestionResponseList(questions),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Submit(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "question")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ListMistakes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 20)

	mistakes, total, err := h.service.Mistakes(
		r.Context(),
		userID,
		page,
		pageSize,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	responses := make([]MistakeResponse, 0, len(mistakes))
	for i := range mistakes {
		m := &mistakes[i]
		resp := MistakeResponse{
			Question:   ToPracticeQuestionResponse(&m.Question),
			LastAnswer: m.LastAnswer,
			WrongCount: m.WrongCount,
		}
		if m.LastTime.Valid {
			resp.LastTime = m.LastTime.Time
		}
		responses = append(responses, resp)
	}

	core.Paginated(w, responses, page, pageSize, total)
}

func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	page := parseIntQuery(r, "page", 1)
	pageSize := parseIntQuery(r, "pageSize", 20)

	questions, total, err := h.service.Favorites(
		r.Context(),
		userID,
		page,
		pageSize,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToPracticeQuestionResponseList(questions),
		page,
		pageSize,
		total,
	)
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	questionID := chi.URLParam(r, "questionID")

	favored, err := h.service.ToggleFavorite(r.Context(), userID, questionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "question")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]bool{"favorited": favored})
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
