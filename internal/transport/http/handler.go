package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"mocktest-service/internal/app"
	"mocktest-service/internal/domain"
)

// Handler exposes the submission and discount use cases over REST.
type Handler struct {
	submissions *app.SubmissionService
	discounts   *app.DiscountService
	packages    *app.PackageService
	logger      *zap.Logger
}

func NewHandler(submissions *app.SubmissionService, discounts *app.DiscountService, packages *app.PackageService, logger *zap.Logger) *Handler {
	return &Handler{
		submissions: submissions,
		discounts:   discounts,
		packages:    packages,
		logger:      logger,
	}
}

// Router builds the chi router for the API surface.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Post("/tests/{testID}/submissions", h.submitTest)
		r.Get("/tests/{testID}/results", h.listResults)
		r.Get("/discounts/check", h.checkDiscount)
		r.Post("/discounts/validate", h.validateDiscount)
		r.Get("/packages/{packageID}", h.getPackage)
		r.Put("/packages/{packageID}", h.savePackage)
	})
	return r
}

type submittedAnswerPayload struct {
	Answer    domain.Answer `json:"answer"`
	TimeSpent int           `json:"timeSpent"`
}

type submitRequest struct {
	StudentID  string                            `json:"studentId"`
	Answers    map[string]submittedAnswerPayload `json:"answers"`
	TimeTaken  int                               `json:"timeTaken"`
	AutoSubmit bool                              `json:"autoSubmit"`
}

type submitResponse struct {
	ResultID            string  `json:"resultId"`
	AttemptNumber       int     `json:"attemptNumber"`
	Score               float64 `json:"score"`
	TotalMarks          float64 `json:"totalMarks"`
	Percentage          float64 `json:"percentage"`
	CorrectAnswers      int     `json:"correctAnswers"`
	IncorrectAnswers    int     `json:"incorrectAnswers"`
	UnansweredQuestions int     `json:"unansweredQuestions"`
	IsPassed            bool    `json:"isPassed"`
}

func (h *Handler) submitTest(w http.ResponseWriter, r *http.Request) {
	testID := chi.URLParam(r, "testID")

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.Join(domain.ErrValidation, err))
		return
	}

	answers := make(map[string]domain.SubmittedAnswer, len(req.Answers))
	for questionID, payload := range req.Answers {
		answers[questionID] = domain.SubmittedAnswer{
			QuestionID:       questionID,
			Answer:           payload.Answer,
			TimeSpentSeconds: payload.TimeSpent,
		}
	}

	result, err := h.submissions.Submit(r.Context(), testID, req.StudentID, answers, req.TimeTaken, req.AutoSubmit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, submitResponse{
		ResultID:            result.ID,
		AttemptNumber:       result.AttemptNumber,
		Score:               result.Score,
		TotalMarks:          result.TotalMarks,
		Percentage:          result.Percentage,
		CorrectAnswers:      result.CorrectCount,
		IncorrectAnswers:    result.IncorrectCount,
		UnansweredQuestions: result.UnansweredCount,
		IsPassed:            result.Passed,
	})
}

func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	testID := chi.URLParam(r, "testID")
	studentID := r.URL.Query().Get("studentId")

	results, err := h.submissions.Results(r.Context(), testID, studentID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []domain.Result{}
	}
	h.writeJSON(w, http.StatusOK, results)
}

func (h *Handler) checkDiscount(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	packageID := r.URL.Query().Get("packageId")

	quote, err := h.discounts.Check(r.Context(), userID, packageID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

type validateRequest struct {
	UserID    string `json:"userId"`
	PackageID string `json:"packageId"`
	GroupID   string `json:"groupId,omitempty"`
	OrgID     string `json:"orgId,omitempty"`
}

func (h *Handler) validateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, errors.Join(domain.ErrValidation, err))
		return
	}

	validation, err := h.discounts.Validate(r.Context(), req.UserID, req.PackageID, req.GroupID, req.OrgID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, validation)
}

func (h *Handler) getPackage(w http.ResponseWriter, r *http.Request) {
	pkg, err := h.packages.Get(r.Context(), chi.URLParam(r, "packageID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, pkg)
}

func (h *Handler) savePackage(w http.ResponseWriter, r *http.Request) {
	var pkg domain.Package
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		h.writeError(w, r, errors.Join(domain.ErrValidation, err))
		return
	}
	pkg.ID = chi.URLParam(r, "packageID")

	saved, err := h.packages.Save(r.Context(), pkg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
	Limit  int    `json:"limit,omitempty"`
	Used   int    `json:"used,omitempty"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Duplicate
// attempts return 409 so clients know the submission is retryable after
// re-reading the attempt count; everything unclassified is an upstream
// failure and returns 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var limitErr *domain.AttemptLimitError
	switch {
	case errors.As(err, &limitErr):
		h.writeJSON(w, http.StatusForbidden, errorResponse{
			Code:   "AttemptLimitExceeded",
			Detail: limitErr.Error(),
			Limit:  limitErr.Limit,
			Used:   limitErr.Used,
		})
	case errors.Is(err, domain.ErrDuplicateAttempt):
		h.writeJSON(w, http.StatusConflict, errorResponse{Code: "PersistenceConflict", Detail: err.Error()})
	case errors.Is(err, domain.ErrTestNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Code: "TestNotFound", Detail: err.Error()})
	case errors.Is(err, domain.ErrPackageNotFound),
		errors.Is(err, domain.ErrGroupNotFound),
		errors.Is(err, domain.ErrOrganizationNotFound):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Code: "NotFound", Detail: err.Error()})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidTest):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Code: "ValidationError", Detail: err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "UpstreamFailure", Detail: "internal error"})
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response", zap.Error(err))
	}
}
