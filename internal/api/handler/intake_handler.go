package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apimw "github.com/ricirt/breed-query-worker/internal/api/middleware"
	"github.com/ricirt/breed-query-worker/internal/domain"
	"github.com/ricirt/breed-query-worker/internal/service"
)

// Submitter enqueues a typed query for asynchronous execution.
type Submitter interface {
	Submit(ctx context.Context, recipient string, q domain.Query) (*service.Submission, error)
}

type ListAllRequest struct {
	Email         string `json:"email" validate:"required,email"`
	IncludeImages bool   `json:"includeImages"`
	SortBy        string `json:"sortBy" validate:"omitempty,oneof=name origin"`
	SortDirection string `json:"sortDirection" validate:"omitempty,oneof=ASC DESC asc desc"`
}

type ByIDRequest struct {
	Email         string `json:"email" validate:"required,email"`
	BreedID       string `json:"breedId" validate:"required,uuid"`
	IncludeImages bool   `json:"includeImages"`
}

type ByTemperamentRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Temperament   string `json:"temperament" validate:"required,max=100"`
	IncludeImages bool   `json:"includeImages"`
}

type ByOriginRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Origin        string `json:"origin" validate:"required,max=100"`
	IncludeImages bool   `json:"includeImages"`
}

// IntakeHandler accepts breed queries over HTTP and puts them on the work
// queue. Results arrive later by email; the response only acknowledges.
type IntakeHandler struct {
	svc        Submitter
	validate   *validator.Validate
	logger     *zap.Logger
	onEnqueued func(domain.RequestType)
}

// NewIntakeHandler builds the handler. onEnqueued is optional (nil = no-op).
func NewIntakeHandler(svc Submitter, logger *zap.Logger, onEnqueued func(domain.RequestType)) *IntakeHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if onEnqueued == nil {
		onEnqueued = func(domain.RequestType) {}
	}
	return &IntakeHandler{svc: svc, validate: v, logger: logger, onEnqueued: onEnqueued}
}

// ListAll handles POST /api/v1/async/breeds/all
//
// @Summary  Queue a list of every breed
// @Tags     breeds
// @Accept   json
// @Produce  json
// @Param    body  body      ListAllRequest  true  "Query"
// @Success  202   {object}  service.Submission
// @Failure  400   {object}  map[string]string
// @Failure  422   {object}  map[string]any
// @Failure  503   {object}  map[string]string
// @Router   /api/v1/async/breeds/all [post]
func (h *IntakeHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	var req ListAllRequest
	if !h.bind(w, r, &req) {
		return
	}
	q := domain.ListAllQuery{IncludeImages: req.IncludeImages}
	if req.SortBy != "" {
		q.SortBy = domain.SortField(req.SortBy)
	}
	if req.SortDirection != "" {
		q.SortDirection = domain.SortDirection(strings.ToUpper(req.SortDirection))
	}
	h.submit(w, r, req.Email, q)
}

// ByID handles POST /api/v1/async/breeds/by-id
//
// @Summary  Queue a breed lookup by ID
// @Tags     breeds
// @Accept   json
// @Produce  json
// @Param    body  body      ByIDRequest  true  "Query"
// @Success  202   {object}  service.Submission
// @Failure  400   {object}  map[string]string
// @Failure  422   {object}  map[string]any
// @Failure  503   {object}  map[string]string
// @Router   /api/v1/async/breeds/by-id [post]
func (h *IntakeHandler) ByID(w http.ResponseWriter, r *http.Request) {
	var req ByIDRequest
	if !h.bind(w, r, &req) {
		return
	}
	id, err := uuid.Parse(req.BreedID)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "breedId must be a valid UUID")
		return
	}
	h.submit(w, r, req.Email, domain.GetByIDQuery{ID: id, IncludeImages: req.IncludeImages})
}

// ByTemperament handles POST /api/v1/async/breeds/by-temperament
//
// @Summary  Queue a temperament search
// @Tags     breeds
// @Accept   json
// @Produce  json
// @Param    body  body      ByTemperamentRequest  true  "Query"
// @Success  202   {object}  service.Submission
// @Failure  400   {object}  map[string]string
// @Failure  422   {object}  map[string]any
// @Failure  503   {object}  map[string]string
// @Router   /api/v1/async/breeds/by-temperament [post]
func (h *IntakeHandler) ByTemperament(w http.ResponseWriter, r *http.Request) {
	var req ByTemperamentRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.submit(w, r, req.Email, domain.SearchByTraitQuery{
		Trait:         strings.TrimSpace(req.Temperament),
		IncludeImages: req.IncludeImages,
	})
}

// ByOrigin handles POST /api/v1/async/breeds/by-origin
//
// @Summary  Queue an origin search
// @Tags     breeds
// @Accept   json
// @Produce  json
// @Param    body  body      ByOriginRequest  true  "Query"
// @Success  202   {object}  service.Submission
// @Failure  400   {object}  map[string]string
// @Failure  422   {object}  map[string]any
// @Failure  503   {object}  map[string]string
// @Router   /api/v1/async/breeds/by-origin [post]
func (h *IntakeHandler) ByOrigin(w http.ResponseWriter, r *http.Request) {
	var req ByOriginRequest
	if !h.bind(w, r, &req) {
		return
	}
	h.submit(w, r, req.Email, domain.SearchByOriginQuery{
		Origin:        strings.TrimSpace(req.Origin),
		IncludeImages: req.IncludeImages,
	})
}

// bind decodes and validates the body, writing the error response itself.
func (h *IntakeHandler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			respondError(w, http.StatusBadRequest, err.Error())
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
		return false
	}
	return true
}

func (h *IntakeHandler) submit(w http.ResponseWriter, r *http.Request, recipient string, q domain.Query) {
	sub, err := h.svc.Submit(r.Context(), recipient, q)
	if err != nil {
		h.logger.Warn("enqueue request failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("request_type", string(q.Type())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	h.onEnqueued(q.Type())
	respondJSON(w, http.StatusAccepted, sub)
}
