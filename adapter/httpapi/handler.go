// Package httpapi exposes the role graph, job submission and job list
// operations over HTTP using chi.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	auth "github.com/goliatone/go-auth"
	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-svaroles/command"
	"github.com/goliatone/go-svaroles/pkg/authctx"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/query"
	"github.com/goliatone/go-svaroles/rolegraph"
	"golang.org/x/text/language"
)

// Request headers read by ActorMiddleware when TrustActorHeaders is set and
// no actor is on the context.
const (
	HeaderOfficeID = "X-Office-ID"
	HeaderUserID   = "X-User-ID"
)

// Form fields of the submission request.
const (
	FieldActionType = "roleActionType"
	FieldRoles      = "selectedRoles"
	FieldTargets    = "taggedIds"
)

// Config wires the handler to the service operations.
type Config struct {
	RoleGraph gocommand.Querier[query.RoleGraphInput, rolegraph.RenderModel]
	Submit    gocommand.Commander[command.SubmitRoleJobsInput]
	Jobs      gocommand.Querier[types.JobFilter, types.JobPage]
	// Metrics, when set, is mounted on GET /metrics.
	Metrics http.Handler
	// Tokens validates bearer tokens. The go-auth claims carry the user id
	// and the tenant metadata carries the office id.
	Tokens auth.TokenValidator
	// TrustActorHeaders accepts the office/user headers as the actor. Only
	// enable it behind a proxy that authenticates and sets those headers.
	TrustActorHeaders bool
	Logger            types.Logger
}

// Handler serves the HTTP endpoints.
type Handler struct {
	graph   gocommand.Querier[query.RoleGraphInput, rolegraph.RenderModel]
	submit  gocommand.Commander[command.SubmitRoleJobsInput]
	jobs    gocommand.Querier[types.JobFilter, types.JobPage]
	metrics http.Handler
	tokens  auth.TokenValidator
	headers bool
	logger  types.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Handler{
		graph:   cfg.RoleGraph,
		submit:  cfg.Submit,
		jobs:    cfg.Jobs,
		metrics: cfg.Metrics,
		tokens:  cfg.Tokens,
		headers: cfg.TrustActorHeaders,
		logger:  logger,
	}
}

// NewRouter creates the HTTP router.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.HealthCheck)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(h.ActorMiddleware)

		r.Get("/roles", h.RoleGraph)
		r.Get("/roles/script", h.RoleScript)
		r.Post("/jobs", h.SubmitJobs)
		r.Get("/jobs", h.ListJobs)
	})
	return r
}

// ActorMiddleware stores the acting office/user on the request context. An
// actor resolved upstream wins, then a valid bearer token, then the request
// headers when they are trusted. Anything else is rejected.
func (h *Handler) ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.resolveActor(r)
		if err != nil {
			h.logger.Debug("request actor rejected", "error", err, "request_id", middleware.GetReqID(r.Context()))
			respondError(w, http.StatusUnauthorized, "actor required")
			return
		}
		if actor.Locale == "" {
			actor.Locale = preferredLocale(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(authctx.WithActor(r.Context(), actor)))
	})
}

func (h *Handler) resolveActor(r *http.Request) (types.ActorRef, error) {
	if actor, err := authctx.ResolveActor(r.Context()); err == nil {
		return actor, nil
	}
	if token, ok := bearerToken(r); ok && h.tokens != nil {
		claims, err := h.tokens.Validate(token)
		if err != nil {
			return types.ActorRef{}, err
		}
		return authctx.ActorRefFromActorContext(auth.ActorContextFromClaims(claims))
	}
	if !h.headers {
		return types.ActorRef{}, types.ErrActorRequired
	}
	officeID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderOfficeID)), 10, 64)
	if err != nil {
		return types.ActorRef{}, err
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(HeaderUserID)), 10, 64)
	if err != nil {
		return types.ActorRef{}, err
	}
	return types.ActorRef{OfficeID: officeID, UserID: userID}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func preferredLocale(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RoleGraph returns the viewer's role grids and validator script.
func (h *Handler) RoleGraph(w http.ResponseWriter, r *http.Request) {
	model, ok := h.buildGraph(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toGraphResponse(model))
}

// RoleScript returns only the validator script.
func (h *Handler) RoleScript(w http.ResponseWriter, r *http.Request) {
	model, ok := h.buildGraph(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(model.Script.String()))
}

func (h *Handler) buildGraph(w http.ResponseWriter, r *http.Request) (rolegraph.RenderModel, bool) {
	if h.graph == nil {
		respondError(w, http.StatusNotImplemented, "role graph unavailable")
		return rolegraph.RenderModel{}, false
	}
	actor, _ := authctx.ActorFromContext(r.Context())
	model, err := h.graph.Query(r.Context(), query.RoleGraphInput{Actor: actor})
	if err != nil {
		h.fail(r.Context(), w, "role graph failed", err)
		return rolegraph.RenderModel{}, false
	}
	return model, true
}

// SubmitJobs records one job per tagged id.
func (h *Handler) SubmitJobs(w http.ResponseWriter, r *http.Request) {
	if h.submit == nil {
		respondError(w, http.StatusNotImplemented, "job submission unavailable")
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form")
		return
	}
	actor, _ := authctx.ActorFromContext(r.Context())
	var result command.SubmitRoleJobsResult
	err := h.submit.Execute(r.Context(), command.SubmitRoleJobsInput{
		Actor:      actor,
		ActionType: r.PostForm.Get(FieldActionType),
		Roles:      r.PostForm.Get(FieldRoles),
		Targets:    r.PostForm[FieldTargets],
		Result:     &result,
	})
	if err != nil {
		h.fail(r.Context(), w, "role job submission failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, toSubmitResponse(result))
}

// ListJobs lists submitted jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondError(w, http.StatusNotImplemented, "job list unavailable")
		return
	}
	actor, _ := authctx.ActorFromContext(r.Context())
	values := r.URL.Query()
	filter := types.JobFilter{
		Actor:         actor,
		OfficeID:      parseInt64(values.Get("office_id")),
		TransactionID: strings.TrimSpace(values.Get("transaction_id")),
		Status:        types.ParseJobStatus(values.Get("status")),
		Pagination: types.Pagination{
			Limit:  int(parseInt64(values.Get("limit"))),
			Offset: int(parseInt64(values.Get("offset"))),
		},
	}
	page, err := h.jobs.Query(r.Context(), filter)
	if err != nil {
		h.fail(r.Context(), w, "job list failed", err)
		return
	}
	respondJSON(w, http.StatusOK, toJobsResponse(page))
}

// fail maps errors to a status. Internal failures are reported generically.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, err, "request_id", middleware.GetReqID(ctx))
		respondError(w, status, "request failed")
		return
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrActorRequired):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrUnauthorized),
		errors.Is(err, command.ErrSubmissionDisabled),
		types.IsTextCode(err, types.TextCodeUnauthorized),
		types.IsTextCode(err, types.TextCodeFeatureDisabled):
		return http.StatusForbidden
	case errors.Is(err, command.ErrActionTypeRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseInt64(raw string) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
