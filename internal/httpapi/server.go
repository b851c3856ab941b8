package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"textpipe/pkg/types"
)

// Service defines the methods the HTTP layer needs from the pipeline manager.
type Service interface {
	ListModels() []types.Model
	Tasks() []string
	Status() types.StatusResponse
	Ready() bool
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	Warm(ctx context.Context, modelID, task string) (string, error)
	Unload(modelID, task string) error
}

// NewMux builds the HTTP handler tree around svc.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Get("/models", modelsHandler(svc))
	r.Get("/tasks", tasksHandler(svc))
	r.Get("/status", statusHandler(svc))
	r.Post("/generate", generateHandler(svc))
	r.Post("/pipelines/warm", warmHandler(svc))
	r.Delete("/pipelines", unloadHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// modelsHandler answers GET /models.
//
//	@Summary	List discovered models
//	@Produce	json
//	@Success	200	{object}	types.ModelsResponse
//	@Router		/models [get]
func modelsHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models := svc.ListModels()
		if models == nil {
			models = []types.Model{}
		}
		writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models})
	}
}

// tasksHandler answers GET /tasks.
//
//	@Summary	List supported task identifiers
//	@Produce	json
//	@Success	200	{object}	types.TasksResponse
//	@Router		/tasks [get]
func tasksHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.TasksResponse{Tasks: svc.Tasks()})
	}
}

// statusHandler answers GET /status.
//
//	@Summary	Report manager and instance state
//	@Produce	json
//	@Success	200	{object}	types.StatusResponse
//	@Router		/status [get]
func statusHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}

// generateHandler answers POST /generate.
//
//	@Summary	Generate text for one prompt or an ordered batch
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.GenerateRequest	true	"generation request"
//	@Success	200		{object}	types.GenerateResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Failure	429		{object}	types.ErrorResponse
//	@Failure	503		{object}	types.ErrorResponse
//	@Router		/generate [post]
func generateHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireJSON(w, r) {
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Oversized bodies surface here too; a plain 400 avoids leaking
			// size limit details.
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Prompt) == "" && len(req.Prompts) == 0 {
			writeJSONError(w, http.StatusBadRequest, "prompt or prompts is required")
			return
		}

		lvl := requestLogLevel(r)
		logGenerateStart(r, lvl, req)

		// Join the server base context with the request context so shutdown
		// cancels in-flight work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if generateTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(generateTimeout)*time.Second)
			defer tcancel()
		}

		start := time.Now()
		resp, err := svc.Generate(ctx, req)
		if err != nil {
			// Client gone or server shutting down: nobody left to answer.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusForError(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure("queue")
			}
			writeJSONError(w, status, err.Error())
			logGenerateEnd(r, lvl, status, start, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		logGenerateEnd(r, lvl, http.StatusOK, start, nil)
	}
}

// warmHandler answers POST /pipelines/warm.
//
//	@Summary	Load a pipeline ahead of traffic
//	@Accept		json
//	@Produce	json
//	@Param		request	body		types.WarmRequest	true	"warm request"
//	@Success	202		{object}	types.WarmResponse
//	@Failure	400		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/pipelines/warm [post]
func warmHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireJSON(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.WarmRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		op, err := svc.Warm(r.Context(), req.Model, req.Task)
		if err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, types.WarmResponse{Op: op})
	}
}

// unloadHandler answers DELETE /pipelines. An empty task drops every task of
// the model.
//
//	@Summary	Unload pipeline instances for a model
//	@Produce	json
//	@Param		model	query	string	true	"model id"
//	@Param		task	query	string	false	"task; empty unloads all tasks"
//	@Success	204
//	@Failure	404	{object}	types.ErrorResponse
//	@Router		/pipelines [delete]
func unloadHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		model := r.URL.Query().Get("model")
		task := r.URL.Query().Get("task")
		if err := svc.Unload(model, task); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// requireJSON rejects non-JSON content types before the body is read.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	return true
}
