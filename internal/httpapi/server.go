package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"predictd/internal/manager"
	"predictd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	GetModel(name string) (types.Model, error)
	Predict(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error)
	Stats(ctx context.Context) types.StatsResponse
	Ready() bool
	Uptime() time.Duration
}

// Options configures optional parts of the router.
type Options struct {
	// Events, when set, is served at /system/events.
	Events http.Handler
}

// NewMux builds the router without an event stream.
func NewMux(svc Service) http.Handler {
	return NewMuxWithOptions(svc, Options{})
}

// NewMuxWithOptions builds the router.
func NewMuxWithOptions(svc Service, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
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
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	// Compression for JSON endpoints; the event stream must stay hijackable.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/health", handleHealth(svc))
		r.Get("/models", handleModels(svc))
		r.Get("/models/{name}", handleModel(svc))
		r.Post("/predict", handlePredict(svc))
		r.Get("/system/stats", handleStats(svc))
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
			if svc.Ready() {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("ready"))
				return
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
		})
		r.Get("/metrics", promhttp.Handler().ServeHTTP)
	})
	if opts.Events != nil {
		r.Get("/system/events", opts.Events.ServeHTTP)
	}
	MountSwagger(r)
	return r
}

// handleHealth godoc
// @Summary      Health check
// @Description  Liveness plus the number of registered models.
// @Tags         system
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func handleHealth(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		if !svc.Ready() {
			status = "degraded"
		}
		writeJSON(w, http.StatusOK, types.HealthResponse{
			Status:        status,
			ModelsLoaded:  len(svc.ListModels()),
			UptimeSeconds: int64(svc.Uptime().Seconds()),
			Timestamp:     time.Now().Unix(),
		})
	}
}

// handleModels godoc
// @Summary      List models
// @Description  Descriptors of every registered model, in registry order.
// @Tags         models
// @Produce      json
// @Success      200  {array}  types.Model
// @Router       /models [get]
func handleModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models := svc.ListModels()
		if models == nil {
			models = []types.Model{}
		}
		writeJSON(w, http.StatusOK, models)
	}
}

// handleModel godoc
// @Summary      Get a model
// @Tags         models
// @Produce      json
// @Param        name  path  string  true  "Model name"
// @Success      200  {object}  types.Model
// @Failure      404  {object}  types.ErrorResponse
// @Router       /models/{name} [get]
func handleModel(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetModel(chi.URLParam(r, "name"))
		if err != nil {
			writeJSONError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// handleStats godoc
// @Summary      Serving statistics
// @Tags         system
// @Produce      json
// @Success      200  {object}  types.StatsResponse
// @Router       /system/stats [get]
func handleStats(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Stats(r.Context()))
	}
}

// handlePredict godoc
// @Summary      Score feature records
// @Description  Scores every record with the best model for the domain (or the named model).
// @Tags         predict
// @Accept       json
// @Produce      json
// @Param        request  body  types.PredictRequest  true  "Prediction request"
// @Success      200  {object}  types.PredictResponse
// @Failure      400  {object}  types.ErrorResponse
// @Failure      404  {object}  types.ErrorResponse
// @Failure      415  {object}  types.ErrorResponse
// @Failure      429  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /predict [post]
func handlePredict(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plog := newPredictLog(r)
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			fail(w, plog, http.StatusUnsupportedMediaType, errors.New("Content-Type must be application/json"))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				fail(w, plog, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
				return
			}
			fail(w, plog, http.StatusBadRequest, errors.New("invalid JSON body"))
			return
		}
		plog.begin(req.Domain, req.ModelName, len(req.Data))
		plog.debug(req)

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if predictTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, predictTimeout)
			defer tcancel()
		}
		ctx = manager.WithRequestID(ctx, plog.rid)

		resp, err := svc.Predict(ctx, req)
		if err != nil {
			// Client went away; nobody is listening for the error body.
			if r.Context().Err() != nil {
				plog.end(499, "", err)
				return
			}
			status := statusFor(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure("queue_full")
			}
			fail(w, plog, status, err)
			return
		}
		observePrediction(resp.ModelUsed, resp.Domain, len(resp.Predictions))
		writeJSON(w, http.StatusOK, resp)
		plog.end(http.StatusOK, resp.ModelUsed, nil)
	}
}

func fail(w http.ResponseWriter, plog predictLog, status int, err error) {
	observePredictError(status)
	writeJSONError(w, status, err.Error())
	plog.end(status, "", err)
}
