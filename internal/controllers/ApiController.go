package controllers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/multierr"

	"metricsdash/internal/models"
	"metricsdash/internal/prefetch/interfaces"
	"metricsdash/internal/providers"
	"metricsdash/internal/services"
	"metricsdash/internal/structures"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger    providers.Logger
	service   services.SeriesServiceInterface
	scheduler interfaces.SchedulerInterface
	config    *structures.Config
}

type errorResponse struct {
	Error string `json:"error"`
}

type prefetchRequest struct {
	Series []structures.PrefetchSeries `json:"series"`
}

type prefetchResponse struct {
	Requested int      `json:"requested"`
	Warmed    int      `json:"warmed"`
	Errors    []string `json:"errors,omitempty"`
}

func NewApiController(conf *structures.Config, logger providers.Logger, service services.SeriesServiceInterface, scheduler interfaces.SchedulerInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		service:   service,
		scheduler: scheduler,
		config:    conf,
	}
}

func parseFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// statusFor maps the error taxonomy onto HTTP: bad filters are the caller's
// fault, unknown sources are missing resources, upstream failures are a bad gateway.
func statusFor(err error) int {
	var invalid *models.InvalidFilterError
	var unknown *models.UnknownSourceError
	var upstream *models.UpstreamFetchError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &unknown):
		return http.StatusNotFound
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		ac.logger.Errorf(providers.TypeApp, "Unable to encode response: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logType := providers.GetLogTypeByRequestType(r.Method)
	if status >= http.StatusInternalServerError {
		ac.logger.Errorf(logType, "%s %s: %s req=%s", r.Method, r.URL.RequestURI(), err, providers.RequestIDFromContext(r.Context()))
	} else {
		ac.logger.Warnf(logType, "%s %s: %s", r.Method, r.URL.RequestURI(), err)
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal Server Error"
	}
	ac.writeJSON(w, status, errorResponse{Error: msg})
}

func (ac *ApiController) requireSource(w http.ResponseWriter, r *http.Request) (string, bool) {
	source := r.URL.Query().Get("source")
	if source == "" {
		ac.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "source is required"})
		return "", false
	}
	return source, true
}

func (ac *ApiController) GetSeries(w http.ResponseWriter, r *http.Request) {
	source, ok := ac.requireSource(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	series, err := ac.service.GetSeries(r.Context(), q.Get("filter"), source, parseFields(q.Get("fields")))
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, series)
}

func (ac *ApiController) GetCard(w http.ResponseWriter, r *http.Request) {
	source, ok := ac.requireSource(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	card, err := ac.service.GetCard(r.Context(), q.Get("filter"), source, strings.TrimSpace(q.Get("field")))
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, card)
}

func (ac *ApiController) GetSources(w http.ResponseWriter, _ *http.Request) {
	ac.writeJSON(w, http.StatusOK, ac.service.Sources())
}

// Prefetch warms the posted series, or the configured set when the body is empty.
func (ac *ApiController) Prefetch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		ac.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Bad Request"})
		return
	}
	var payload prefetchRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			ac.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Bad Request"})
			return
		}
	}
	series := payload.Series
	if len(series) == 0 {
		series = ac.config.Prefetch.Series
	}

	warmed, err := ac.scheduler.RunOnce(r.Context(), series)
	resp := prefetchResponse{Requested: len(series), Warmed: warmed}
	status := http.StatusOK
	if err != nil {
		for _, e := range multierr.Errors(err) {
			resp.Errors = append(resp.Errors, e.Error())
		}
		status = http.StatusMultiStatus
		ac.logger.Warnf(providers.TypePost, "Prefetch warmed %d/%d: %s", warmed, len(series), err)
	}
	ac.writeJSON(w, status, resp)
}
