// pkg/agentapi/router.go - the loopback-only HTTP front door of the install agent.

package agentapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/windowsadmins/appstore/pkg/agent"
	"github.com/windowsadmins/appstore/pkg/metrics"
	"github.com/windowsadmins/appstore/pkg/status"
	"github.com/windowsadmins/appstore/pkg/web"
)

// Agent is what the front door drives.
type Agent interface {
	Install(ctx context.Context, req agent.InstallRequest) agent.InstallResult
	Privileged() bool
	ActiveInstalls() int
	SessionDir() string
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	// Registry backs GET /metrics; nil disables the route.
	Registry *prometheus.Registry
}

// ValidateListenAddr rejects listen addresses that are not loopback.
func ValidateListenAddr(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if strings.EqualFold(host, "localhost") {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("agent listen address %q must be a loopback address", addr)
	}
	return nil
}

// NewRouter builds the front door handler.
func NewRouter(a Agent, opts Options) http.Handler {
	h := &handler{agent: a}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(web.RequestLogger)
	r.Use(loopbackOnly)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/status", h.Status)
	r.Post("/install", h.Install)
	if opts.Registry != nil {
		r.Handle("/metrics", metrics.Handler(opts.Registry))
	}

	return web.CORS(opts.AllowedOrigins, r)
}

func loopbackOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			web.WriteJSON(w, http.StatusForbidden, installResponse{
				Status:  statusError,
				Message: "the install agent only accepts local connections",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type handler struct {
	agent Agent
}

type statusResponse struct {
	status.Snapshot
	SessionDir string `json:"sessionDir"`
}

func (h *handler) Status(w http.ResponseWriter, r *http.Request) {
	snap := status.Collect(r.Context(), h.agent.Privileged(), h.agent.ActiveInstalls())
	web.WriteJSON(w, http.StatusOK, statusResponse{Snapshot: snap, SessionDir: h.agent.SessionDir()})
}

func (h *handler) Install(w http.ResponseWriter, r *http.Request) {
	var body installBody
	if err := web.DecodeJSON(w, r, &body); err != nil {
		writeInvalid(w, fmt.Errorf("%w: malformed JSON body: %v", agent.ErrInvalidRequest, err))
		return
	}
	req := body.toRequest()
	if err := req.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}

	res := h.agent.Install(r.Context(), req)
	code, st := mapOutcome(res.Outcome)
	web.WriteJSON(w, code, installResponse{
		Status:            st,
		Outcome:           string(res.Outcome),
		Message:           res.Message,
		LocalArtifactPath: res.LocalArtifactPath,
		ExitCode:          res.ExitCode,
		Output:            res.Output,
		RequestID:         res.RequestID,
		DurationMs:        res.Duration.Milliseconds(),
	})
}

func writeInvalid(w http.ResponseWriter, err error) {
	msg := err.Error()
	if !errors.Is(err, agent.ErrInvalidRequest) {
		msg = "invalid request"
	}
	web.WriteJSON(w, http.StatusBadRequest, installResponse{Status: statusError, Message: msg})
}

func mapOutcome(o agent.Outcome) (int, string) {
	switch o {
	case agent.OutcomeSuccess:
		return http.StatusOK, statusSuccess
	case agent.OutcomeRejected:
		return http.StatusForbidden, statusError
	default:
		return http.StatusInternalServerError, statusFailure
	}
}
