// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package server exposes the pipeline as an HTTP JSON service.
//
// Routes:
//
//   - POST /process_matrix: runs the pipeline on the JSON request (see pipeline.DecodeRequest)
//     and responds with the JSON encoding of the pipeline.Result.
//   - POST /process_matrix/figures: same request, responds with {"figures": [...]}, one Plotly
//     heatmap figure per stage.
//   - GET /healthz: responds "ok".
//
// Failures are reported as {"error": "<message>"}, with status 400 for invalid requests (including
// bodies over Options.MaxBodyBytes) and pipeline errors, 405 for wrong methods and 500 for
// internal errors.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gridops/pkg/core/grid"
	"github.com/gomlx/gridops/pkg/pipeline"
	"github.com/gomlx/gridops/pkg/viz"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Options of the Server.
type Options struct {
	// MaxBodyBytes is the maximum size of a request body.
	MaxBodyBytes int64

	// Limits applied to every pipeline run.
	Limits pipeline.Limits
}

// DefaultOptions returns the default Options: 1 MiB bodies and pipeline.DefaultLimits.
func DefaultOptions() Options {
	return Options{
		MaxBodyBytes: 1 << 20,
		Limits:       pipeline.DefaultLimits,
	}
}

// Server is an http.Handler serving the pipeline. It holds no state across requests, and
// it is safe for concurrent use.
type Server struct {
	opts    Options
	handler http.Handler
}

var _ http.Handler = (*Server)(nil)

// New creates a Server with the given options.
func New(opts Options) *Server {
	s := &Server{opts: opts}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /process_matrix", s.handleProcessMatrix)
	mux.HandleFunc("POST /process_matrix/figures", s.handleFigures)
	mux.HandleFunc("GET /healthz", handleHealth)
	for _, path := range []string{"/process_matrix", "/process_matrix/figures", "/healthz"} {
		mux.HandleFunc(path, handleMethodNotAllowed)
	}
	s.handler = withRequestID(logRequests(mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// errInternal marks errors recovered from panics.
var errInternal = errors.New("internal error")

// runPipeline is replaced in tests.
var runPipeline = pipeline.Run

// run decodes the request and runs the pipeline on it. Panics are converted to errors
// wrapping errInternal.
func (s *Server) run(w http.ResponseWriter, r *http.Request) (result *pipeline.Result, err error) {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	defer func() { _ = body.Close() }()
	cfg, err := pipeline.DecodeRequest(body)
	if err != nil {
		return nil, err
	}
	cfg.Limits = s.opts.Limits
	panicErr := exceptions.TryCatch[error](func() {
		result, err = runPipeline(cfg)
	})
	if panicErr != nil {
		return nil, errors.Wrapf(errInternal, "%+v", panicErr)
	}
	return result, err
}

func (s *Server) handleProcessMatrix(w http.ResponseWriter, r *http.Request) {
	result, err := s.run(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleFigures(w http.ResponseWriter, r *http.Request) {
	result, err := s.run(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"figures": viz.Figures(result)})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/healthz" {
		w.Header().Set("Allow", http.MethodGet)
	} else {
		w.Header().Set("Allow", http.MethodPost)
	}
	writeJSON(w, r, http.StatusMethodNotAllowed,
		errorResponse{Error: "method " + r.Method + " not allowed for " + r.URL.Path})
}

type errorResponse struct {
	Error string `json:"error"`
}

// StatusCode returns the HTTP status code used to report err.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, errInternal):
		return http.StatusInternalServerError
	case grid.KindOf(err) != "":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	if status == http.StatusInternalServerError {
		klog.Errorf("request %s: %+v", RequestID(r.Context()), err)
		writeJSON(w, r, status, errorResponse{Error: errInternal.Error()})
		return
	}
	klog.V(1).Infof("request %s: %s: %v", RequestID(r.Context()), grid.KindOf(err), err)
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		klog.Errorf("request %s: failed to encode response: %+v", RequestID(r.Context()), err)
		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// statusRecorder captures the status code written, for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// logRequests wraps an HTTP handler to log incoming requests.
func logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		klog.V(1).Infof("%s %s %s -> %d (%s)", RequestID(r.Context()), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
