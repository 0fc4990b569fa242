// Package server exposes a calculator session over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/zephyrtronium/mexer"
	"github.com/zephyrtronium/mexer/internal/sample"
)

// Args configures the server.
type Args struct {
	Addr       string `arg:"--addr,env:MEXER_ADDR" default:":8080" help:"address to listen on"`
	MaxSamples int    `arg:"--max-samples,env:MEXER_MAX_SAMPLES" default:"1000000" help:"largest number of points in one /sample request"`
	MaxBody    int64  `arg:"--max-body,env:MEXER_MAX_BODY" default:"65536" help:"largest request body in bytes"`
}

// Server serves one session to every client.
type Server struct {
	sess *mexer.Session
	log  *zap.Logger
	args Args
}

// New creates a server for sess.
func New(sess *mexer.Session, log *zap.Logger, args Args) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if args.MaxBody <= 0 {
		args.MaxBody = 1 << 16
	}
	return &Server{sess: sess, log: log, args: args}
}

// Handler returns the router for the server's endpoints.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(metricsMiddleware)
	router.HandleFunc("/eval", s.Eval).Methods(http.MethodPost)
	router.HandleFunc("/sample", s.Sample).Methods(http.MethodPost)
	router.HandleFunc("/vars", s.Vars).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return router
}

// ListenAndServe serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.args.Addr)
	if err != nil {
		return fmt.Errorf("couldn't listen on %s: %w", s.args.Addr, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shut); err != nil {
			s.log.Error("couldn't shut down server", zap.Error(err))
		}
	}()
	s.log.Info("server is ready", zap.String("addr", l.Addr().String()))
	if err := srv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// EvalRequest is the body of a request to /eval.
type EvalRequest struct {
	Expr string `json:"expr"`
}

// EvalResponse is the body of a response from /eval.
type EvalResponse struct {
	Result string `json:"result"`
	Error  bool   `json:"error"`
}

// SampleRequest is the body of a request to /sample.
type SampleRequest struct {
	Expr string  `json:"expr"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// VarsResponse is the body of a response from /vars.
type VarsResponse struct {
	Vars  map[string]float64 `json:"vars"`
	Funcs []string           `json:"funcs"`
}

// Eval evaluates an expression in the session.
func (s *Server) Eval(w http.ResponseWriter, req *http.Request) {
	var r EvalRequest
	if !s.read(w, req, &r) {
		return
	}
	res := s.sess.Result(r.Expr)
	outcome := "ok"
	if res.IsError() {
		outcome = "error"
	}
	evaluations.WithLabelValues("scalar", outcome).Inc()
	s.log.Debug("evaluated", zap.String("expr", r.Expr), zap.String("outcome", outcome))
	s.write(w, http.StatusOK, EvalResponse{Result: mexer.FormatResult(res), Error: res.IsError()})
}

// Sample samples an expression over a range of x.
func (s *Server) Sample(w http.ResponseWriter, req *http.Request) {
	var r SampleRequest
	if !s.read(w, req, &r) {
		return
	}
	rg := sample.Range{Min: r.Min, Max: r.Max, Step: r.Step, Limit: s.args.MaxSamples}
	if err := rg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	series, err := sample.Sample(s.sess, r.Expr, rg)
	if err != nil {
		evaluations.WithLabelValues("batch", "error").Inc()
		s.log.Debug("sample failed", zap.String("expr", r.Expr), zap.Error(err))
		http.Error(w, mexer.FormatError(err), http.StatusUnprocessableEntity)
		return
	}
	evaluations.WithLabelValues("batch", "ok").Inc()
	samplePoints.WithLabelValues("true").Add(float64(len(series.Points)))
	samplePoints.WithLabelValues("false").Add(float64(series.Failed))
	s.write(w, http.StatusOK, series)
}

// Vars lists the variables and function definitions in the session.
func (s *Server) Vars(w http.ResponseWriter, req *http.Request) {
	env := s.sess.Env()
	fns := lo.Map(env.Funcs(), func(f *mexer.Function, _ int) string { return f.String() })
	s.write(w, http.StatusOK, VarsResponse{Vars: env.Vars(), Funcs: fns})
}

// read decodes a JSON request body into v. If it fails, it writes an error
// response and returns false.
func (s *Server) read(w http.ResponseWriter, req *http.Request, v any) bool {
	defer req.Body.Close()
	data, err := io.ReadAll(io.LimitReader(req.Body, s.args.MaxBody+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		s.log.Warn("couldn't read request", zap.Error(err))
		return false
	}
	if int64(len(data)) > s.args.MaxBody {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) write(w http.ResponseWriter, status int, v any) {
	ser, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		s.log.Error("couldn't encode response", zap.Error(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(ser)
}
