package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xhad/rescript/internal/models"
)

// Runner is the pipeline contract the server depends on.
type Runner interface {
	Run(ctx context.Context, rawURLs []string) (models.Outcome, error)
}

type Config struct {
	Addr           string
	RequestTimeout time.Duration
}

type Server struct {
	config   Config
	pipeline Runner
	isInput  func(error) bool
}

// New builds a Server around a pipeline. isInputError classifies pipeline
// errors so input-validation failures map to 400 instead of 500.
func New(config Config, pipeline Runner, isInputError func(error) bool) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 3 * time.Minute
	}
	if isInputError == nil {
		isInputError = func(error) bool { return false }
	}

	return &Server{
		config:   config,
		pipeline: pipeline,
		isInput:  isInputError,
	}
}

type rewriteRequest struct {
	URLs []string `json:"urls"`
}

type rewriteResponse struct {
	Success              bool   `json:"success"`
	InputVideos          int    `json:"inputVideos,omitempty"`
	FinalScript          string `json:"finalScript,omitempty"`
	RawTranscriptsLength int    `json:"rawTranscriptsLength,omitempty"`
	Degraded             bool   `json:"degraded,omitempty"`
	Error                string `json:"error,omitempty"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/rewrite", s.handleRewrite)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.config.RequestTimeout + 30*time.Second,
	}

	log.Printf("server: listening on %s", s.config.Addr)
	return srv.ListenAndServe()
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, rewriteResponse{Success: false, Error: "method not allowed"})
		return
	}

	// Unexpected faults surface as a 500 with the fault's message, never a
	// stack trace.
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("server: panic in rewrite handler: %v", rec)
			writeJSON(w, http.StatusInternalServerError, rewriteResponse{
				Success: false,
				Error:   fmt.Sprintf("internal error: %v", rec),
			})
		}
	}()

	urls := parseURLs(r)

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	outcome, err := s.pipeline.Run(ctx, urls)
	if err != nil {
		status := http.StatusInternalServerError
		if s.isInput(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, rewriteResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, rewriteResponse{
		Success:              true,
		InputVideos:          outcome.ResolvedCount,
		FinalScript:          outcome.Result.Text(),
		RawTranscriptsLength: outcome.RawLength,
		Degraded:             outcome.Result.Degraded,
	})
}

// parseURLs accepts a JSON body {urls: [...]}, falls back to a line-delimited
// plain-text body, then to a comma-separated "urls" query parameter.
func parseURLs(r *http.Request) []string {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err == nil && len(strings.TrimSpace(string(body))) > 0 {
		var req rewriteRequest
		if jsonErr := json.Unmarshal(body, &req); jsonErr == nil && len(req.URLs) > 0 {
			return req.URLs
		}

		var urls []string
		for _, line := range strings.Split(string(body), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				urls = append(urls, line)
			}
		}
		if len(urls) > 0 {
			return urls
		}
	}

	if param := r.URL.Query().Get("urls"); param != "" {
		var urls []string
		for _, part := range strings.Split(param, ",") {
			if part = strings.TrimSpace(part); part != "" {
				urls = append(urls, part)
			}
		}
		return urls
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload rewriteResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("server: error writing response: %v", err)
	}
}
