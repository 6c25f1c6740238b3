// Package status serves the daemon's health and metrics endpoints.
package status

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Server struct {
	listen         string
	logger         *zap.Logger
	metricsHandler http.Handler
	server         *http.Server
	readyCheck     func() bool
}

func NewServer(listen string, logger *zap.Logger, metricsHandler http.Handler, readyCheck func() bool) *Server {
	return &Server{
		listen:         listen,
		logger:         logger,
		metricsHandler: metricsHandler,
		readyCheck:     readyCheck,
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:    s.listen,
		Handler: mux,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("unable to start status server", zap.Error(err))
		}
	}()

	s.logger.Info("status server listening", zap.String("url", "http://"+s.listen))
	return nil
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) IsReady() bool {
	return s.readyCheck == nil || s.readyCheck()
}

func (s *Server) setupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.IsReady() {
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("ready")); err != nil {
				s.logger.Error("failed to write response", zap.Error(err))
			}
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, err := w.Write([]byte("not ready")); err != nil {
				s.logger.Error("failed to write response", zap.Error(err))
			}
		}
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("healthy")); err != nil {
			s.logger.Error("failed to write response", zap.Error(err))
		}
	})

	if s.metricsHandler != nil {
		mux.Handle("GET /metrics", s.metricsHandler)
	}
}
