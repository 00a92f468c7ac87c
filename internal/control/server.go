// Package control exposes the kiosk's small HTTP control surface: a health
// probe and a reload trigger that touches the shared reload marker.
package control

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Reloader is satisfied by *env.Env.
type Reloader interface {
	TouchReloadMarker() error
}

type Server struct {
	reloader Reloader
	log      *slog.Logger
}

func NewServer(r Reloader, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{reloader: r, log: log}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Path("/healthz").Methods("GET").HandlerFunc(s.handleHealth)
	r.Path("/reload").Methods("POST").HandlerFunc(s.handleReload)
}

func (s *Server) handleHealth(res http.ResponseWriter, req *http.Request) {
	res.Header().Set("content-type", "text/plain")
	_, _ = res.Write([]byte("ok\n"))
}

func (s *Server) handleReload(res http.ResponseWriter, req *http.Request) {
	if err := s.reloader.TouchReloadMarker(); err != nil {
		s.log.Error("could not request reload", "err", err)
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}
	s.log.Info("reload requested", "remote", req.RemoteAddr)
	res.WriteHeader(http.StatusAccepted)
}

// Run serves the control routes on addr until ctx is canceled.
func Run(ctx context.Context, addr string, s *Server) error {
	r := mux.NewRouter()
	s.RegisterRoutes(r)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("control server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if e := <-errc; e != nil && !errors.Is(e, http.ErrServerClosed) {
			return e
		}
		return err
	}
}
