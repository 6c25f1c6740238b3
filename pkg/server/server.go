package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/hostwire/hostarc/pkg/hostent"
	"github.com/hostwire/hostarc/pkg/nss"
	"github.com/hostwire/hostarc/pkg/telemetry"
)

var requestCount = telemetry.Counter(
	"hostarc_requests",
	telemetry.WithDescription("Wire requests served, by operation and outcome"),
	telemetry.WithLabels("op", "status"),
)

// Server answers lookup requests on a unix socket. The service behind
// it can be swapped at runtime (config reload) without dropping the
// listener.
type Server struct {
	logger *zap.Logger
	socket string

	mu    sync.RWMutex
	svc   *nss.Service
	conns map[net.Conn]struct{}

	ln net.Listener
	wg sync.WaitGroup
}

func NewServer(logger *zap.Logger, svc *nss.Service, socket string) *Server {
	return &Server{
		logger: logger,
		svc:    svc,
		socket: socket,
		conns:  make(map[net.Conn]struct{}),
	}
}

// SetService swaps the lookup service used for subsequent requests.
func (s *Server) SetService(svc *nss.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.svc = svc
}

func (s *Server) service() *nss.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svc
}

func (s *Server) Start() error {
	// a stale socket from an unclean shutdown blocks the bind
	if err := os.Remove(s.socket); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.socket)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socket, err)
	}
	s.ln = ln

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info("lookup server listening", zap.String("socket", s.socket))
	return nil
}

// Stop closes the listener and any live connections, then waits for
// the handler goroutines to drain.
func (s *Server) Stop() error {
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Server) track(conn net.Conn, live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if live {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.logger.Error("accept failed", zap.Error(err))
			}
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	s.track(conn, true)
	defer func() {
		s.track(conn, false)
		conn.Close()
	}()

	for {
		req, err := ReadRequest(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Debug("dropping connection", zap.Error(err))
			}
			return
		}

		resp := s.dispatch(req)
		requestCount(1, req.Op.String(), resp.Status.String())

		if err := WriteResponse(conn, resp); err != nil {
			s.logger.Debug("writing response", zap.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	svc := s.service()

	switch req.Op {
	case OpLookupName:
		h, st := svc.LookupName(string(req.Payload), req.Family)
		return responseFor(h, st)
	case OpLookupAddr:
		h, st := svc.LookupAddr(req.Payload, req.Family)
		return responseFor(h, st)
	case OpEnumerate:
		hosts, st := svc.AllHosts()
		if st != nss.StatusSuccess {
			return Response{Status: st}
		}
		return Response{Status: nss.StatusSuccess, Hosts: hosts}
	default:
		return Response{Status: nss.StatusUnavail}
	}
}

func responseFor(h hostent.Host, st nss.Status) Response {
	if st != nss.StatusSuccess {
		return Response{Status: st}
	}
	return Response{Status: st, Hosts: []hostent.Host{h}}
}
