package socket

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/corey/acmatch/internal/adapters/ahocorasick"
	"github.com/corey/acmatch/internal/ports"
	"go.uber.org/zap"
)

// AppQueries provides app-level operations to server handlers.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	// Reload re-reads the pattern source and rebuilds the matcher.
	Reload() (ReloadResult, error)
	// Source describes where the patterns come from (file path or set name).
	Source() string
	// Reloads returns how many successful reloads happened since start.
	Reloads() int
}

// Server is the daemon that listens on a Unix socket and serves scan requests.
// All connections share one matcher; scans never lock.
type Server struct {
	matcher  *ahocorasick.Matcher
	queries  AppQueries
	log      *zap.Logger
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server backed by the given matcher.
// The queries parameter may be nil if reload is not needed; a nil logger
// disables logging.
func NewServer(matcher *ahocorasick.Matcher, sockPath string, queries AppQueries, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		matcher:    matcher,
		queries:    queries,
		log:        log,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first: if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	// Handle stale socket
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		// Stale socket, remove it
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	s.log.Info("listening", zap.String("socket", s.sockPath))
	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing the socket file.
// Idempotent: safe to call multiple times (e.g., after remote shutdown + signal).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
		s.log.Info("stopped", zap.String("socket", s.sockPath))
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessage)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req, func(partial Response) bool {
			return s.writeResponse(conn, partial) == nil
		})
		if resp.Error != "" {
			s.log.Warn("request failed", zap.String("method", req.Method), zap.String("error", resp.Error))
		}
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
	if err := scanner.Err(); err != nil {
		s.log.Debug("connection closed", zap.Error(err))
	}
}

// maxMessage bounds one request line (content is base64, so ~24MB of text).
const maxMessage = 32 * 1024 * 1024

// handleRequest returns the final response for req. Methods that stream
// (scan) send their partial responses through emit first; emit reports
// false once the client is gone.
func (s *Server) handleRequest(req Request, emit func(Response) bool) Response {
	switch req.Method {
	case MethodScan:
		return s.handleScan(req, emit)
	case MethodHealth:
		return s.handleHealth(req)
	case MethodPatterns:
		return s.handlePatterns(req)
	case MethodReload:
		return s.handleReload(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

func (s *Server) handleScan(req Request, emit func(Response) bool) Response {
	// Re-marshal params to decode into ScanParams
	paramsJSON, err := json.Marshal(req.Params)
	if err != nil {
		return Response{ID: req.ID, Error: "invalid scan params"}
	}
	var params ScanParams
	if err := json.Unmarshal(paramsJSON, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid scan params"}
	}

	start := time.Now()
	var seen map[int]bool
	if params.Distinct {
		seen = make(map[int]bool)
	}
	var (
		batch     = make([]ports.Hit, 0, ScanBatchSize)
		count     int
		truncated bool
		gone      bool
	)
	_, err = s.matcher.ScanReader(context.Background(), bytes.NewReader(params.Content), 0, func(h ports.Hit) bool {
		if seen != nil {
			if seen[h.ID] {
				return true
			}
			seen[h.ID] = true
		}
		if params.Limit > 0 && count == params.Limit {
			truncated = true
			return false
		}
		if len(batch) == ScanBatchSize {
			if !emit(Response{ID: req.ID, More: true, Result: ScanResult{Hits: batch}}) {
				gone = true
				return false
			}
			batch = make([]ports.Hit, 0, ScanBatchSize)
		}
		batch = append(batch, h)
		count++
		return true
	})
	if err != nil && !errors.Is(err, ahocorasick.ErrStopped) {
		return Response{ID: req.ID, Error: err.Error()}
	}
	if gone {
		return Response{ID: req.ID, Error: "client went away"}
	}

	s.log.Debug("scan",
		zap.Int("bytes", len(params.Content)),
		zap.Int("hits", count),
		zap.Duration("elapsed", time.Since(start)))

	return Response{ID: req.ID, Result: ScanResult{
		Hits:      batch,
		Count:     count,
		Truncated: truncated,
		Elapsed:   time.Since(start).String(),
	}}
}

func (s *Server) handleHealth(req Request) Response {
	h := HealthResult{
		Status:       "ok",
		PatternCount: len(s.matcher.Patterns()),
		NodeCount:    s.matcher.Automaton().NodeCount(),
		Uptime:       time.Since(s.started).Round(time.Second).String(),
	}
	if s.queries != nil {
		h.Source = s.queries.Source()
		h.Reloads = s.queries.Reloads()
	}
	return Response{ID: req.ID, Result: h}
}

func (s *Server) handlePatterns(req Request) Response {
	patterns := s.matcher.Patterns()
	return Response{
		ID: req.ID,
		Result: PatternsResult{
			Patterns: patterns,
			Count:    len(patterns),
		},
	}
}

func (s *Server) handleReload(req Request) Response {
	if s.queries == nil {
		return Response{ID: req.ID, Error: "reload not available"}
	}

	result, err := s.queries.Reload()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	_, err = conn.Write(data)
	return err
}
