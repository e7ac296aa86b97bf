package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

const (
	heartbeatInterval = 20 * time.Second
	maxActionBody     = 4 << 10
	defaultCertCache  = "cert-cache"
)

var errNoTLSDomains = errors.New("no domains provided for automatic TLS")

type auctionClient interface {
	Connect(ctx context.Context) error
	Connected() bool
	RefreshSnapshot(ctx context.Context) (domain.AuctionSnapshot, error)
	PlaceBid(ctx context.Context, amount string) (common.Hash, error)
	Withdraw(ctx context.Context) (common.Hash, error)
	EndAuction(ctx context.Context) (common.Hash, error)
	PauseAuction(ctx context.Context) (common.Hash, error)
	ResumeAuction(ctx context.Context) (common.Hash, error)
	ResetAuction(ctx context.Context, newMinimum string) (common.Hash, error)
}

type viewFeed interface {
	Latest() (domain.AuctionView, bool)
	Subscribe() chan domain.AuctionView
	Unsubscribe(ch chan domain.AuctionView)
}

// Server exposes the auction page, JSON action endpoints and an SSE stream of
// the displayed auction fields.
type Server struct {
	Addr   string
	Client auctionClient
	Feed   viewFeed
	logger *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, client auctionClient, feed viewFeed, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Client: client, Feed: feed, logger: logger}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /auction/stream", s.handleStream)
	mux.HandleFunc("GET /api/auction", s.handleLatest)

	mux.HandleFunc("POST /api/connect", s.action(func(ctx context.Context, _ actionRequest) (common.Hash, error) {
		return common.Hash{}, s.Client.Connect(ctx)
	}))
	mux.HandleFunc("POST /api/refresh", s.action(func(ctx context.Context, _ actionRequest) (common.Hash, error) {
		_, err := s.Client.RefreshSnapshot(ctx)
		return common.Hash{}, err
	}))
	mux.HandleFunc("POST /api/bid", s.action(func(ctx context.Context, req actionRequest) (common.Hash, error) {
		return s.Client.PlaceBid(ctx, req.Amount)
	}))
	mux.HandleFunc("POST /api/withdraw", s.action(func(ctx context.Context, _ actionRequest) (common.Hash, error) {
		return s.Client.Withdraw(ctx)
	}))
	mux.HandleFunc("POST /api/end", s.action(func(ctx context.Context, _ actionRequest) (common.Hash, error) {
		return s.Client.EndAuction(ctx)
	}))
	mux.HandleFunc("POST /api/pause", s.action(func(ctx context.Context, _ actionRequest) (common.Hash, error) {
		return s.Client.PauseAuction(ctx)
	}))
	mux.HandleFunc("POST /api/resume", s.action(func(ctx context.Context, _ actionRequest) (common.Hash, error) {
		return s.Client.ResumeAuction(ctx)
	}))
	mux.HandleFunc("POST /api/reset", s.action(func(ctx context.Context, req actionRequest) (common.Hash, error) {
		return s.Client.ResetAuction(ctx, req.NewMinimumBid)
	}))
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := newHTTPServer(s.Addr, s.Handler())
	go s.shutdownOnDone(ctx, server)

	s.logger.Info("web server listening", zap.String("addr", s.Addr))
	return ignoreClosed(server.ListenAndServe())
}

// StartWithAutoTLS serves HTTPS with certificates obtained via ACME and answers
// HTTP-01 challenges on port 80.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	manager, err := newCertManager(domains, cacheDir)
	if err != nil {
		return err
	}

	challenge := newHTTPServer(":80", manager.HTTPHandler(nil))
	server := newHTTPServer(s.Addr, s.Handler())
	server.TLSConfig = manager.TLSConfig()
	server.TLSConfig.MinVersion = tls.VersionTLS12

	go s.shutdownOnDone(ctx, challenge, server)
	go func() {
		if err := ignoreClosed(challenge.ListenAndServe()); err != nil {
			s.logger.Error("acme challenge server", zap.Error(err))
		}
	}()

	s.logger.Info("web server listening with TLS", zap.String("addr", s.Addr), zap.Strings("domains", domains))
	return ignoreClosed(server.ListenAndServeTLS("", ""))
}

func newCertManager(domains []string, cacheDir string) (*autocert.Manager, error) {
	if len(domains) == 0 {
		return nil, errNoTLSDomains
	}
	if cacheDir == "" {
		cacheDir = defaultCertCache
	}
	return &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}, nil
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func (s *Server) shutdownOnDone(ctx context.Context, servers ...*http.Server) {
	if ctx == nil {
		return
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("web server shutdown", zap.String("addr", srv.Addr), zap.Error(err))
		}
	}
}

func ignoreClosed(err error) error {
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type actionRequest struct {
	Amount        string `json:"amount"`
	NewMinimumBid string `json:"newMinimumBid"`
}

type actionResponse struct {
	RequestID string              `json:"requestId"`
	Tx        string              `json:"tx,omitempty"`
	View      *domain.AuctionView `json:"view,omitempty"`
	Error     string              `json:"error,omitempty"`
}

func (s *Server) action(fn func(ctx context.Context, req actionRequest) (common.Hash, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		logger := s.logger.With(zap.String("request_id", requestID), zap.String("path", r.URL.Path))

		var req actionRequest
		if r.ContentLength != 0 {
			body := http.MaxBytesReader(w, r.Body, maxActionBody)
			if err := json.NewDecoder(body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, actionResponse{RequestID: requestID, Error: "malformed request body"})
				return
			}
		}

		hash, err := fn(r.Context(), req)
		resp := actionResponse{RequestID: requestID}
		if hash != (common.Hash{}) {
			resp.Tx = hash.Hex()
		}
		if err != nil {
			logger.Warn("auction action failed", zap.Error(err))
			resp.Error = err.Error()
			writeJSON(w, statusFor(err), resp)
			return
		}

		if view, ok := s.latest(); ok {
			resp.View = &view
		}

		logger.Info("auction action done", zap.String("tx", resp.Tx))
		writeJSON(w, http.StatusOK, resp)
	}
}

// statusFor maps error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserRejected):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTransactionReverted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotConnected):
		return http.StatusPreconditionRequired
	case errors.Is(err, domain.ErrReadFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) latest() (domain.AuctionView, bool) {
	if s.Feed == nil {
		return domain.AuctionView{}, false
	}
	return s.Feed.Latest()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	view, ok := s.latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Feed == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "auction feed not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	views := s.Feed.Subscribe()
	defer s.Feed.Unsubscribe(views)

	// send a comment heartbeat so proxies keep connection
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	send := func(view domain.AuctionView) error {
		payload, err := json.Marshal(view)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "event: auction\n")
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
		return nil
	}

	if view, ok := s.Feed.Latest(); ok {
		if err := send(view); err != nil {
			s.logger.Warn("auction stream initial send", zap.Error(err))
			return
		}
	} else {
		fmt.Fprintf(w, ": waiting for wallet connection\n\n")
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case view, open := <-views:
			if !open {
				return
			}
			if err := send(view); err != nil {
				s.logger.Warn("auction stream send", zap.Error(err))
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
