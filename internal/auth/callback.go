package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	relayPath = "/callback"
	// PortFileName records the relay's port inside the data directory so a
	// second process invocation (the OS scheme handler) can find it.
	PortFileName = "callback.port"

	relayReadHeaderTimeout = 10 * time.Second
)

// CallbackRelay receives the OAuth redirect URL forwarded by the OS scheme
// handler. The custom redirect scheme cannot reach a loopback listener
// directly, so the handler invocation ("haconnect auth callback <url>")
// forwards the redirect to the relay over localhost.
type CallbackRelay struct {
	Port int

	httpSrv   *http.Server
	portFile  string
	redirects chan *url.URL
	logger    *zap.Logger
}

// StartCallbackRelay binds a dynamic loopback port, writes the port file
// under dataDir, and serves the forward endpoint until Shutdown.
func StartCallbackRelay(dataDir string, logger *zap.Logger) (*CallbackRelay, error) {
	if logger == nil {
		logger = zap.L().Named("auth-callback")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to allocate callback port: %w", err)
	}
	addr := listener.Addr().(*net.TCPAddr)

	relay := &CallbackRelay{
		Port:      addr.Port,
		redirects: make(chan *url.URL, 1),
		logger:    logger.With(zap.Int("port", addr.Port)),
	}

	r := chi.NewRouter()
	r.Post(relayPath, relay.handleForward)

	relay.httpSrv = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: relayReadHeaderTimeout,
	}

	if dataDir != "" {
		relay.portFile = filepath.Join(dataDir, PortFileName)
		if err := os.WriteFile(relay.portFile, []byte(strconv.Itoa(addr.Port)), 0o600); err != nil {
			listener.Close()
			return nil, fmt.Errorf("failed to write callback port file: %w", err)
		}
	}

	go func() {
		relay.logger.Debug("Callback relay listening")
		if err := relay.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			relay.logger.Error("Callback relay error", zap.Error(err))
		}
	}()

	return relay, nil
}

func (r *CallbackRelay) handleForward(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	raw := strings.TrimSpace(req.PostFormValue("url"))
	redirect, err := url.Parse(raw)
	if err != nil || redirect.Scheme == "" {
		r.logger.Warn("Rejected malformed forwarded redirect", zap.String("url", raw))
		http.Error(w, "invalid redirect url", http.StatusBadRequest)
		return
	}

	select {
	case r.redirects <- redirect:
		r.logger.Info("Redirect forwarded to waiting session",
			zap.String("scheme", redirect.Scheme))
	default:
		r.logger.Warn("No session waiting for redirect, dropping")
	}

	w.WriteHeader(http.StatusNoContent)
}

// Wait blocks until a redirect is forwarded or the context ends. Context
// cancellation is reported as ErrCancelled: the user gave up on the login.
func (r *CallbackRelay) Wait(ctx context.Context) (*url.URL, error) {
	select {
	case redirect := <-r.redirects:
		return redirect, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
}

// Shutdown stops the relay and removes the port file.
func (r *CallbackRelay) Shutdown(ctx context.Context) error {
	if r.portFile != "" {
		if err := os.Remove(r.portFile); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("Failed to remove callback port file", zap.Error(err))
		}
	}
	return r.httpSrv.Shutdown(ctx)
}

// ForwardRedirect delivers a redirect URL to the relay of a running process,
// locating it through the port file under dataDir.
func ForwardRedirect(dataDir, rawRedirect string) error {
	data, err := os.ReadFile(filepath.Join(dataDir, PortFileName))
	if err != nil {
		return fmt.Errorf("no authentication session is waiting for a callback: %w", err)
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fmt.Errorf("corrupt callback port file: %w", err)
	}

	relayURL := fmt.Sprintf("http://127.0.0.1:%d%s", port, relayPath)
	resp, err := http.PostForm(relayURL, url.Values{"url": {rawRedirect}})
	if err != nil {
		return fmt.Errorf("failed to reach authentication session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("authentication session rejected the callback: HTTP %d", resp.StatusCode)
	}
	return nil
}
