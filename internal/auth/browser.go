package auth

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"
)

const (
	osWindows = "windows"
	osDarwin  = "darwin"
	osLinux   = "linux"

	relayShutdownTimeout = 5 * time.Second
)

// BrowserPresenter presents authorization URLs in the system browser and
// waits for the OS-routed scheme callback via the loopback relay.
type BrowserPresenter struct {
	dataDir string
	logger  *zap.Logger
}

// NewBrowserPresenter creates a presenter that keeps its callback port file
// under dataDir.
func NewBrowserPresenter(dataDir string, logger *zap.Logger) *BrowserPresenter {
	if logger == nil {
		logger = zap.L().Named("browser-presenter")
	}
	return &BrowserPresenter{dataDir: dataDir, logger: logger}
}

// Present opens the system browser at authURL and blocks until the redirect
// is forwarded or ctx ends. The relay is torn down before Present returns,
// so sequential rounds never overlap surfaces.
func (p *BrowserPresenter) Present(ctx context.Context, authURL *url.URL) (*url.URL, error) {
	relay, err := StartCallbackRelay(p.dataDir, p.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionStart, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), relayShutdownTimeout)
		defer cancel()
		if err := relay.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn("Callback relay shutdown error", zap.Error(err))
		}
	}()

	if err := openBrowser(authURL.String()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionStart, err)
	}

	p.logger.Info("Browser opened, waiting for authorization callback",
		zap.String("host", authURL.Host),
		zap.Int("callback_port", relay.Port))

	return relay.Wait(ctx)
}

// openBrowser launches the default browser for the given URL.
func openBrowser(rawURL string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case osWindows:
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", rawURL}
	case osDarwin:
		cmd = "open"
		args = []string{rawURL}
	case osLinux:
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return fmt.Errorf("xdg-open not found in PATH: %w", err)
		}
		cmd = "xdg-open"
		args = []string{rawURL}
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return exec.Command(cmd, args...).Start()
}
