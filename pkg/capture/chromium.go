package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/harrisonrobin/snapcal/pkg/apperr"
)

const (
	DefaultWidth   = 1920
	DefaultHeight  = 1080
	DefaultTimeout = 30 * time.Second
)

// Source produces the raw bytes of one screenshot.
type Source interface {
	Capture(ctx context.Context) ([]byte, error)
}

// ChromeSource captures the viewport of a browser page through the DevTools
// protocol.
type ChromeSource struct {
	// RemoteURL is the browser's DevTools websocket URL, e.g.
	// "ws://127.0.0.1:9222/devtools/browser/<id>". When set, the visible page
	// of that browser is captured.
	RemoteURL string

	// URL is rendered in a headless Chromium when RemoteURL is empty.
	URL string

	// Width and Height size the headless viewport.
	Width  int
	Height int

	Timeout time.Duration
}

// Capture returns a PNG of the page's visible viewport.
func (s *ChromeSource) Capture(parentCtx context.Context) ([]byte, error) {
	if s.RemoteURL == "" && s.URL == "" {
		return nil, apperr.New(apperr.CaptureError, "capture", errors.New("no browser or URL configured"))
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(parentCtx, timeout)
	defer cancel()

	var (
		png []byte
		err error
	)
	if s.RemoteURL != "" {
		png, err = s.captureRemote(ctx)
	} else {
		png, err = s.captureHeadless(ctx)
	}
	if err != nil {
		return nil, apperr.New(apperr.CaptureError, "capture", err)
	}
	return png, nil
}

func (s *ChromeSource) captureRemote(ctx context.Context) ([]byte, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(ctx, s.RemoteURL)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	infos, err := chromedp.Targets(browserCtx)
	if err != nil {
		return nil, fmt.Errorf("list browser targets: %w", err)
	}
	page := pickPageTarget(infos)
	if page == nil {
		return nil, errors.New("no visible page in the browser")
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx, chromedp.WithTargetID(page.TargetID))
	defer cancelTab()

	var png []byte
	if err := chromedp.Run(tabCtx, chromedp.CaptureScreenshot(&png)); err != nil {
		return nil, fmt.Errorf("capture %s: %w", page.URL, err)
	}
	return png, nil
}

func (s *ChromeSource) captureHeadless(ctx context.Context) ([]byte, error) {
	width, height := s.Width, s.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(s.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Let late paints settle.
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.CaptureScreenshot(&png),
	}
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return nil, fmt.Errorf("chromedp run failed: %w", err)
	}
	return png, nil
}

// pickPageTarget returns the first ordinary web page. Chrome lists targets
// most recently focused first.
func pickPageTarget(infos []*target.Info) *target.Info {
	for _, info := range infos {
		if info == nil || info.Type != "page" {
			continue
		}
		if strings.HasPrefix(info.URL, "devtools://") || strings.HasPrefix(info.URL, "chrome-extension://") {
			continue
		}
		return info
	}
	return nil
}

// FileSource reads a screenshot that already exists on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Capture(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, apperr.New(apperr.CaptureError, "read image", err)
	}
	return b, nil
}
