// Package capture screenshots a chart page through Chromium and files the
// PNG under the hourly verification naming.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/dgnsrekt/fxboard/internal/charts"
	"github.com/dgnsrekt/fxboard/internal/refresh"
)

// Config describes what to capture and how to reach the browser.
type Config struct {
	// CDPURL attaches to a running browser. Empty launches headless Chromium.
	CDPURL       string
	ChartURL     string
	WaitSelector string
	Width        int
	Height       int
	// Settle is an extra pause after the selector appears, for chart animations.
	Settle   time.Duration
	Timeout  time.Duration
	Location *time.Location
}

// Saver stores a captured PNG.
type Saver interface {
	Save(date, slot string, png []byte, sourceURL string) (charts.Meta, error)
}

// Capturer takes chart screenshots.
type Capturer struct {
	cfg   Config
	store Saver
	shoot func(ctx context.Context) ([]byte, error)
	now   func() time.Time
}

// New creates a Capturer.
func New(cfg Config, store Saver) *Capturer {
	if cfg.Width <= 0 {
		cfg.Width = 1600
	}
	if cfg.Height <= 0 {
		cfg.Height = 900
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	c := &Capturer{cfg: cfg, store: store, now: time.Now}
	c.shoot = c.screenshot
	return c
}

// SlotFor returns the chart date and HHMM slot for at.
func SlotFor(at time.Time) (date, slot string) {
	return at.Format("2006_01_02"), at.Format("15") + "00"
}

// Capture screenshots the chart and saves it under the slot of at.
func (c *Capturer) Capture(ctx context.Context, at time.Time) (charts.Meta, error) {
	if c.cfg.ChartURL == "" {
		return charts.Meta{}, errors.New("capture: chart URL is not configured")
	}
	png, err := c.shoot(ctx)
	if err != nil {
		return charts.Meta{}, fmt.Errorf("capture %s: %w", c.cfg.ChartURL, err)
	}
	date, slot := SlotFor(at.In(c.cfg.Location))
	meta, err := c.store.Save(date, slot, png, c.cfg.ChartURL)
	if err != nil {
		return charts.Meta{}, err
	}
	slog.Info("chart captured", "file", meta.File, "bytes", meta.SizeBytes)
	return meta, nil
}

// CaptureNow captures for the current hour.
func (c *Capturer) CaptureNow(ctx context.Context) (charts.Meta, error) {
	return c.Capture(ctx, c.now())
}

// NewTask captures once an hour at minute.
func (c *Capturer) NewTask(minute int) *refresh.Task {
	return refresh.NewTask("chart-capture", refresh.AtMinute(minute, c.cfg.Location), func(ctx context.Context) {
		if _, err := c.CaptureNow(ctx); err != nil {
			slog.Error("chart capture failed", "error", err)
		}
	})
}

func (c *Capturer) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.CDPURL != "" {
		return chromedp.NewRemoteAllocator(ctx, c.cfg.CDPURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(c.cfg.Width, c.cfg.Height),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	return chromedp.NewExecAllocator(ctx, opts...)
}

func (c *Capturer) screenshot(ctx context.Context) ([]byte, error) {
	allocCtx, allocCancel := c.allocator(ctx)
	defer allocCancel()

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	runCtx, cancel := context.WithTimeout(tabCtx, c.cfg.Timeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.EmulateViewport(int64(c.cfg.Width), int64(c.cfg.Height)),
		chromedp.Navigate(c.cfg.ChartURL),
	}
	if c.cfg.WaitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(c.cfg.WaitSelector, chromedp.ByQuery))
	}
	if c.cfg.Settle > 0 {
		actions = append(actions, chromedp.Sleep(c.cfg.Settle))
	}

	var buf []byte
	actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
		return err
	}))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return nil, err
	}
	return buf, nil
}
