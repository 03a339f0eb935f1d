// Package record drives a headless browser through a feature's automation
// plan and captures the session as a silent video.
package record

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"tutorialcast/internal/tutorial/media"
	"tutorialcast/internal/tutorial/script"
	"tutorialcast/internal/tutorial/steps"
)

// Recording is one feature's silent screen capture. Language-agnostic: the
// visual behavior does not vary by spoken language, only the audio overlay
// does.
type Recording struct {
	FeatureID string
	FilePath  string
}

// Recorder owns the browser session. Recording sessions are exclusive, so
// one Recorder records one feature at a time.
type Recorder struct {
	baseURL   string
	width     int
	height    int
	framerate int
	exec      *media.Executor
	outDir    string
}

func NewRecorder(baseURL string, width, height, framerate int, exec *media.Executor, outDir string) *Recorder {
	return &Recorder{
		baseURL:   baseURL,
		width:     width,
		height:    height,
		framerate: framerate,
		exec:      exec,
		outDir:    outDir,
	}
}

// CheckAvailable verifies a Chrome/Chromium binary is resolvable.
func CheckAvailable() error {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "chrome"} {
		if _, err := exec.LookPath(name); err == nil {
			return nil
		}
	}
	return fmt.Errorf("no Chrome or Chromium binary found in PATH")
}

// Record executes the plan once and assembles the captured frames into a
// silent video. A missing or empty output file is a hard failure for this
// feature, never for the batch.
func (r *Recorder) Record(ctx context.Context, plan *script.Plan) (Recording, error) {
	framesDir, err := os.MkdirTemp("", "tutorialcast-frames-"+plan.FeatureID+"-*")
	if err != nil {
		return Recording{}, fmt.Errorf("creating frames directory: %w", err)
	}
	defer os.RemoveAll(framesDir)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.WindowSize(r.width, r.height),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var frameCount int64
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		fr, ok := ev.(*page.EventScreencastFrame)
		if !ok {
			return
		}
		n := atomic.AddInt64(&frameCount, 1)
		framePath := filepath.Join(framesDir, fmt.Sprintf("frame-%06d.png", n))
		data, err := base64.StdEncoding.DecodeString(fr.Data)
		if err != nil {
			logrus.WithError(err).Warn("dropping screencast frame")
			return
		}
		if err := os.WriteFile(framePath, data, 0644); err != nil {
			logrus.WithError(err).Warn("dropping screencast frame")
		}
		go func() {
			_ = chromedp.Run(browserCtx, chromedp.ActionFunc(func(c context.Context) error {
				return page.ScreencastFrameAck(fr.SessionID).Do(c)
			}))
		}()
	})

	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(r.width), int64(r.height)),
		chromedp.Navigate(r.baseURL),
		chromedp.ActionFunc(func(c context.Context) error {
			return page.StartScreencast().
				WithFormat(page.ScreencastFormatPng).
				WithEveryNthFrame(1).
				Do(c)
		}),
	); err != nil {
		return Recording{}, fmt.Errorf("starting capture for %s: %w", plan.FeatureID, err)
	}

	execErr := r.executePlan(browserCtx, plan)

	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(c context.Context) error {
		return page.StopScreencast().Do(c)
	})); err != nil {
		logrus.WithError(err).Debug("stopping screencast")
	}
	browserCancel()

	if execErr != nil {
		return Recording{}, fmt.Errorf("executing plan for %s: %w", plan.FeatureID, execErr)
	}
	if atomic.LoadInt64(&frameCount) == 0 {
		return Recording{}, fmt.Errorf("no frames captured for %s", plan.FeatureID)
	}

	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return Recording{}, fmt.Errorf("creating recordings directory: %w", err)
	}
	outFile := filepath.Join(r.outDir, plan.FeatureID+".mp4")
	if err := r.exec.FramesToVideo(ctx, filepath.Join(framesDir, "frame-%06d.png"), r.framerate, outFile); err != nil {
		return Recording{}, fmt.Errorf("assembling video for %s: %w", plan.FeatureID, err)
	}

	info, err := os.Stat(outFile)
	if err != nil || info.Size() == 0 {
		return Recording{}, fmt.Errorf("recording for %s produced no playable output", plan.FeatureID)
	}

	logrus.WithFields(logrus.Fields{
		"feature": plan.FeatureID,
		"frames":  atomic.LoadInt64(&frameCount),
		"file":    outFile,
	}).Info("recorded feature")
	return Recording{FeatureID: plan.FeatureID, FilePath: outFile}, nil
}

func (r *Recorder) executePlan(ctx context.Context, plan *script.Plan) error {
	for _, sc := range plan.Scenarios {
		logrus.WithField("scenario", sc.Title).Debug("executing scenario")
		for _, op := range sc.Ops {
			if op.Narration != nil {
				// The recording services every language, so pause for the
				// longest clip; shorter languages are bounded by -shortest
				// at mux time.
				wait := 0
				for _, ms := range op.Narration.WaitMs {
					if ms > wait {
						wait = ms
					}
				}
				sleepCtx(ctx, time.Duration(wait)*time.Millisecond)
				continue
			}
			if op.Action != nil {
				if err := r.executeAction(ctx, plan.Retry, *op.Action); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *Recorder) executeAction(ctx context.Context, retry script.RetryPolicy, a steps.ActionSpec) error {
	switch a.Kind {
	case steps.KindNavigate:
		return chromedp.Run(ctx,
			chromedp.Navigate(r.baseURL+a.Path),
			chromedp.WaitReady("body"),
		)
	case steps.KindClick:
		return r.withRetry(ctx, retry, chromedp.Click(a.Selector, queryOpt(a.Selector)))
	case steps.KindFill:
		return r.withRetry(ctx, retry, chromedp.Tasks{
			chromedp.WaitVisible(a.Selector, queryOpt(a.Selector)),
			chromedp.Clear(a.Selector, queryOpt(a.Selector)),
			chromedp.SendKeys(a.Selector, a.Value, queryOpt(a.Selector)),
		})
	case steps.KindAssertVisible:
		return r.withRetry(ctx, retry, chromedp.WaitVisible(a.Selector, queryOpt(a.Selector)))
	case steps.KindSearchInList:
		return r.withRetry(ctx, retry, chromedp.Tasks{
			chromedp.WaitVisible(a.Selector, queryOpt(a.Selector)),
			chromedp.SendKeys(`input[type="search"]`, a.Value, chromedp.ByQuery),
		})
	case steps.KindBrowseList:
		if err := r.withRetry(ctx, retry, chromedp.Tasks{
			chromedp.WaitVisible(a.Selector, queryOpt(a.Selector)),
			chromedp.ScrollIntoView(a.Selector, queryOpt(a.Selector)),
		}); err != nil {
			return err
		}
		sleepCtx(ctx, time.Duration(a.WaitMs)*time.Millisecond)
		return nil
	case steps.KindWait:
		sleepCtx(ctx, time.Duration(a.WaitMs)*time.Millisecond)
		return nil
	case steps.KindEnsureAuth:
		return r.ensureAuthState(ctx, a.Authenticated)
	case steps.KindNoop:
		logrus.WithField("step", a.Target).Debug("no-op step, waiting")
		sleepCtx(ctx, time.Duration(a.WaitMs)*time.Millisecond)
		return nil
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

// ensureAuthState seeds or clears the demo session token and reloads so the
// application renders the requested auth state.
func (r *Recorder) ensureAuthState(ctx context.Context, authenticated bool) error {
	js := `localStorage.removeItem("session-token")`
	if authenticated {
		js = `localStorage.setItem("session-token", "tutorial-session")`
	}
	return chromedp.Run(ctx,
		chromedp.Evaluate(js, nil),
		chromedp.Reload(),
		chromedp.WaitReady("body"),
	)
}

// withRetry runs the action with the plan's bounded retry policy, splitting
// the total timeout evenly across attempts. Headless rendering races are
// expected and recoverable.
func (r *Recorder) withRetry(ctx context.Context, retry script.RetryPolicy, action chromedp.Action) error {
	attempts := retry.Attempts
	if attempts < 1 {
		attempts = 1
	}
	perAttempt := time.Duration(retry.TotalTimeoutMs/attempts) * time.Millisecond
	if perAttempt <= 0 {
		perAttempt = 3 * time.Second
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, perAttempt)
		lastErr = chromedp.Run(attemptCtx, action)
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logrus.WithError(lastErr).WithField("attempt", i+1).Debug("retrying element action")
	}
	return lastErr
}

func queryOpt(selector string) chromedp.QueryOption {
	if len(selector) > 1 && selector[0] == '/' {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
