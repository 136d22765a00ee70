package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"

	"schedreport/internal/config"
	"schedreport/internal/errors"
)

// QuickSightDriver downloads the scheduler run log from an AWS QuickSight
// dashboard: multi-step signin (account, username, password), dashboard
// navigation, then the table menu's CSV export.
type QuickSightDriver struct {
	cfg         config.DashboardConfig
	downloadDir string
	logger      *slog.Logger
}

// NewQuickSightDriver creates a driver that saves exports into downloadDir.
func NewQuickSightDriver(cfg config.DashboardConfig, downloadDir string, logger *slog.Logger) *QuickSightDriver {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuickSightDriver{cfg: cfg, downloadDir: downloadDir, logger: logger}
}

// Fetch runs the full session: browser launch, signin, dashboard load,
// export click, download wait. It returns the downloaded file path.
func (d *QuickSightDriver) Fetch(ctx context.Context) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", d.cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, d.cfg.NavigateTimeout+d.cfg.DownloadTimeout)
	defer cancelTimeout()

	downloadDone := make(chan string, 1)
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if progress, ok := ev.(*browser.EventDownloadProgress); ok {
			if progress.State == browser.DownloadProgressStateCompleted {
				select {
				case downloadDone <- progress.GUID:
				default:
				}
			}
		}
	})

	if err := chromedp.Run(browserCtx, d.signIn()); err != nil {
		return "", errors.NewFetchError("dashboard signin failed", err)
	}
	d.logger.Info("dashboard signin complete")

	if err := chromedp.Run(browserCtx, d.openDashboard()); err != nil {
		return "", errors.NewFetchError("dashboard navigation failed", err)
	}
	d.logger.Info("dashboard loaded", slog.String("url", d.cfg.DashboardURL))

	if err := chromedp.Run(browserCtx, d.triggerExport()); err != nil {
		return "", errors.NewFetchError("export trigger failed", err)
	}

	select {
	case guid := <-downloadDone:
		path := filepath.Join(d.downloadDir, guid)
		d.logger.Info("export downloaded", slog.String("path", path))
		return path, nil
	case <-time.After(d.cfg.DownloadTimeout):
		return "", errors.NewFetchError("export download timed out", nil).
			WithContext("timeout", d.cfg.DownloadTimeout.String())
	case <-browserCtx.Done():
		return "", errors.NewFetchError("browser session ended before download", browserCtx.Err())
	}
}

// signIn walks the three-step QuickSight login: account id, username,
// password. The waits between steps match the dashboard's page transitions;
// shortening them makes the flow flaky.
func (d *QuickSightDriver) signIn() chromedp.Tasks {
	return chromedp.Tasks{
		timedAction(d.logger, "Navigate", chromedp.Navigate(d.cfg.SigninURL)),
		chromedp.WaitVisible(`input[type="text"]`, chromedp.ByQuery),
		chromedp.SetValue(`input[type="text"]`, d.cfg.Account, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		chromedp.Click(`button[type="submit"]`, chromedp.ByQuery),

		chromedp.WaitVisible(`button[type="submit"]`, chromedp.ByQuery),
		chromedp.Sleep(3*time.Second),
		chromedp.SetValue(`input[type="text"]`, d.cfg.Username, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		timedAction(d.logger, "SubmitUsername", chromedp.Click(`button[type="submit"]`, chromedp.ByQuery)),

		chromedp.WaitVisible(`input[type="password"]`, chromedp.ByQuery),
		chromedp.SetValue(`input[type="password"]`, d.cfg.Password, chromedp.ByQuery),
		chromedp.Sleep(2*time.Second),
		timedAction(d.logger, "SubmitPassword", chromedp.Click(`button[type="submit"]`, chromedp.ByQuery)),
		chromedp.Sleep(5*time.Second),
	}
}

// openDashboard navigates to the dashboard and waits for any element that
// indicates the analysis has rendered.
func (d *QuickSightDriver) openDashboard() chromedp.Tasks {
	dashboardSelectors := []string{
		`div[class*="quicksight"]`,
		`div[class*="dashboard"]`,
		`div[class*="awsui"]`,
		`div[class*="analysis"]`,
	}

	return chromedp.Tasks{
		timedAction(d.logger, "OpenDashboard", chromedp.Navigate(d.cfg.DashboardURL)),
		waitForAny(d.logger, dashboardSelectors, d.cfg.NavigateTimeout),
		chromedp.Sleep(5 * time.Second),
	}
}

// triggerExport opens the table visualization menu and clicks the CSV
// export entry, enabling named downloads into the driver's directory first.
func (d *QuickSightDriver) triggerExport() chromedp.Tasks {
	exportSelectors := []string{
		`//button[contains(., "Export to CSV")]`,
		`//button[contains(., "Download CSV")]`,
		`//button[contains(., "Export")]`,
		`//*[contains(@aria-label, "Export to CSV")]`,
		`//*[contains(@aria-label, "Download CSV")]`,
	}

	return chromedp.Tasks{
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllowAndName).
			WithDownloadPath(d.downloadDir).
			WithEventsEnabled(true),

		timedAction(d.logger, "OpenMenu", chromedp.Click(`button[aria-label*="Menu"]`, chromedp.ByQuery)),
		chromedp.Sleep(2*time.Second),

		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, sel := range exportSelectors {
				clickCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				err := chromedp.Click(sel, chromedp.BySearch).Do(clickCtx)
				cancel()
				if err == nil {
					d.logger.Info("export button clicked", slog.String("selector", sel))
					return nil
				}
				d.logger.Debug("export selector not found",
					slog.String("selector", sel),
					slog.String("error", err.Error()))
			}
			return fmt.Errorf("no export button matched any known selector")
		}),
	}
}

// waitForAny polls until one of the selectors is present in the page or the
// timeout elapses. The dashboard markup varies between tenants, so a single
// WaitVisible is not reliable.
func waitForAny(logger *slog.Logger, selectors []string, timeout time.Duration) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		deadline := time.Now().Add(timeout)
		for time.Now().Before(deadline) {
			for _, sel := range selectors {
				var found bool
				js := fmt.Sprintf(`document.querySelector(%q) !== null`, sel)
				if err := chromedp.Evaluate(js, &found).Do(ctx); err != nil {
					return err
				}
				if found {
					logger.Debug("dashboard element found", slog.String("selector", sel))
					return nil
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
		}
		logger.Warn("no dashboard element matched, continuing anyway")
		return nil
	})
}

// timedAction logs the duration of a chromedp action
func timedAction(logger *slog.Logger, name string, act chromedp.Action) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		start := time.Now()
		err := act.Do(ctx)
		logger.Debug("browser action finished",
			slog.String("action", name),
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err))
		return err
	})
}
