package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"shiftwalk/internal/config"
	"shiftwalk/internal/dispatch"
	"shiftwalk/internal/sitetime"
)

const probeTimeout = 5 * time.Second

// CheckConfig verifies the settings a run cannot start without.
func CheckConfig(cfg *config.Config) Result {
	const name = "Configuration"

	var problems []string
	if _, err := cfg.BaseURL(); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(cfg.Server.APIKey) == "" {
		problems = append(problems, "server.api_key is not set (DISPATCH_API_KEY also empty)")
	}
	if cfg.Server.Site < 1 {
		problems = append(problems, fmt.Sprintf("server.site must be positive (got %d)", cfg.Server.Site))
	}
	if strings.TrimSpace(cfg.Operator.Badge) == "" {
		problems = append(problems, "operator.badge is not set")
	}
	if len(problems) > 0 {
		return Result{Name: name, Detail: strings.Join(problems, "; ")}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("site %d, badge %s", cfg.Server.Site, cfg.Operator.Badge)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSiteZone verifies the configured fallback timezone resolves, so the
// workflow can format site-local timestamps even before discovery supplies
// a zone from the site record.
func CheckSiteZone(cfg *config.Config) Result {
	const name = "Site timezone"

	clock, err := sitetime.Resolve(cfg.Demo.SiteTimezone)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if strings.TrimSpace(cfg.Demo.SiteTimezone) == "" {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("host local (now %s)", clock.Minute(time.Now()))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (now %s)", clock.Zone(), clock.Minute(time.Now()))}
}

// CheckAPI verifies the Dispatch server answers an authenticated sites
// listing. It uses a 5-second timeout and a single attempt.
func CheckAPI(ctx context.Context, cfg *config.Config) Result {
	const name = "Dispatch API"

	base, err := cfg.BaseURL()
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if strings.TrimSpace(cfg.Server.APIKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}
	if cfg.Server.Site < 1 {
		return Result{Name: name, Detail: "site not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	client, err := dispatch.New(base.String(), cfg.Server.APIKey, cfg.Server.Site,
		dispatch.WithTimeout(probeTimeout),
		dispatch.WithUserAgent(cfg.Server.UserAgent))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	sites, err := client.Sites(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeProbeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("reachable, %d sites listed", len(sites))}
}

// summarizeProbeError produces a short human-readable summary for API
// probe failures, keyed off the client's typed error set.
func summarizeProbeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "probe timed out (server unresponsive)"
	}
	var transportErr *dispatch.TransportError
	if errors.As(err, &transportErr) {
		var netErr net.Error
		if errors.As(transportErr.Err, &netErr) && netErr.Timeout() {
			return "probe timed out (server unreachable)"
		}
		return fmt.Sprintf("unreachable (%v)", transportErr.Err)
	}
	var statusErr *dispatch.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (invalid api key)"
		default:
			return fmt.Sprintf("unexpected http %d", statusErr.Code)
		}
	}
	var apiErr *dispatch.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("server rejected probe: %s", apiErr.Message)
	}
	return err.Error()
}
