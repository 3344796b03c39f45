package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"sonashow/internal/services"
	"sonashow/internal/services/tvdb"
)

// checkTimeout caps each service check regardless of the configured request timeout.
const checkTimeout = 10 * time.Second

// CheckSonarr verifies Sonarr connectivity and authentication.
func CheckSonarr(ctx context.Context, address, apiKey string, timeout time.Duration) Result {
	const name = "Sonarr"

	base := strings.TrimRight(strings.TrimSpace(address), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing address"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	req, err := http.NewRequest(http.MethodGet, base+"/api/v3/system/status", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("status check failed (%v)", err)}
	}
	req.Header.Set("X-Api-Key", strings.TrimSpace(apiKey))
	return checkService(ctx, name, req, timeout)
}

// CheckTMDB verifies the TMDB API key against the configuration endpoint.
func CheckTMDB(ctx context.Context, baseURL, apiKey string, timeout time.Duration) Result {
	const name = "TMDB"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}

	req, err := http.NewRequest(http.MethodGet, base+"/configuration?"+url.Values{"api_key": {strings.TrimSpace(apiKey)}}.Encode(), nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("auth check failed (%v)", err)}
	}
	return checkService(ctx, name, req, timeout)
}

// CheckTVDB verifies the TVDB API key by logging in.
func CheckTVDB(ctx context.Context, baseURL, apiKey string, timeout time.Duration) Result {
	const name = "TVDB"

	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "missing api key"}
	}
	client, err := tvdb.New(apiKey, baseURL, tvdb.WithTimeout(boundedTimeout(timeout)))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, boundedTimeout(timeout))
	defer cancel()
	if _, err := client.Authenticate(checkCtx); err != nil {
		var statusErr *services.StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return Result{Name: name, Detail: "auth failed (invalid api key)"}
		}
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Login ok"}
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

func checkService(ctx context.Context, name string, req *http.Request, timeout time.Duration) Result {
	checkCtx, cancel := context.WithTimeout(ctx, boundedTimeout(timeout))
	defer cancel()

	client := &http.Client{Timeout: boundedTimeout(timeout)}
	resp, err := client.Do(req.WithContext(checkCtx))
	if err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case http.StatusUnauthorized, http.StatusForbidden:
		return Result{Name: name, Detail: "auth failed (invalid api key)"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

func boundedTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 || timeout > checkTimeout {
		return checkTimeout
	}
	return timeout
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (service unreachable)"
	}
	return err.Error()
}
