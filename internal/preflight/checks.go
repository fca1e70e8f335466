package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"reelchain/internal/tmdb"
)

const tmdbProbeTimeout = 10 * time.Second

// Pinger issues a single TMDB request without retries.
type Pinger interface {
	Ping(ctx context.Context, year int) error
}

var _ Pinger = (*tmdb.Client)(nil)

// CheckTMDB verifies that TMDB is reachable and the credentials are accepted.
func CheckTMDB(ctx context.Context, pinger Pinger, year int) Result {
	const name = "TMDB"
	if pinger == nil {
		return Result{Name: name, Detail: "client not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, tmdbProbeTimeout)
	defer cancel()

	if err := pinger.Ping(checkCtx, year); err != nil {
		return Result{Name: name, Detail: summarizeTMDBError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
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

func summarizeTMDBError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "probe timed out (TMDB unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "probe timed out (TMDB unreachable)"
	}
	var statusErr *tmdb.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "auth failed (invalid api token or key)"
		default:
			return fmt.Sprintf("probe failed (%d)", statusErr.StatusCode)
		}
	}
	return err.Error()
}
