package httpapi

import "time"

const defaultMaxBodyBytes int64 = 1 << 20

// maxBodyBytes controls the maximum allowed request body size for /predict.
var maxBodyBytes = defaultMaxBodyBytes

// SetMaxBodyBytes configures the maximum request body size; non-positive
// values restore the 1 MiB default.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
		return
	}
	maxBodyBytes = n
}

// predictTimeout bounds a single /predict call. Zero disables the bound.
var predictTimeout time.Duration

// SetPredictTimeout sets the per-request predict timeout (<=0 disables).
func SetPredictTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	predictTimeout = d
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server. Empty lists
// fall back to permissive defaults suitable for a browser dashboard.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
	if len(corsAllowedOrigins) == 0 {
		corsAllowedOrigins = []string{"*"}
	}
	if len(corsAllowedMethods) == 0 {
		corsAllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(corsAllowedHeaders) == 0 {
		corsAllowedHeaders = []string{"Accept", "Content-Type", "X-Request-Id", "X-Log-Level"}
	}
}
