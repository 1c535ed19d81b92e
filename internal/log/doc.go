// Package log provides secure logging built on the standard slog package.
//
// The SecureHandler masks sensitive information before it reaches the
// underlying handler:
//   - HTTP headers (Authorization, Cookie, X-Api-Key and the like), which
//     matters because extra request headers come from user configuration
//   - secret values detected by pattern (bearer and basic credentials, JWTs)
//   - passwords and session or token query parameters inside URLs, both in
//     url attributes and in error messages
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("fetching", "url", "https://www.example.edu/?sid=abc")
//	// url=https://www.example.edu/?sid=***REDACTED***
//	slog.SetDefault(logger)
//
// Without verbose the level is Info, which reports one line per surveyed
// institution; verbose adds Debug details such as discovered sub-pages.
package log
