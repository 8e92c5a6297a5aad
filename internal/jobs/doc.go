// Package jobs implements background job processing for the Platefeed API.
//
// The jobs package contains scheduled tasks that run independently of
// HTTP request handling. Each job owns a ticker goroutine with Start
// and Stop lifecycle methods and a RunOnce hook for manual triggering.
//
// Available background jobs:
//
//   - TokenCleanup: removal of expired and stale revoked refresh tokens
//
// Jobs log errors but don't crash the application.
package jobs
