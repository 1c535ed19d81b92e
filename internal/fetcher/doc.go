// Package fetcher retrieves single web pages for the survey.
//
// # Politeness
//
// Every request is preceded by a configurable delay, carries an identifying
// User-Agent, and is bounded by a per-request timeout and a body size limit.
// Sub-page requests can additionally be checked against the host's
// robots.txt, which is fetched at most once per host and kept in memory for
// the lifetime of the Fetcher.
//
// # Errors
//
// Failures are returned as *FetchError, classified by model.FailureKind so the
// surveyor can record them per URL. Nothing is retried.
//
// # Usage
//
//	f := fetcher.New(nil, fetcher.WithDelay(time.Second), fetcher.WithRobots(true))
//	page, err := f.Fetch(ctx, "https://www.uji.es")
package fetcher
