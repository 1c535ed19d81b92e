// Package model defines the data structures shared by the survey packages.
//
// This package contains the following main types:
//   - Institution: a configured survey target
//   - Category: one of the three thematic keyword groups
//   - PageFetchResult: the outcome of fetching one URL
//   - TermHit: a single keyword occurrence with its snippet
//   - InstitutionRecord: everything learned about one institution in a run
//   - SurveyResult: all records of a run plus the summary statistics
//
// Models live in their own package so that fetcher, scanner, survey,
// aggregate and report can share them without import cycles.
// Everything is serializable to JSON for the JSON report.
package model
