// Package main provides the entry point for the relevador CLI.
//
// relevador surveys university websites for public commitments to open
// science, public communication of science and science diplomacy, and
// writes a two-sheet report (Relevamiento and Resumen).
//
// Usage:
//
//	relevador init
//	relevador survey
//	relevador survey --format markdown -o relevamiento.md
//
// See --help for all available options.
package main

// main is the entry point for relevador.
func main() {
	Execute()
}
