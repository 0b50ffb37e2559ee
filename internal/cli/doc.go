// Package cli implements the command-line interface for npb-scrape.
//
// The cli package provides the Cobra-based command tree: scrape resolves one
// game page against the dictionary and the alias layers and records misses,
// alias registers, looks up and promotes aliases, and pending reports and
// clears the names waiting for curation. Output is text or JSON on stdout;
// logs go to stderr.
package cli
