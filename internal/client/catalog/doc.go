// Package catalog provides an HTTP client for the music catalog service.
// It covers track manifest retrieval, track and album search, album metadata
// lookups, cover image fetching, and plain stream downloads.
// Album metadata is cached in memory for the duration of the process.
package catalog
