// Package app wires the application together: it builds the catalog client,
// the concurrency pools, the download pipeline and the progress aggregator,
// and runs the command the user asked for.
package app
