// Package library implements the album download pipeline: manifest
// resolution, ordered reassembly of segmented streams, transcoding through
// an external encoder, per-track retry orchestration, and aggregation of
// concurrent progress events into rate-limited renders.
package library
