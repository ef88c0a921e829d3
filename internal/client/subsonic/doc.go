// Package subsonic provides a minimal client for the Subsonic REST API.
// It covers the single call the application needs: asking the media
// server to rescan its library after new albums have been written.
package subsonic
