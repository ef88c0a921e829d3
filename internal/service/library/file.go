package library

import (
	"fmt"
	"path/filepath"

	"github.com/aphonin/fonoteka/internal/client/catalog"
	"github.com/aphonin/fonoteka/internal/constants"
	"github.com/aphonin/fonoteka/internal/utils"
)

// coverFilename is the album art file written next to an album's tracks.
const coverFilename = "cover" + constants.ExtensionJPEG

// albumFolderPath returns `<output>/<artist>/[<year>] <title>` with both
// path components sanitized for the local filesystem.
func albumFolderPath(outputPath string, album *catalog.Album) string {
	albumFolder := fmt.Sprintf("[%d] %s", album.ReleaseDate.Year(), album.Title)

	return filepath.Join(
		outputPath,
		utils.SanitizeFilename(album.Artist.Name),
		utils.SanitizeFilename(albumFolder),
	)
}

// isMultiDisc reports whether an album spreads across more than one volume.
func isMultiDisc(album *catalog.Album) bool {
	for _, track := range album.Tracks {
		if track.VolumeNumber > 1 {
			return true
		}
	}

	return false
}

// trackFilename returns `NN. <title>.opus`; tracks of multi-disc albums are
// prefixed with their disc number as `D.NN. <title>.opus`.
func trackFilename(track *catalog.TrackSummary, multiDisc bool) string {
	var filename string

	if multiDisc {
		filename = fmt.Sprintf("%d.%02d. %s", track.VolumeNumber, track.TrackNumber, track.Title)
	} else {
		filename = fmt.Sprintf("%02d. %s", track.TrackNumber, track.Title)
	}

	return utils.SanitizeFilename(filename) + constants.ExtensionOpus
}

// trackTempPath returns the in-progress encoder target for a track. The
// container extension is kept at the end so the encoder can infer the
// output format.
func trackTempPath(trackPath string) string {
	return utils.SetFileExtension(trackPath, constants.ExtensionPart+constants.ExtensionOpus, true)
}
