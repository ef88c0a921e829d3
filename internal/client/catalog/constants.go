package catalog

const (
	// catalogTrackURI is the URI path for the track manifest endpoint.
	catalogTrackURI = "track"
	// catalogSearchURI is the URI path for the search endpoint.
	catalogSearchURI = "search"
	// catalogAlbumURI is the URI path for the album metadata endpoint.
	catalogAlbumURI = "album"
	// catalogImagesURI is the URI path component for cover images.
	catalogImagesURI = "images"
	// coverImageFilename is the filename the image endpoint serves covers under.
	coverImageFilename = "cover.jpg"
)

const (
	// albumsCacheSize defines the maximum number of album entries to cache.
	// A session touches at most a few hundred distinct albums, so this is plenty.
	albumsCacheSize = 500

	// maxErrorBodyLength limits how much of an error response body is carried in errors.
	maxErrorBodyLength = 4 * 1024
)
