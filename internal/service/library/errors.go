package library

import "errors"

var (
	// ErrManifestDecode indicates a manifest payload that is neither a
	// segmented document nor a URL list.
	ErrManifestDecode = errors.New("undecodable track manifest")

	// ErrMissingSegmentTemplate indicates a segmented manifest without a usable segment template.
	ErrMissingSegmentTemplate = errors.New("segmented manifest has no segment template")

	// ErrMissingInitialization indicates a segment template without an initialization URL.
	ErrMissingInitialization = errors.New("segment template has no initialization URL")

	// ErrMissingMediaTemplate indicates a segment template without a media URL template.
	ErrMissingMediaTemplate = errors.New("segment template has no media URL template")

	// ErrBadTimelineEntry indicates a timeline entry whose duration is absent or unreadable.
	ErrBadTimelineEntry = errors.New("segment timeline entry has no valid duration")

	// ErrNegativeRepeat indicates a timeline entry with a negative repeat count.
	ErrNegativeRepeat = errors.New("segment timeline entry has a negative repeat count")

	// ErrBadSegmentURL indicates a segment URL that is not absolute.
	ErrBadSegmentURL = errors.New("segment URL is not absolute")

	// ErrUnknownSourceKind indicates a stream source the pipeline cannot open.
	ErrUnknownSourceKind = errors.New("unknown stream source kind")

	// ErrEncoderStdin indicates a failure opening or feeding the encoder's stdin.
	ErrEncoderStdin = errors.New("failed to feed encoder input")

	// ErrEncoderExit indicates the encoder process exited with a non-zero status.
	ErrEncoderExit = errors.New("encoder exited with an error")

	// ErrTaggerExit indicates the tag-rewrite process exited with a non-zero status.
	ErrTaggerExit = errors.New("tagger exited with an error")
)
