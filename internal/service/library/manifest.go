package library

import (
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aphonin/fonoteka/internal/client/catalog"
)

const (
	// mpdRootMarker identifies a DASH document inside a decoded manifest payload.
	mpdRootMarker = "<MPD"

	// segmentNumberPlaceholder is substituted with the segment number when
	// rendering media URLs from the template.
	segmentNumberPlaceholder = "$Number$"

	// defaultStartNumber applies when a segment template omits startNumber
	// or carries an unreadable value.
	defaultStartNumber = int64(1)
)

// StreamSourceKind discriminates the two delivery shapes a manifest can resolve to.
type StreamSourceKind int64

const (
	// StreamSourceDirect is a single URL serving the whole track.
	StreamSourceDirect StreamSourceKind = iota + 1
	// StreamSourceSegmented is a DASH-style plan of numbered segments.
	StreamSourceSegmented
)

// StreamSource is the resolved form of a track manifest. It is produced
// exactly once per attempt; downstream stages never re-inspect manifest text.
type StreamSource struct {
	Kind StreamSourceKind
	// URL is set for direct sources.
	URL string
	// Plan is set for segmented sources.
	Plan *SegmentPlan
}

// SegmentPlan is the ordered fetch schedule extracted from a segmented
// manifest. Segment numbers are contiguous and ascending from StartNumber;
// reassembled byte order equals ascending number order regardless of fetch
// completion order.
type SegmentPlan struct {
	InitializationURL string
	MediaTemplate     string
	StartNumber       int64
	Segments          []SegmentEntry
}

// SegmentEntry addresses one media segment of a plan.
type SegmentEntry struct {
	Number   int64
	Duration int64
}

// MediaURL renders the media template for a concrete segment number.
func (p *SegmentPlan) MediaURL(number int64) string {
	return strings.ReplaceAll(p.MediaTemplate, segmentNumberPlaceholder, strconv.FormatInt(number, 10))
}

// mpdDocument mirrors the subset of a DASH manifest the resolver consumes.
// Attribute values stay strings so absent and malformed values can be told
// apart during validation.
type mpdDocument struct {
	XMLName xml.Name    `xml:"MPD"`
	Periods []mpdPeriod `xml:"Period"`
}

type mpdPeriod struct {
	AdaptationSets []mpdAdaptationSet `xml:"AdaptationSet"`
}

type mpdAdaptationSet struct {
	SegmentTemplates []mpdSegmentTemplate `xml:"SegmentTemplate"`
	Representations  []mpdRepresentation  `xml:"Representation"`
}

type mpdRepresentation struct {
	SegmentTemplates []mpdSegmentTemplate `xml:"SegmentTemplate"`
}

type mpdSegmentTemplate struct {
	Initialization string              `xml:"initialization,attr"`
	Media          string              `xml:"media,attr"`
	StartNumber    string              `xml:"startNumber,attr"`
	Timeline       *mpdSegmentTimeline `xml:"SegmentTimeline"`
}

type mpdSegmentTimeline struct {
	Entries []mpdTimelineEntry `xml:"S"`
}

type mpdTimelineEntry struct {
	Duration string `xml:"d,attr"`
	Repeat   string `xml:"r,attr"`
}

// ResolveManifest decodes a track manifest into a stream source. It is a
// pure transform: structural problems with a segmented manifest surface
// here, before any segment is fetched.
func ResolveManifest(manifest *catalog.TrackManifest) (*StreamSource, error) {
	decoded, err := base64.StdEncoding.DecodeString(manifest.Manifest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifestDecode, err)
	}

	if strings.Contains(string(decoded), mpdRootMarker) {
		plan, planErr := parseSegmentPlan(decoded)
		if planErr != nil {
			return nil, planErr
		}

		return &StreamSource{Kind: StreamSourceSegmented, Plan: plan}, nil
	}

	var urlList struct {
		URLs []string `json:"urls"`
	}

	if err = json.Unmarshal(decoded, &urlList); err == nil && len(urlList.URLs) > 0 {
		return &StreamSource{Kind: StreamSourceDirect, URL: urlList.URLs[0]}, nil
	}

	return nil, ErrManifestDecode
}

// parseSegmentPlan extracts the fetch schedule from a DASH document.
func parseSegmentPlan(document []byte) (*SegmentPlan, error) {
	var doc mpdDocument
	if err := xml.Unmarshal(document, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingSegmentTemplate, err)
	}

	template := findSegmentTemplate(&doc)
	if template == nil {
		return nil, ErrMissingSegmentTemplate
	}

	if template.Initialization == "" {
		return nil, ErrMissingInitialization
	}

	if template.Media == "" {
		return nil, ErrMissingMediaTemplate
	}

	startNumber := defaultStartNumber
	if parsed, err := strconv.ParseInt(template.StartNumber, 10, 64); err == nil {
		startNumber = parsed
	}

	segments, err := expandTimeline(template.Timeline, startNumber)
	if err != nil {
		return nil, err
	}

	plan := &SegmentPlan{
		InitializationURL: template.Initialization,
		MediaTemplate:     template.Media,
		StartNumber:       startNumber,
		Segments:          segments,
	}

	if err = validatePlanURLs(plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// findSegmentTemplate returns the first segment template of the document,
// looking at adaptation sets before their representations.
func findSegmentTemplate(doc *mpdDocument) *mpdSegmentTemplate {
	for _, period := range doc.Periods {
		for _, adaptationSet := range period.AdaptationSets {
			if len(adaptationSet.SegmentTemplates) > 0 {
				return &adaptationSet.SegmentTemplates[0]
			}

			for _, representation := range adaptationSet.Representations {
				if len(representation.SegmentTemplates) > 0 {
					return &representation.SegmentTemplates[0]
				}
			}
		}
	}

	return nil
}

// expandTimeline turns repeatable (d, r) timeline entries into the concrete
// segment sequence. An entry with r = N stands for N+1 equal segments.
func expandTimeline(timeline *mpdSegmentTimeline, startNumber int64) ([]SegmentEntry, error) {
	// A template without a timeline still addresses exactly one media segment.
	if timeline == nil || len(timeline.Entries) == 0 {
		return []SegmentEntry{{Number: startNumber, Duration: 0}}, nil
	}

	segments := make([]SegmentEntry, 0, len(timeline.Entries))
	number := startNumber

	for _, entry := range timeline.Entries {
		duration, err := strconv.ParseInt(entry.Duration, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: d=%q", ErrBadTimelineEntry, entry.Duration)
		}

		var repeat int64

		if entry.Repeat != "" {
			repeat, err = strconv.ParseInt(entry.Repeat, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: r=%q", ErrBadTimelineEntry, entry.Repeat)
			}
		}

		if repeat < 0 {
			return nil, fmt.Errorf("%w: r=%d", ErrNegativeRepeat, repeat)
		}

		for i := int64(0); i <= repeat; i++ {
			segments = append(segments, SegmentEntry{Number: number, Duration: duration})
			number++
		}
	}

	return segments, nil
}

// validatePlanURLs rejects plans whose URLs cannot be fetched as-is.
func validatePlanURLs(plan *SegmentPlan) error {
	if !isAbsoluteURL(plan.InitializationURL) {
		return fmt.Errorf("%w: %q", ErrBadSegmentURL, plan.InitializationURL)
	}

	if sample := plan.MediaURL(plan.StartNumber); !isAbsoluteURL(sample) {
		return fmt.Errorf("%w: %q", ErrBadSegmentURL, sample)
	}

	return nil
}

func isAbsoluteURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)

	return err == nil && parsed.Scheme != "" && parsed.Host != ""
}
