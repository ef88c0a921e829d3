package library

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aphonin/fonoteka/internal/client/catalog"
)

func encodeManifest(t *testing.T, payload string) *catalog.TrackManifest {
	t.Helper()

	return &catalog.TrackManifest{
		TrackID:          42,
		ManifestMimeType: "application/dash+xml",
		Manifest:         base64.StdEncoding.EncodeToString([]byte(payload)),
	}
}

func dashManifest(template string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static">
  <Period>
    <AdaptationSet contentType="audio">
      %s
    </AdaptationSet>
  </Period>
</MPD>`, template)
}

func TestResolveManifest_Direct(t *testing.T) {
	t.Parallel()

	payload := `{"urls": ["https://cdn.example.com/track/42.flac", "https://mirror.example.com/track/42.flac"]}`

	source, err := ResolveManifest(encodeManifest(t, payload))
	require.NoError(t, err)

	assert.Equal(t, StreamSourceDirect, source.Kind)
	assert.Equal(t, "https://cdn.example.com/track/42.flac", source.URL)
	assert.Nil(t, source.Plan)
}

func TestResolveManifest_Segmented(t *testing.T) {
	t.Parallel()

	payload := dashManifest(`<SegmentTemplate
        initialization="https://cdn.example.com/42/init.mp4"
        media="https://cdn.example.com/42/segment-$Number$.m4s"
        startNumber="1">
        <SegmentTimeline>
          <S d="40000" r="2"/>
          <S d="24000"/>
        </SegmentTimeline>
      </SegmentTemplate>`)

	source, err := ResolveManifest(encodeManifest(t, payload))
	require.NoError(t, err)
	require.Equal(t, StreamSourceSegmented, source.Kind)
	require.NotNil(t, source.Plan)

	plan := source.Plan
	assert.Equal(t, "https://cdn.example.com/42/init.mp4", plan.InitializationURL)
	assert.Equal(t, int64(1), plan.StartNumber)

	expected := []SegmentEntry{
		{Number: 1, Duration: 40000},
		{Number: 2, Duration: 40000},
		{Number: 3, Duration: 40000},
		{Number: 4, Duration: 24000},
	}
	assert.Equal(t, expected, plan.Segments)

	assert.Equal(t, "https://cdn.example.com/42/segment-3.m4s", plan.MediaURL(3))
}

func TestResolveManifest_SegmentedInsideRepresentation(t *testing.T) {
	t.Parallel()

	payload := dashManifest(`<Representation id="0" bandwidth="320000">
        <SegmentTemplate
          initialization="https://cdn.example.com/42/init.mp4"
          media="https://cdn.example.com/42/segment-$Number$.m4s">
          <SegmentTimeline>
            <S d="40000" r="1"/>
          </SegmentTimeline>
        </SegmentTemplate>
      </Representation>`)

	source, err := ResolveManifest(encodeManifest(t, payload))
	require.NoError(t, err)
	require.Equal(t, StreamSourceSegmented, source.Kind)

	assert.Len(t, source.Plan.Segments, 2)
}

func TestResolveManifest_StartNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		startNumber   string
		expectedStart int64
	}{
		{
			name:          "explicit",
			startNumber:   `startNumber="7"`,
			expectedStart: 7,
		},
		{
			name:          "absent defaults to one",
			startNumber:   "",
			expectedStart: 1,
		},
		{
			name:          "non-numeric defaults to one",
			startNumber:   `startNumber="first"`,
			expectedStart: 1,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			payload := dashManifest(fmt.Sprintf(`<SegmentTemplate
        initialization="https://cdn.example.com/init.mp4"
        media="https://cdn.example.com/segment-$Number$.m4s"
        %s>
        <SegmentTimeline>
          <S d="40000" r="1"/>
        </SegmentTimeline>
      </SegmentTemplate>`, testCase.startNumber))

			source, err := ResolveManifest(encodeManifest(t, payload))
			require.NoError(t, err)

			plan := source.Plan
			assert.Equal(t, testCase.expectedStart, plan.StartNumber)
			require.Len(t, plan.Segments, 2)
			assert.Equal(t, testCase.expectedStart, plan.Segments[0].Number)
			assert.Equal(t, testCase.expectedStart+1, plan.Segments[1].Number)
		})
	}
}

func TestResolveManifest_TimelessTemplateYieldsSingleSegment(t *testing.T) {
	t.Parallel()

	payload := dashManifest(`<SegmentTemplate
        initialization="https://cdn.example.com/init.mp4"
        media="https://cdn.example.com/segment-$Number$.m4s"
        startNumber="3"/>`)

	source, err := ResolveManifest(encodeManifest(t, payload))
	require.NoError(t, err)

	require.Len(t, source.Plan.Segments, 1)
	assert.Equal(t, SegmentEntry{Number: 3, Duration: 0}, source.Plan.Segments[0])
}

func TestResolveManifest_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		manifest      string
		expectedError error
	}{
		{
			name:          "broken base64",
			manifest:      "%%% not base64 %%%",
			expectedError: ErrManifestDecode,
		},
		{
			name:          "unrecognized payload",
			manifest:      base64.StdEncoding.EncodeToString([]byte("plain text, neither DASH nor URL list")),
			expectedError: ErrManifestDecode,
		},
		{
			name:          "url list without entries",
			manifest:      base64.StdEncoding.EncodeToString([]byte(`{"urls": []}`)),
			expectedError: ErrManifestDecode,
		},
		{
			name:          "dash without segment template",
			manifest:      base64.StdEncoding.EncodeToString([]byte(dashManifest(`<Representation id="0"/>`))),
			expectedError: ErrMissingSegmentTemplate,
		},
		{
			name: "dash with broken markup",
			manifest: base64.StdEncoding.EncodeToString(
				[]byte(`<MPD><Period><AdaptationSet></MPD>`)),
			expectedError: ErrMissingSegmentTemplate,
		},
		{
			name: "missing initialization",
			manifest: base64.StdEncoding.EncodeToString([]byte(dashManifest(
				`<SegmentTemplate media="https://cdn.example.com/segment-$Number$.m4s"/>`))),
			expectedError: ErrMissingInitialization,
		},
		{
			name: "missing media template",
			manifest: base64.StdEncoding.EncodeToString([]byte(dashManifest(
				`<SegmentTemplate initialization="https://cdn.example.com/init.mp4"/>`))),
			expectedError: ErrMissingMediaTemplate,
		},
		{
			name: "malformed timeline duration",
			manifest: base64.StdEncoding.EncodeToString([]byte(dashManifest(
				`<SegmentTemplate
          initialization="https://cdn.example.com/init.mp4"
          media="https://cdn.example.com/segment-$Number$.m4s">
          <SegmentTimeline><S d="soon"/></SegmentTimeline>
        </SegmentTemplate>`))),
			expectedError: ErrBadTimelineEntry,
		},
		{
			name: "malformed timeline repeat",
			manifest: base64.StdEncoding.EncodeToString([]byte(dashManifest(
				`<SegmentTemplate
          initialization="https://cdn.example.com/init.mp4"
          media="https://cdn.example.com/segment-$Number$.m4s">
          <SegmentTimeline><S d="40000" r="many"/></SegmentTimeline>
        </SegmentTemplate>`))),
			expectedError: ErrBadTimelineEntry,
		},
		{
			name: "negative repeat",
			manifest: base64.StdEncoding.EncodeToString([]byte(dashManifest(
				`<SegmentTemplate
          initialization="https://cdn.example.com/init.mp4"
          media="https://cdn.example.com/segment-$Number$.m4s">
          <SegmentTimeline><S d="40000" r="-1"/></SegmentTimeline>
        </SegmentTemplate>`))),
			expectedError: ErrNegativeRepeat,
		},
		{
			name: "relative initialization url",
			manifest: base64.StdEncoding.EncodeToString([]byte(dashManifest(
				`<SegmentTemplate
          initialization="init.mp4"
          media="https://cdn.example.com/segment-$Number$.m4s">
          <SegmentTimeline><S d="40000"/></SegmentTimeline>
        </SegmentTemplate>`))),
			expectedError: ErrBadSegmentURL,
		},
		{
			name: "relative media url",
			manifest: base64.StdEncoding.EncodeToString([]byte(dashManifest(
				`<SegmentTemplate
          initialization="https://cdn.example.com/init.mp4"
          media="segment-$Number$.m4s">
          <SegmentTimeline><S d="40000"/></SegmentTimeline>
        </SegmentTemplate>`))),
			expectedError: ErrBadSegmentURL,
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			source, err := ResolveManifest(&catalog.TrackManifest{Manifest: testCase.manifest})
			require.Error(t, err)
			assert.ErrorIs(t, err, testCase.expectedError)
			assert.Nil(t, source)
		})
	}
}

func TestSegmentPlan_MediaURL(t *testing.T) {
	t.Parallel()

	plan := &SegmentPlan{MediaTemplate: "https://cdn.example.com/42/seg-$Number$.m4s?auth=abc"}

	assert.Equal(t, "https://cdn.example.com/42/seg-1.m4s?auth=abc", plan.MediaURL(1))
	assert.Equal(t, "https://cdn.example.com/42/seg-250.m4s?auth=abc", plan.MediaURL(250))
}
