package twitter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeEnvelope(t *testing.T, raw string) *responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	return &envelope
}

// =============================================================================
// Unit Tests - Envelope Extraction
// =============================================================================

func TestExtractVariants_MissingLinks(t *testing.T) {
	tests := []struct {
		name string
		body string
		link string
	}{
		{
			name: "empty object",
			body: `{}`,
			link: "data",
		},
		{
			name: "missing tweetResult",
			body: `{"data":{}}`,
			link: "tweetResult",
		},
		{
			name: "deleted tweet result",
			body: `{"data":{"tweetResult":{}}}`,
			link: "result",
		},
		{
			name: "missing legacy",
			body: `{"data":{"tweetResult":{"result":{}}}}`,
			link: "legacy",
		},
		{
			name: "missing entities",
			body: `{"data":{"tweetResult":{"result":{"legacy":{}}}}}`,
			link: "entities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractVariants(decodeEnvelope(t, tt.body))
			if !errors.Is(err, ErrMalformedResponse) {
				t.Fatalf("error = %v, want ErrMalformedResponse", err)
			}
			if !strings.Contains(err.Error(), `"`+tt.link+`"`) {
				t.Errorf("error %q does not name the missing link %q", err.Error(), tt.link)
			}
		})
	}
}

func TestExtractVariants_NoVideo(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "entities without media",
			body: `{"data":{"tweetResult":{"result":{"legacy":{"entities":{}}}}}}`,
		},
		{
			name: "text-only tweet",
			body: `{"data":{"tweetResult":{"result":{"legacy":{"entities":{"media":[]}}}}}}`,
		},
		{
			name: "photo tweet",
			body: `{"data":{"tweetResult":{"result":{"legacy":{"entities":{"media":[{"media_url_https":"https://pbs.twimg.com/media/a.jpg"}]}}}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractVariants(decodeEnvelope(t, tt.body))
			if !errors.Is(err, ErrNoVideoFound) {
				t.Fatalf("error = %v, want ErrNoVideoFound", err)
			}
		})
	}
}

func TestExtractVariants_FiltersToMP4(t *testing.T) {
	body := `{"data":{"tweetResult":{"result":{"legacy":{"entities":{"media":[
		{"video_info":{"variants":[
			{"content_type":"application/x-mpegURL","url":"https://video.twimg.com/pl/playlist.m3u8"},
			{"bitrate":320000,"content_type":"video/mp4","url":"https://video.twimg.com/vid/low.mp4"},
			{"bitrate":950000,"content_type":"video/mp4","url":"https://video.twimg.com/vid/high.mp4"},
			{"content_type":"video/webm","url":"https://video.twimg.com/vid/alt.webm"}
		]}}
	]}}}}}}`

	variants, err := extractVariants(decodeEnvelope(t, body))
	if err != nil {
		t.Fatalf("extractVariants failed: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("got %d variants, want the 2 MP4 entries", len(variants))
	}
	for _, v := range variants {
		if v.ContentType != "video/mp4" {
			t.Errorf("variant %q leaked through the MP4 filter", v.ContentType)
		}
	}
}

func TestExtractVariants_OnlyFirstMediaItem(t *testing.T) {
	body := `{"data":{"tweetResult":{"result":{"legacy":{"entities":{"media":[
		{"video_info":{"variants":[
			{"bitrate":100000,"content_type":"video/mp4","url":"https://video.twimg.com/vid/first.mp4"}
		]}},
		{"video_info":{"variants":[
			{"bitrate":999000,"content_type":"video/mp4","url":"https://video.twimg.com/vid/second.mp4"}
		]}}
	]}}}}}}`

	variants, err := extractVariants(decodeEnvelope(t, body))
	if err != nil {
		t.Fatalf("extractVariants failed: %v", err)
	}
	if len(variants) != 1 {
		t.Fatalf("got %d variants, want only the first media item's", len(variants))
	}
	if variants[0].Bitrate != 100000 {
		t.Errorf("variant bitrate = %d, want the first media item's 100000", variants[0].Bitrate)
	}
}

func TestExtractVariants_MissingBitrate(t *testing.T) {
	// Some MP4 entries arrive without a bitrate field; they decode as zero
	// and lose to any rated variant.
	body := `{"data":{"tweetResult":{"result":{"legacy":{"entities":{"media":[
		{"video_info":{"variants":[
			{"content_type":"video/mp4","url":"https://video.twimg.com/vid/unrated.mp4"}
		]}}
	]}}}}}}`

	variants, err := extractVariants(decodeEnvelope(t, body))
	if err != nil {
		t.Fatalf("extractVariants failed: %v", err)
	}
	if len(variants) != 1 {
		t.Fatalf("got %d variants, want 1", len(variants))
	}
	if variants[0].Bitrate != 0 {
		t.Errorf("missing bitrate decoded as %d, want 0", variants[0].Bitrate)
	}
}

// =============================================================================
// Unit Tests - Variant Selection
// =============================================================================

func TestSelectBestVariant(t *testing.T) {
	tests := []struct {
		name     string
		variants []VideoVariant
		wantURL  string
	}{
		{
			name: "single variant",
			variants: []VideoVariant{
				{Bitrate: 832000, URL: "only.mp4"},
			},
			wantURL: "only.mp4",
		},
		{
			name: "highest wins regardless of order",
			variants: []VideoVariant{
				{Bitrate: 832000, URL: "mid.mp4"},
				{Bitrate: 2176000, URL: "high.mp4"},
				{Bitrate: 256000, URL: "low.mp4"},
			},
			wantURL: "high.mp4",
		},
		{
			name: "tie goes to the first encountered",
			variants: []VideoVariant{
				{Bitrate: 832000, URL: "first.mp4"},
				{Bitrate: 832000, URL: "second.mp4"},
			},
			wantURL: "first.mp4",
		},
		{
			name: "zero bitrate loses to any rated variant",
			variants: []VideoVariant{
				{Bitrate: 0, URL: "unrated.mp4"},
				{Bitrate: 1, URL: "tiny.mp4"},
			},
			wantURL: "tiny.mp4",
		},
		{
			name: "all zero picks the first",
			variants: []VideoVariant{
				{Bitrate: 0, URL: "a.mp4"},
				{Bitrate: 0, URL: "b.mp4"},
			},
			wantURL: "a.mp4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := selectBestVariant(tt.variants)
			if best.URL != tt.wantURL {
				t.Errorf("selectBestVariant picked %q, want %q", best.URL, tt.wantURL)
			}
		})
	}
}
