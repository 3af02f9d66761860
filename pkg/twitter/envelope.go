package twitter

import "fmt"

// VideoVariant is one encoded rendition of a tweet's video.
type VideoVariant struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

const videoContentType = "video/mp4"

// responseEnvelope models the nested detail response. Every level is a
// pointer so an absent link can be told apart from an empty one: the backend
// omits whole subtrees for deleted tweets, tombstones, and text-only posts.
type responseEnvelope struct {
	Data *struct {
		TweetResult *struct {
			Result *struct {
				Legacy *struct {
					Entities *struct {
						Media []mediaEntry `json:"media"`
					} `json:"entities"`
				} `json:"legacy"`
			} `json:"result"`
		} `json:"tweetResult"`
	} `json:"data"`
}

type mediaEntry struct {
	VideoInfo *struct {
		Variants []variantEntry `json:"variants"`
	} `json:"video_info"`
}

type variantEntry struct {
	Bitrate     int    `json:"bitrate"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// extractVariants walks the envelope down to the first media item's variants
// and returns the MP4 entries, unsorted. A missing media item or video_info
// yields ErrNoVideoFound (text or photo tweets land here); any other absent
// link yields ErrMalformedResponse naming the link, since that means the
// provider changed the envelope shape.
//
// Only the first media item is inspected. Multi-video tweets resolve to the
// first video's variants.
func extractVariants(envelope *responseEnvelope) ([]VideoVariant, error) {
	if envelope.Data == nil {
		return nil, malformed("data")
	}
	if envelope.Data.TweetResult == nil {
		return nil, malformed("tweetResult")
	}
	result := envelope.Data.TweetResult.Result
	if result == nil {
		return nil, malformed("result")
	}
	if result.Legacy == nil {
		return nil, malformed("legacy")
	}
	if result.Legacy.Entities == nil {
		return nil, malformed("entities")
	}

	media := result.Legacy.Entities.Media
	if len(media) == 0 {
		return nil, fmt.Errorf("%w: tweet has no media", ErrNoVideoFound)
	}
	if media[0].VideoInfo == nil {
		return nil, fmt.Errorf("%w: first media item has no video_info", ErrNoVideoFound)
	}

	var variants []VideoVariant
	for _, v := range media[0].VideoInfo.Variants {
		if v.ContentType != videoContentType {
			continue
		}
		variants = append(variants, VideoVariant{
			Bitrate:     v.Bitrate,
			ContentType: v.ContentType,
			URL:         v.URL,
		})
	}
	return variants, nil
}

func malformed(link string) error {
	return fmt.Errorf("%w: missing %q in envelope", ErrMalformedResponse, link)
}

// selectBestVariant returns the highest-bitrate variant. Ties go to the
// first-encountered maximum. The caller guarantees variants is non-empty.
func selectBestVariant(variants []VideoVariant) VideoVariant {
	best := variants[0]
	for _, v := range variants[1:] {
		if v.Bitrate > best.Bitrate {
			best = v
		}
	}
	return best
}
