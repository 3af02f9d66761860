package twitter

import (
	"encoding/json"
	"net/url"
)

// detailOperation is the GraphQL operation serving single-tweet lookups. The
// opaque hash segment baked into the configured base URL is versioned together
// with the web client bundle.
const detailOperation = "TweetResultByRestId"

// detailVariables is the variables object for the detail query. The backend
// expects the tweet ID as a JSON string, not a number.
type detailVariables struct {
	TweetID                string `json:"tweetId"`
	WithCommunity          bool   `json:"withCommunity"`
	IncludePromotedContent bool   `json:"includePromotedContent"`
	WithVoice              bool   `json:"withVoice"`
}

// detailFeatures mirrors the feature flags the web client sends. The backend
// validates the full set server-side: a missing, extra, or re-valued flag gets
// the request rejected (or silently changes the response), so every key and
// value here must track the pinned bundle exactly.
var detailFeatures = map[string]bool{
	"creator_subscriptions_tweet_preview_api_enabled":                         true,
	"communities_web_enable_tweet_community_results_fetch":                    true,
	"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
	"articles_preview_enabled":                                                true,
	"responsive_web_edit_tweet_api_enabled":                                   true,
	"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
	"view_counts_everywhere_api_enabled":                                      true,
	"longform_notetweets_consumption_enabled":                                 true,
	"responsive_web_twitter_article_tweet_consumption_enabled":                true,
	"tweet_awards_web_tipping_enabled":                                        false,
	"creator_subscriptions_quote_tweet_preview_enabled":                       false,
	"freedom_of_speech_not_reach_fetch_enabled":                               true,
	"standardized_nudges_misinfo":                                             true,
	"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
	"rweb_video_timestamps_enabled":                                           true,
	"longform_notetweets_rich_text_read_enabled":                              true,
	"longform_notetweets_inline_media_enabled":                                true,
	"rweb_tipjar_consumption_enabled":                                         true,
	"responsive_web_graphql_exclude_directive_enabled":                        true,
	"verified_phone_label_enabled":                                            false,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
	"responsive_web_graphql_timeline_navigation_enabled":                      true,
	"responsive_web_enhance_cards_enabled":                                    false,
}

// detailFieldToggles controls which optional response fields the backend
// includes. Same contract rules as detailFeatures.
var detailFieldToggles = map[string]bool{
	"withArticleRichContentState": true,
	"withArticlePlainText":        false,
	"withGrokAnalyze":             false,
	"withDisallowedReplyControls": false,
}

// buildDetailURL constructs the fully parameterized detail query URL for one
// tweet ID. Pure: the same ID against the same base URL always yields the
// identical string (JSON maps marshal with sorted keys, url.Values encodes
// with sorted parameter names).
func buildDetailURL(baseURL, tweetID string) string {
	variables, _ := json.Marshal(detailVariables{TweetID: tweetID})
	features, _ := json.Marshal(detailFeatures)
	fieldToggles, _ := json.Marshal(detailFieldToggles)

	params := url.Values{}
	params.Set("variables", string(variables))
	params.Set("features", string(features))
	params.Set("fieldToggles", string(fieldToggles))

	return baseURL + "/" + detailOperation + "?" + params.Encode()
}
