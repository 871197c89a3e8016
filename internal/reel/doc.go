// Package reel validates Instagram Reel links and downloads reels.
//
// ValidateURL is pure. Fetcher shells out to yt-dlp, keeps the video in the
// configured video directory and harvests the caption from the printed
// metadata, the .info.json sidecar (always deleted) and optionally the
// og:description tag of the reel page. Downloads of one shortcode are
// serialised with a file lock so concurrent runs share the video safely.
package reel
