package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Known media hosts. URL pattern matches short-circuit metadata inspection,
// so a YouTube page claiming og:type=article still classifies as video.
var videoHosts = []string{
	"youtube.com/watch",
	"youtu.be/",
	"vimeo.com/",
	"twitch.tv/",
	"dailymotion.com/video",
}

var audioHosts = []string{
	"spotify.com/episode",
	"spotify.com/show",
	"podcasts.apple.com/",
	"soundcloud.com/",
	"anchor.fm/",
	"overcast.fm/",
}

// Classify infers the content type for a URL. It never fails: unknown pages
// fall through to blog. Precedence is video URL patterns, then audio URL
// patterns, then the page's og:type hint.
func Classify(url, html string) ContentType {
	lower := strings.ToLower(url)

	for _, host := range videoHosts {
		if strings.Contains(lower, host) {
			return ContentTypeVideo
		}
	}
	for _, host := range audioHosts {
		if strings.Contains(lower, host) {
			return ContentTypeAudio
		}
	}

	switch ogType := metaProperty(html, "og:type"); {
	case strings.HasPrefix(ogType, "video"):
		return ContentTypeVideo
	case strings.HasPrefix(ogType, "music"), strings.HasPrefix(ogType, "audio"):
		return ContentTypeAudio
	}

	return ContentTypeBlog
}

// metaProperty returns the content of <meta property=...>, lowercased and
// trimmed, or "" when the tag is absent or the markup does not parse.
func metaProperty(html, property string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	content, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.ToLower(strings.TrimSpace(content))
}
