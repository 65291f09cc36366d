// Package fingerprint derives stable cache keys from bookmark content so
// expensive derived views (clusters, knowledge-gap analysis) can be memoized
// independently of the order rows come back from the store.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/linkstash-app/linkstash/internal/models"
)

// Fingerprint returns one content digest per record, sorted lexicographically.
// Each digest joins id, title, summary, url and the sorted tag list with "-";
// separators are always emitted so records differing only in the presence of a
// field cannot collide.
func Fingerprint(records []models.Bookmark) []string {
	out := make([]string, 0, len(records))
	for i := range records {
		b := &records[i]

		tags := make([]string, len(b.Tags))
		copy(tags, b.Tags)
		sort.Strings(tags)

		digest := strings.Join([]string{
			b.ID,
			b.Title,
			b.Summary,
			b.URL,
			strings.Join(tags, "|"),
		}, "-")
		out = append(out, digest)
	}
	sort.Strings(out)
	return out
}

// CacheKey hashes a fingerprint into a fixed-length key. Identical multisets
// of record content always map to the same key regardless of input order.
func CacheKey(fp []string) string {
	sum := sha256.Sum256([]byte(strings.Join(fp, "\n")))
	return hex.EncodeToString(sum[:])
}
