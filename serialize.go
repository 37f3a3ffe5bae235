package moize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chaabaj/moize/pkg/cache"
)

// Serializer collapses a key into one canonical string. Two argument lists
// that serialize identically address the same cache entry.
type Serializer func(key cache.Key) string

// DefaultSerializer renders each key element as JSON and joins them with
// "|". Values JSON cannot represent (channels, functions, cyclic structures)
// fall back to their fmt representation, so serialization itself never
// fails.
func DefaultSerializer(key cache.Key) string {
	var b strings.Builder
	for i, el := range key {
		if i > 0 {
			b.WriteByte('|')
		}
		data, err := json.Marshal(el)
		if err != nil {
			fmt.Fprintf(&b, "%v", el)
			continue
		}
		b.Write(data)
	}
	return b.String()
}
