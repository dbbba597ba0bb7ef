package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// GenerateProjectID builds a deterministic project id from a timestamp
// and name: yyyymmdd_hhmm_<slug>. The slug is the lowercased name with
// every non-alphanumeric byte replaced by '_', truncated to 30 chars.
func GenerateProjectID(name string, t time.Time) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	slug := b.String()
	if len(slug) > 30 {
		slug = slug[:30]
	}
	return t.Format("20060102_1504") + "_" + slug
}

// NewEvaluationID returns an id like eval_<millis base36>_<random>.
func NewEvaluationID() string {
	var suffix [3]byte
	_, _ = rand.Read(suffix[:])
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return "eval_" + ts + "_" + hex.EncodeToString(suffix[:])[:5]
}
