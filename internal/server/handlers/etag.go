package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ETag returns the strong entity tag of a record version.
// The tag changes on every committed write.
func ETag(resource, id string, version int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s/%s:%d", resource, id, version)))
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}

// matchETag reports whether a If-Match / If-None-Match header value
// lists tag. "*" matches any tag; weak prefixes are ignored.
func matchETag(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == tag || strings.Trim(candidate, `"`) == strings.Trim(tag, `"`) {
			return true
		}
	}
	return false
}
