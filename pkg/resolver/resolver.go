package resolver

import "regexp"

// idPattern matches the 11-character video token in any of the canonical URL
// shapes. It is deliberately permissive: whether the token denotes a real
// video is only discovered when a provider is queried.
var (
	idPattern = regexp.MustCompile(`(?:v=|youtu\.be/|shorts/|embed/)([A-Za-z0-9_-]{11})`)
	bareID    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// Resolve extracts a canonical video ID from a raw URL or ID string.
// The second return value is false when no identifier could be found.
func Resolve(raw string) (string, bool) {
	if m := idPattern.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if bareID.MatchString(raw) {
		return raw, true
	}
	return "", false
}

// ResolveAll resolves a batch of raw inputs, keeping input order. Unresolvable
// entries are dropped silently; the count of dropped entries is returned so
// callers can report it.
func ResolveAll(raws []string) ([]string, int) {
	ids := make([]string, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		id, ok := Resolve(raw)
		if !ok {
			dropped++
			continue
		}
		ids = append(ids, id)
	}
	return ids, dropped
}

// WatchURL returns the full watch-page URL for a video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// ShortURL returns the short share URL for a video ID.
func ShortURL(id string) string {
	return "https://youtu.be/" + id
}
