package scraper

import "strings"

// locationAliases map the short names the review UI collects to the
// full form the boards expect. Unknown values pass through so users
// can search any market.
var locationAliases = map[string]string{
	"adelaide":  "Adelaide, Australia",
	"sydney":    "Sydney, Australia",
	"melbourne": "Melbourne, Australia",
}

// DefaultLocations is the AU search set used when preferences name no
// locations.
func DefaultLocations() []string {
	return []string{
		"Adelaide, Australia",
		"Sydney, Australia",
		"Melbourne, Australia",
	}
}

// ResolveLocations expands short preference names to full board
// locations. Empty input falls back to the default set.
func ResolveLocations(preferred []string) []string {
	if len(preferred) == 0 {
		return DefaultLocations()
	}
	out := make([]string, 0, len(preferred))
	for _, loc := range preferred {
		trimmed := strings.TrimSpace(loc)
		if trimmed == "" {
			continue
		}
		if full, ok := locationAliases[strings.ToLower(trimmed)]; ok {
			out = append(out, full)
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return DefaultLocations()
	}
	return out
}
