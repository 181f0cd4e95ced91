// Package identifier converts between Sportradar URNs ("sr:competitor:1644")
// and the special IDs stored locally ("1644").
package identifier

import "strings"

// Provider namespaces
const (
	Season      = "sr:season"
	Competition = "sr:competition"
	Competitor  = "sr:competitor"
	Player      = "sr:player"
	SportEvent  = "sr:sport_event"
)

// Strip removes the leading "<prefix>:" from raw. When the prefix is absent
// raw is returned unchanged; lookups keyed on it then simply miss.
func Strip(raw, prefix string) string {
	return strings.TrimPrefix(raw, prefix+":")
}

// Qualify turns a special ID back into a provider URN. Already-qualified
// values are returned as-is.
func Qualify(specialID, prefix string) string {
	if strings.HasPrefix(specialID, prefix+":") {
		return specialID
	}
	return prefix + ":" + specialID
}
