package attribution

import (
	"strings"
)

// SourceAliases maps a normalized ad-network name to the source labels CRM
// records use for traffic from that network. Pure read-only lookup data.
type SourceAliases map[string][]string

// DefaultSourceAliases returns the static network -> source alias table.
// Keys and values are matched case-insensitively.
func DefaultSourceAliases() SourceAliases {
	return SourceAliases{
		"google ads":    {"adwords", "google"},
		"google":        {"adwords", "google"},
		"facebook ads":  {"facebook", "fb", "meta"},
		"facebook":      {"facebook", "fb", "meta"},
		"meta":          {"facebook", "fb", "meta"},
		"bing":          {"bing", "microsoft"},
		"microsoft ads": {"bing", "microsoft"},
		"tiktok":        {"tiktok", "tt"},
		"taboola":       {"taboola"},
		"outbrain":      {"outbrain"},
		"snapchat":      {"snapchat", "snap"},
	}
}

func normalizeSource(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SourcesFor returns the source labels a network maps to. Networks absent
// from the table map to their own normalized name.
func (a SourceAliases) SourcesFor(network string) []string {
	key := normalizeSource(network)
	if sources, ok := a[key]; ok {
		return sources
	}
	if key == "" {
		return nil
	}
	return []string{key}
}

// Matches reports whether any of the given networks maps to the source label.
func (a SourceAliases) Matches(networks []string, source string) bool {
	target := normalizeSource(source)
	if target == "" {
		return false
	}
	for _, network := range networks {
		for _, s := range a.SourcesFor(network) {
			if normalizeSource(s) == target {
				return true
			}
		}
	}
	return false
}
