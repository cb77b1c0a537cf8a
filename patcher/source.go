package patcher

import "strings"

// Source is a selectable distribution channel for the patch archive.
type Source struct {
	// Name is the human-readable channel name shown to the user.
	Name string

	// URL points at the zip archive for this channel. Besides http(s),
	// s3://bucket/key is accepted for self-hosted mirrors.
	URL string
}

var catalog = []Source{
	{Name: "Default", URL: "https://hearthstoneaccess.com/files/pre_patch.zip"},
	{Name: "Battlegrounds Duos (BETA)", URL: "https://hearthstoneaccess.com/files/duos_beta_patch.zip"},
}

// DefaultChannel is the name of the channel used when none is selected.
const DefaultChannel = "Default"

// Sources returns the fixed channel catalog. The slice is a copy.
func Sources() []Source {
	out := make([]Source, len(catalog))
	copy(out, catalog)
	return out
}

// LookupSource finds a channel by name, ignoring case and a trailing period.
func LookupSource(name string) (Source, bool) {
	want := normalizeChannel(name)
	for _, s := range catalog {
		if normalizeChannel(s.Name) == want {
			return s, true
		}
	}
	return Source{}, false
}

func normalizeChannel(name string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
}
