// internal/app/system/visibility/visibility.go

// Package visibility decides which announcements a user can see.
//
// The rule is deliberately simple and total: an announcement is visible
// iff its originating club is a broadcast source (visible to everyone)
// or the club name appears in the user's subscription set. Matching is
// an exact, case-sensitive string comparison on the club name, with no
// fuzzy or ID-based matching.
package visibility

// DefaultBroadcastClubs are the pseudo-clubs whose announcements bypass
// subscription filtering.
var DefaultBroadcastClubs = []string{"Admin", "Placement Cell"}

// Filter is a pure announcement-visibility predicate. The zero value
// treats no club as a broadcast source; construct with New for the
// configured broadcast set.
type Filter struct {
	broadcast map[string]struct{}
}

// New builds a Filter with the given broadcast club names.
func New(broadcastClubs []string) *Filter {
	f := &Filter{broadcast: make(map[string]struct{}, len(broadcastClubs))}
	for _, name := range broadcastClubs {
		if name != "" {
			f.broadcast[name] = struct{}{}
		}
	}
	return f
}

// Default returns a Filter with DefaultBroadcastClubs.
func Default() *Filter {
	return New(DefaultBroadcastClubs)
}

// IsBroadcast reports whether club is a broadcast source.
func (f *Filter) IsBroadcast(club string) bool {
	_, ok := f.broadcast[club]
	return ok
}

// VisibleClubs returns the union of the user's subscriptions and the
// broadcast set, deduplicated. Feed lists pass this to a $in query so
// filtering happens in the database instead of over a fetched page.
func (f *Filter) VisibleClubs(subs []string) []string {
	seen := make(map[string]struct{}, len(subs)+len(f.broadcast))
	out := make([]string, 0, len(subs)+len(f.broadcast))
	for name := range f.broadcast {
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, s := range subs {
		if _, dup := seen[s]; !dup && s != "" {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Visible reports whether an announcement from club is visible to a user
// with the given subscription set. It never errors: every (subs, club)
// pair yields exactly one boolean. A user with zero subscriptions sees
// only broadcast announcements.
func (f *Filter) Visible(subs []string, club string) bool {
	if f.IsBroadcast(club) {
		return true
	}
	for _, s := range subs {
		if s == club {
			return true
		}
	}
	return false
}
