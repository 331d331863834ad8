// Package alias resolves the two open questions IEBCOPY directory parsing
// raises about member identity: two directory entries that are true
// aliases sharing one TTR, and member-data groups whose TTR never
// appeared in the directory at all.
package alias

import "fmt"

// Tracker assigns member-data groups to directory entries by TTR and flags
// the two anomalies a real unload stream can contain.
type Tracker struct {
	byTTR    map[string]string   // TTR (3 raw bytes as a string key) -> owning member name
	aliases  map[string][]string // TTR -> every alias name sharing it, in directory order
	orphaned []string            // TTRs seen in member data with no directory entry
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byTTR:   make(map[string]string),
		aliases: make(map[string][]string),
	}
}

// ttrKey turns a 3-byte TTR into a comparable map key.
func ttrKey(ttr [3]byte) string {
	return string(ttr[:])
}

// TrackDirectoryEntry records a directory entry's TTR assignment. When a
// TTR has already been claimed by an earlier entry, this is an alias: both
// names are recorded under that TTR and HasAlias reports true, but only the
// first-seen name is treated as the data owner.
func (t *Tracker) TrackDirectoryEntry(name string, ttr [3]byte) {
	key := ttrKey(ttr)
	if owner, exists := t.byTTR[key]; exists {
		if len(t.aliases[key]) == 0 {
			t.aliases[key] = append(t.aliases[key], owner)
		}
		t.aliases[key] = append(t.aliases[key], name)
		return
	}
	t.byTTR[key] = name
}

// Owner returns the member name that owns the data for the given TTR (the
// first directory entry to claim it), and whether any entry has claimed it.
func (t *Tracker) Owner(ttr [3]byte) (string, bool) {
	name, ok := t.byTTR[ttrKey(ttr)]
	return name, ok
}

// Aliases returns every name, beyond the owner, that shares the given TTR.
func (t *Tracker) Aliases(ttr [3]byte) []string {
	names := t.aliases[ttrKey(ttr)]
	if len(names) <= 1 {
		return nil
	}
	return names[1:]
}

// HasAlias reports whether any directory entry shared a TTR with another.
func (t *Tracker) HasAlias() bool {
	return len(t.aliases) > 0
}

// TrackOrphanData records a member-data group whose TTR matched no
// directory entry. Returns the synthetic name the orchestrator should use
// for it.
func (t *Tracker) TrackOrphanData(ttr [3]byte) string {
	synthetic := OrphanName(ttr)
	t.orphaned = append(t.orphaned, synthetic)
	return synthetic
}

// Orphans returns the synthetic names generated for orphaned data groups,
// in the order they were encountered.
func (t *Tracker) Orphans() []string {
	return t.orphaned
}

// OrphanName formats the synthetic name used for member-data groups with
// no matching directory entry.
func OrphanName(ttr [3]byte) string {
	return fmt.Sprintf("__ORPHAN_%02X%02X%02X__", ttr[0], ttr[1], ttr[2])
}
