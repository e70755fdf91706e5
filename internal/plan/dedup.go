package plan

// Groups is an insertion-ordered mapping from origin to SourceGroup.
type Groups struct {
	scoped bool
	order  []string
	index  map[string]int
	groups []SourceGroup
}

// NewGroups returns an empty mapping. When scoped is true a record is kept per
// distinct playlist; otherwise the first record for an origin wins.
func NewGroups(scoped bool) *Groups {
	return &Groups{scoped: scoped, index: make(map[string]int)}
}

// Dedup collapses records into ordered groups.
func Dedup(records []SourceRecord, scoped bool) *Groups {
	g := NewGroups(scoped)
	for _, rec := range records {
		g.Add(rec)
	}
	return g
}

// Add merges rec into its origin's group. It reports whether the record was
// appended.
func (g *Groups) Add(rec SourceRecord) bool {
	pos, ok := g.index[rec.Origin]
	if !ok {
		g.index[rec.Origin] = len(g.groups)
		g.order = append(g.order, rec.Origin)
		g.groups = append(g.groups, SourceGroup{Origin: rec.Origin, Records: []SourceRecord{rec}})
		return true
	}

	group := &g.groups[pos]
	if !g.scoped {
		return false
	}
	if group.hasPlaylist(rec.Playlist) {
		return false
	}
	group.Records = append(group.Records, rec)
	return true
}

func (sg SourceGroup) hasPlaylist(playlist string) bool {
	for _, existing := range sg.Records {
		if existing.Playlist == playlist {
			return true
		}
	}
	return false
}

// Scoped reports the merge policy the mapping was built with.
func (g *Groups) Scoped() bool {
	return g.scoped
}

// Len returns the number of distinct origins.
func (g *Groups) Len() int {
	return len(g.groups)
}

// Origins returns the distinct origins in first-seen order.
func (g *Groups) Origins() []string {
	return append([]string(nil), g.order...)
}

// All returns every group in first-seen order.
func (g *Groups) All() []SourceGroup {
	out := make([]SourceGroup, len(g.groups))
	for i, group := range g.groups {
		out[i] = SourceGroup{
			Origin:  group.Origin,
			Records: append([]SourceRecord(nil), group.Records...),
		}
	}
	return out
}
