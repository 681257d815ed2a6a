// Package pivot implements a simplified in-memory alternative to the
// relational ingestion path: groups, artifacts, and versions are pivoted
// into nested maps keyed by interned string-pool ids instead of a sqlite
// names table, trading durability for a dependency-free, allocation-light
// index useful for short-lived queries or tests. The relational path (see
// ingest, store) is the production workflow; this is the alternative
// backend behind the same shape of operations.
package pivot

// StringPool interns strings to small integer ids without any backing
// store; unlike intern.Interner there is no persistence and no
// UNIQUE-violation race to handle, since the pool is private to one
// Index and never shared across goroutines.
type StringPool struct {
	ids   map[string]int
	names []string
}

// NewStringPool creates an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{ids: make(map[string]int)}
}

// Intern returns s's id, assigning a new one on first sight.
func (p *StringPool) Intern(s string) int {
	if id, ok := p.ids[s]; ok {
		return id
	}
	id := len(p.names)
	p.names = append(p.names, s)
	p.ids[s] = id
	return id
}

// Lookup returns the string for id, or "" and false if unknown.
func (p *StringPool) Lookup(id int) (string, bool) {
	if id < 0 || id >= len(p.names) {
		return "", false
	}
	return p.names[id], true
}

// Len reports how many distinct strings have been interned.
func (p *StringPool) Len() int { return len(p.names) }

// variant is the (classifier, extension) pair distinguishing two
// artifacts published under the same group/artifact/version.
type variant struct {
	classifier int // -1 means absent
	extension  int // -1 means absent
}

// Record is one pivoted artifact coordinate, carrying the interned ids of
// its optional qualifiers rather than the relational row's full column
// set — pivot is a lookup index, not a replacement for the versions fact
// table.
type Record struct {
	PackagingID int
	Classifier  int // -1 means absent
	Extension   int // -1 means absent
}

// Index is the in-memory alternative to the relational `versions` +
// `<col>_names` schema: nested maps from group -> artifact -> version ->
// variant -> Record, with one StringPool each for groups, artifacts,
// packaging (shared with extension) and classifiers. Name and description
// are not stored, so unlike the relational schema there is no pool for them.
type Index struct {
	Groups    *StringPool
	Artifacts *StringPool
	Packaging *StringPool // shared by packaging and extension
	Classifier *StringPool

	tree map[int]map[int]map[string]map[variant]Record
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{
		Groups:     NewStringPool(),
		Artifacts:  NewStringPool(),
		Packaging:  NewStringPool(),
		Classifier: NewStringPool(),
		tree:       make(map[int]map[int]map[string]map[variant]Record),
	}
}

// Add pivots one (group, artifact, version, classifier, extension,
// packaging) coordinate into the index. classifier and extension are nil
// when absent, matching nexus.UniqID's optional fields.
func (ix *Index) Add(group, artifact, version string, classifier, extension *string, packaging string) {
	groupID := ix.Groups.Intern(group)
	artifactID := ix.Artifacts.Intern(artifact)
	packagingID := ix.Packaging.Intern(packaging)

	v := variant{classifier: -1, extension: -1}
	if classifier != nil {
		v.classifier = ix.Classifier.Intern(*classifier)
	}
	if extension != nil {
		v.extension = ix.Packaging.Intern(*extension)
	}

	byArtifact, ok := ix.tree[groupID]
	if !ok {
		byArtifact = make(map[int]map[string]map[variant]Record)
		ix.tree[groupID] = byArtifact
	}
	byVersion, ok := byArtifact[artifactID]
	if !ok {
		byVersion = make(map[string]map[variant]Record)
		byArtifact[artifactID] = byVersion
	}
	byVariant, ok := byVersion[version]
	if !ok {
		byVariant = make(map[variant]Record)
		byVersion[version] = byVariant
	}
	byVariant[v] = Record{PackagingID: packagingID, Classifier: v.classifier, Extension: v.extension}
}

// FindVersions mirrors store.FindVersions's contract over the in-memory
// index: every version string recorded for group/artifact, in
// unspecified (map iteration) order.
func (ix *Index) FindVersions(group, artifact string) []string {
	groupID, ok := ix.Groups.lookupID(group)
	if !ok {
		return nil
	}
	artifactID, ok := ix.Artifacts.lookupID(artifact)
	if !ok {
		return nil
	}
	byArtifact, ok := ix.tree[groupID]
	if !ok {
		return nil
	}
	byVersion, ok := byArtifact[artifactID]
	if !ok {
		return nil
	}
	versions := make([]string, 0, len(byVersion))
	for v := range byVersion {
		versions = append(versions, v)
	}
	return versions
}

// lookupID is the reverse of Intern: find the id already assigned to s,
// if any, without allocating a new one.
func (p *StringPool) lookupID(s string) (int, bool) {
	id, ok := p.ids[s]
	return id, ok
}

// Stats reports pool sizes and the total coordinate count, for
// visibility into how large each pool has grown.
type Stats struct {
	Groups      int
	Artifacts   int
	Packaging   int
	Classifiers int
	Records     int
}

// Stats computes a fresh Stats snapshot by walking the tree.
func (ix *Index) Stats() Stats {
	records := 0
	for _, byArtifact := range ix.tree {
		for _, byVersion := range byArtifact {
			for _, byVariant := range byVersion {
				records += len(byVariant)
			}
		}
	}
	return Stats{
		Groups:      ix.Groups.Len(),
		Artifacts:   ix.Artifacts.Len(),
		Packaging:   ix.Packaging.Len(),
		Classifiers: ix.Classifier.Len(),
		Records:     records,
	}
}
