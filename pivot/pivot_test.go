package pivot

import "testing"

func TestStringPoolInternIsStable(t *testing.T) {
	p := NewStringPool()
	id1 := p.Intern("jar")
	id2 := p.Intern("jar")
	if id1 != id2 {
		t.Fatalf("got different ids for the same string: %d vs %d", id1, id2)
	}
	if p.Intern("pom") == id1 {
		t.Fatal("distinct strings got the same id")
	}
	name, ok := p.Lookup(id1)
	if !ok || name != "jar" {
		t.Fatalf("Lookup(%d) = %q, %v", id1, name, ok)
	}
}

func TestIndexAddAndFindVersions(t *testing.T) {
	ix := NewIndex()
	ix.Add("com.google.guava", "guava", "31.0.1-jre", nil, nil, "jar")
	ix.Add("com.google.guava", "guava", "32.0.0-jre", nil, nil, "jar")

	versions := ix.FindVersions("com.google.guava", "guava")
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2: %v", len(versions), versions)
	}

	seen := map[string]bool{}
	for _, v := range versions {
		seen[v] = true
	}
	if !seen["31.0.1-jre"] || !seen["32.0.0-jre"] {
		t.Fatalf("missing expected versions: %v", versions)
	}
}

func TestIndexFindVersionsUnknownGroupIsEmpty(t *testing.T) {
	ix := NewIndex()
	if got := ix.FindVersions("nope", "nope"); len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestIndexDistinguishesClassifierVariants(t *testing.T) {
	ix := NewIndex()
	sources := "sources"
	ix.Add("g", "a", "1.0", nil, nil, "jar")
	ix.Add("g", "a", "1.0", &sources, nil, "jar")

	stats := ix.Stats()
	if stats.Records != 2 {
		t.Fatalf("got %d records, want 2 (distinct classifier variants)", stats.Records)
	}
}

func TestIndexSharesPackagingAndExtensionPool(t *testing.T) {
	ix := NewIndex()
	ext := "jar"
	ix.Add("g", "a", "1.0", nil, &ext, "jar")

	if ix.Packaging.Len() != 1 {
		t.Fatalf("got %d distinct packaging/extension entries, want 1 (shared pool)", ix.Packaging.Len())
	}
}

func TestStatsCountsPools(t *testing.T) {
	ix := NewIndex()
	ix.Add("g1", "a1", "1.0", nil, nil, "jar")
	ix.Add("g2", "a2", "1.0", nil, nil, "pom")

	stats := ix.Stats()
	if stats.Groups != 2 || stats.Artifacts != 2 || stats.Packaging != 2 || stats.Records != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
