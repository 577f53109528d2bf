package fetch

// KnownPaths is the append-only list of site paths believed relevant.
// Seeded from the fixed catalog; relevant redirect targets discovered
// mid-crawl are appended. It serves as the fallback pool for 404 recovery,
// never as a frontier source. Insertion order is preserved so recovery
// attempts are deterministic.
type KnownPaths struct {
	paths []string
	seen  map[string]bool
}

// NewKnownPaths returns a list seeded with the given catalog, deduplicated
// by exact path string.
func NewKnownPaths(seed []string) *KnownPaths {
	kp := &KnownPaths{seen: make(map[string]bool, len(seed))}
	for _, p := range seed {
		kp.Add(p)
	}
	return kp
}

// Add appends a path if not already present. Returns true if it was new.
func (kp *KnownPaths) Add(path string) bool {
	if path == "" || kp.seen[path] {
		return false
	}
	kp.seen[path] = true
	kp.paths = append(kp.paths, path)
	return true
}

// Contains reports whether the exact path string is registered.
func (kp *KnownPaths) Contains(path string) bool {
	return kp.seen[path]
}

// Snapshot returns the paths in insertion order. The returned slice is a
// copy; mutating it does not affect the list.
func (kp *KnownPaths) Snapshot() []string {
	out := make([]string, len(kp.paths))
	copy(out, kp.paths)
	return out
}

// Len returns the number of registered paths.
func (kp *KnownPaths) Len() int {
	return len(kp.paths)
}
