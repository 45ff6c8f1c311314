package paging

// Flags encodes a page-table entry's permission and status bits. The
// layout reserves three "available" bits for software use; bit 0 of
// that group is the copy-on-write marker (spec.md §3, §4.1).
type Flags uint64

const (
	Present   Flags = 1 << 0
	Writable  Flags = 1 << 1
	User      Flags = 1 << 2
	NoExecute Flags = 1 << 3

	// Available software bits, mirroring the three reserved bits in
	// spec.md's page-mapping data model.
	avail0 Flags = 1 << 9
	avail1 Flags = 1 << 10
	avail2 Flags = 1 << 11

	// COW is available bit 0: "COW ⇒ writable=false" (spec.md §3).
	COW = avail0
)

// MarkCOW sets the COW bit and clears Writable.
func MarkCOW(f Flags) Flags {
	return (f &^ Writable) | COW
}

// ClearCOW clears the COW bit. Callers that want the page writable
// again must also OR in Writable explicitly; ClearCOW only inverts the
// COW marker itself.
func ClearCOW(f Flags) Flags {
	return f &^ COW
}

// IsCOW reports whether the COW bit is set.
func IsCOW(f Flags) bool {
	return f&COW != 0
}
