package ramfs

// Registry maps filesystem-type names to the mount/kill callback pair
// ramfs and tmpfs share (spec.md §4.9: "registered under names 'ramfs'
// and 'tmpfs'; both use the same mount/kill callbacks").
var Registry = map[string]func(maxBytes int64) *Superblock{
	"ramfs": func(maxBytes int64) *Superblock { return Mount("ramfs", maxBytes) },
	"tmpfs": func(maxBytes int64) *Superblock { return Mount("tmpfs", maxBytes) },
}

// MountByName looks up fsType in Registry and mounts a new instance.
func MountByName(fsType string, maxBytes int64) (*Superblock, bool) {
	factory, ok := Registry[fsType]
	if !ok {
		return nil, false
	}
	return factory(maxBytes), true
}
