package ramfs

import "github.com/kappaos/kernel/pkg/kerrors"

// Lookup finds name among dir's entries.
func (sb *Superblock) Lookup(dir *Inode, name string) (*Inode, error) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	if dir.Type != Directory {
		return nil, kerrors.ErrNotADirectory
	}
	for _, e := range dir.entries {
		if e.name == name {
			return e.inode, nil
		}
	}
	return nil, kerrors.ErrFileNotFound
}

func (sb *Superblock) findLocked(dir *Inode, name string) (int, bool) {
	for i, e := range dir.entries {
		if e.name == name {
			return i, true
		}
	}
	return -1, false
}

// Create adds a new regular-file entry named name inside dir.
func (sb *Superblock) Create(dir *Inode, name string, mode uint32, uid, gid int) (*Inode, error) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	if dir.Type != Directory {
		return nil, kerrors.ErrNotADirectory
	}
	if _, ok := sb.findLocked(dir, name); ok {
		return nil, kerrors.ErrExist
	}

	child := sb.newInode(Regular, mode, uid, gid)
	child.Nlink = 1
	dir.entries = append(dir.entries, direntry{name: name, inode: child})
	return child, nil
}

// Mkdir adds a new subdirectory named name inside dir. Per spec.md
// §4.9: the new directory gets "." and "..", its nlink becomes 2, and
// the parent's nlink is incremented.
func (sb *Superblock) Mkdir(dir *Inode, name string, mode uint32, uid, gid int) (*Inode, error) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	if dir.Type != Directory {
		return nil, kerrors.ErrNotADirectory
	}
	if _, ok := sb.findLocked(dir, name); ok {
		return nil, kerrors.ErrExist
	}

	child := sb.newInode(Directory, mode, uid, gid)
	child.entries = []direntry{
		{name: ".", inode: child},
		{name: "..", inode: dir},
	}
	child.Nlink = 2
	dir.entries = append(dir.entries, direntry{name: name, inode: child})
	dir.Nlink++
	return child, nil
}

// Symlink adds a new symlink named name inside dir pointing at target.
func (sb *Superblock) Symlink(dir *Inode, name, target string, uid, gid int) (*Inode, error) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	if dir.Type != Directory {
		return nil, kerrors.ErrNotADirectory
	}
	if _, ok := sb.findLocked(dir, name); ok {
		return nil, kerrors.ErrExist
	}

	child := sb.newInode(Symlink, 0777, uid, gid)
	child.target = target
	child.Nlink = 1
	dir.entries = append(dir.entries, direntry{name: name, inode: child})
	return child, nil
}

// Unlink removes a non-directory entry named name from dir.
func (sb *Superblock) Unlink(dir *Inode, name string) error {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	if dir.Type != Directory {
		return kerrors.ErrNotADirectory
	}
	i, ok := sb.findLocked(dir, name)
	if !ok {
		return kerrors.ErrFileNotFound
	}
	if dir.entries[i].inode.Type == Directory {
		return kerrors.ErrIsADirectory
	}

	dir.entries[i].inode.Nlink--
	dir.entries = append(dir.entries[:i], dir.entries[i+1:]...)
	return nil
}

// Rmdir removes an empty subdirectory named name from dir. A
// directory is empty for rmdir purposes when it has at most its "."
// and ".." entries (spec.md §3, §4.9).
func (sb *Superblock) Rmdir(dir *Inode, name string) error {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	if dir.Type != Directory {
		return kerrors.ErrNotADirectory
	}
	i, ok := sb.findLocked(dir, name)
	if !ok {
		return kerrors.ErrFileNotFound
	}
	target := dir.entries[i].inode
	if target.Type != Directory {
		return kerrors.ErrNotADirectory
	}

	target.mu.Lock()
	entryCount := len(target.entries)
	target.mu.Unlock()
	if entryCount > 2 {
		return kerrors.ErrDirectoryNotEmpty
	}

	dir.entries = append(dir.entries[:i], dir.entries[i+1:]...)
	dir.Nlink--
	return nil
}

// DirEntry is one (name, stat) pair returned by Readdir.
type DirEntry struct {
	Name string
	Stat Stat
}

// Readdir lists dir's entries in insertion order, including "." and
// "..".
func (sb *Superblock) Readdir(dir *Inode) ([]DirEntry, error) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	if dir.Type != Directory {
		return nil, kerrors.ErrNotADirectory
	}
	out := make([]DirEntry, len(dir.entries))
	for i, e := range dir.entries {
		out[i] = DirEntry{Name: e.name, Stat: e.inode.Stat()}
	}
	return out, nil
}

// Destroy tears down dir's own entry list, matching the destroy
// operation of spec.md §4.9's operation list.
func (sb *Superblock) Destroy(dir *Inode) {
	dir.mu.Lock()
	defer dir.mu.Unlock()
	dir.entries = nil
}
