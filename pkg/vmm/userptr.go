// User pointer validation, bounded copies, and path sanitization
// (component E, spec.md §4.4). Grounded on vm.Vm_t.Userdmap8_inner's
// page-walk-then-copy discipline (vm/as.go).
package vmm

import (
	"bytes"
	"strings"

	"github.com/kappaos/kernel/pkg/kconfig"
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/pmm"
)

const (
	// CanonicalUserLimit is the exclusive upper bound of the canonical
	// x86-64 user address range.
	CanonicalUserLimit = kconfig.CanonicalUserLimit

	MaxReadWriteSize = kconfig.MaxReadWriteSize // 2 GiB - 4 KiB
	MaxPathLen       = kconfig.MaxPathLen
	MaxArgLen        = kconfig.MaxArgLen
)

// ValidateUserPointer rejects addr == 0, addr outside the canonical
// user range, and addr+len overflow, then walks the VMA list covering
// [addr, addr+len): every byte must fall inside a VMA with the
// required permission. Contiguity across adjacent VMAs is permitted.
func (as *AddressSpace) ValidateUserPointer(addr, length uintptr, write bool) error {
	if addr == 0 {
		return kerrors.ErrInvalidAddress
	}
	if addr >= CanonicalUserLimit {
		return kerrors.ErrInvalidAddress
	}
	end := addr + length
	if end < addr { // overflow
		return kerrors.ErrInvalidAddress
	}
	if end > CanonicalUserLimit {
		return kerrors.ErrInvalidAddress
	}

	as.lock.Lock()
	defer as.lock.Unlock()

	cur := addr
	for cur < end {
		v, _ := as.findVmaLocked(cur)
		if v == nil {
			return kerrors.ErrAccessDenied
		}
		if write && !v.Perms.Write {
			return kerrors.ErrAccessDenied
		}
		if !write && !v.Perms.Read {
			return kerrors.ErrAccessDenied
		}
		cur = v.End
	}
	return nil
}

// CopyFromUser copies len(dst) bytes from user address uva into dst,
// enforcing MaxReadWriteSize and permission checks.
func (as *AddressSpace) CopyFromUser(dst []byte, uva uintptr) error {
	if len(dst) > MaxReadWriteSize {
		return kerrors.ErrBufferTooSmall
	}
	if err := as.ValidateUserPointer(uva, uintptr(len(dst)), false); err != nil {
		return err
	}
	return as.rawCopy(dst, uva, false)
}

// CopyToUser copies src into the user address space starting at uva,
// enforcing MaxReadWriteSize and permission checks.
func (as *AddressSpace) CopyToUser(uva uintptr, src []byte) error {
	if len(src) > MaxReadWriteSize {
		return kerrors.ErrBufferTooSmall
	}
	if err := as.ValidateUserPointer(uva, uintptr(len(src)), true); err != nil {
		return err
	}
	return as.rawCopy(src, uva, true)
}

// rawCopy moves buf to/from user memory, page by page, using the
// address space's mapper/allocator to resolve each page's backing
// bytes. The caller has already validated permissions; this method
// only needs present, mapped pages.
func (as *AddressSpace) rawCopy(buf []byte, uva uintptr, toUser bool) error {
	as.lock.Lock()
	defer as.lock.Unlock()

	remaining := buf
	va := uva
	for len(remaining) > 0 {
		pageVA := va &^ (uintptr(pmm.PageSize) - 1)
		off := va - pageVA
		frame, ok := as.Mapper.Translate(pageVA)
		if !ok {
			return kerrors.ErrNotMapped
		}
		page := as.Allocator.Bytes(frame)
		var n int
		if toUser {
			n = copy(page[off:], remaining)
		} else {
			n = copy(remaining, page[off:])
		}
		remaining = remaining[n:]
		va += uintptr(n)
	}
	return nil
}

// CopyStringFromUser copies a NUL-terminated string from user memory
// starting at uva, up to lenmax bytes, mirroring Vm_t.Userstr.
func (as *AddressSpace) CopyStringFromUser(uva uintptr, lenmax int) (string, error) {
	if lenmax <= 0 || lenmax > MaxArgLen {
		return "", kerrors.ErrInvalidArgument
	}
	var out []byte
	for i := 0; i < lenmax; i++ {
		var b [1]byte
		if err := as.CopyFromUser(b[:], uva+uintptr(i)); err != nil {
			return "", err
		}
		if b[0] == 0 {
			return string(out), nil
		}
		out = append(out, b[0])
	}
	return "", kerrors.ErrInvalidArgument
}

// SanitizePath implements spec.md §4.4's path sanitizer: rejects empty
// paths, paths longer than MaxPathLen, paths containing a NUL byte,
// empty components (double slash), and any ".." component. Absolute
// paths are rejected unless euid is 0.
func SanitizePath(path string, euid int) error {
	if path == "" {
		return kerrors.ErrInvalidPath
	}
	if len(path) > MaxPathLen {
		return kerrors.ErrInvalidPath
	}
	if bytes.IndexByte([]byte(path), 0) >= 0 {
		return kerrors.ErrInvalidPath
	}
	rest := path
	if strings.HasPrefix(path, "/") {
		if euid != 0 {
			return kerrors.ErrAccessDenied
		}
		rest = path[1:]
	}
	if rest == "" {
		return kerrors.ErrInvalidPath
	}
	for _, comp := range strings.Split(rest, "/") {
		if comp == "" {
			return kerrors.ErrInvalidPath
		}
		if comp == ".." {
			return kerrors.ErrInvalidPath
		}
	}
	return nil
}
