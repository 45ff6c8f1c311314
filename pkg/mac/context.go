// Package mac implements the mandatory-access-control core
// (component M): security contexts, the access-vector cache, type
// enforcement, AppArmor-style profiles, and module signature
// verification. There is no direct teacher file; grounded on the same
// ring-buffer (AVC) and RWMutex (TE/keyring) idioms used elsewhere in
// this module, generalized to the exact algorithms of spec.md §4.11.
package mac

import (
	"strings"

	"github.com/kappaos/kernel/pkg/kerrors"
)

// SecurityContext is {user[32], role[32], domain[32], level,
// categories} (spec.md §3). Match between two contexts for access
// control purposes is domain-only.
type SecurityContext struct {
	User       string
	Role       string
	Domain     string
	Level      int
	Categories uint32
}

// ParseSecurityContext accepts "user:role:domain:level" and writes the
// first three colon-separated fields into User/Role/Domain; level is
// parsed if present, else left 0 (spec.md §4.11).
func ParseSecurityContext(s string) (SecurityContext, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return SecurityContext{}, kerrors.ErrInvalidArgument
	}
	ctx := SecurityContext{User: parts[0], Role: parts[1], Domain: parts[2]}
	if len(parts) >= 4 {
		var level int
		for _, c := range parts[3] {
			if c < '0' || c > '9' {
				return SecurityContext{}, kerrors.ErrInvalidArgument
			}
			level = level*10 + int(c-'0')
		}
		ctx.Level = level
	}
	return ctx, nil
}

// ObjectClass enumerates the kinds of object an AccessVector applies to.
type ObjectClass int

const (
	ClassFile ObjectClass = iota
	ClassDir
	ClassProcess
	ClassSocket
	ClassCapability
)

// AccessVector is a 32-bit packed permission record (spec.md §3).
type AccessVector uint32

const (
	PermRead AccessVector = 1 << iota
	PermWrite
	PermExecute
	PermAppend
	PermCreate
	PermDelete
	PermGetattr
	PermSetattr
	PermLock
	PermRelabelFrom
	PermRelabelTo
	PermTransition
)
