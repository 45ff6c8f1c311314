package mac

import (
	"testing"

	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecurityContext(t *testing.T) {
	ctx, err := ParseSecurityContext("alice:sysadm_r:httpd_t:5")
	require.NoError(t, err)
	assert.Equal(t, "alice", ctx.User)
	assert.Equal(t, "sysadm_r", ctx.Role)
	assert.Equal(t, "httpd_t", ctx.Domain)
	assert.Equal(t, 5, ctx.Level)

	_, err = ParseSecurityContext("bad")
	assert.ErrorIs(t, err, kerrors.ErrInvalidArgument)
}

func TestAVCHitMiss(t *testing.T) {
	avc := NewAVC()
	_, ok := avc.Lookup("httpd_t", "etc_t", ClassFile)
	assert.False(t, ok)
	assert.Equal(t, int64(1), avc.Misses())

	id := avc.Insert("httpd_t", "etc_t", ClassFile, PermRead)
	assert.NotEmpty(t, id, "insert must tag the entry with a correlation id")
	v, ok := avc.Lookup("httpd_t", "etc_t", ClassFile)
	assert.True(t, ok)
	assert.Equal(t, PermRead, v)
	assert.Equal(t, int64(1), avc.Hits())
}

func TestAVCInsertCorrelationIDsAreUnique(t *testing.T) {
	avc := NewAVC()
	id1 := avc.Insert("httpd_t", "etc_t", ClassFile, PermRead)
	id2 := avc.Insert("httpd_t", "var_t", ClassFile, PermWrite)
	assert.NotEqual(t, id1, id2)
}

// S6-adjacent: TE default-deny with a narrow allow rule.
func TestTypeEnforcementDefaultDeny(t *testing.T) {
	te := NewTypeEnforcement()
	require.NoError(t, te.AddRule(TERule{
		SourceDomain: "httpd_t", TargetDomain: "httpd_content_t",
		Class: ClassFile, Allowed: PermRead | PermGetattr,
	}))

	assert.True(t, te.CheckAccess("httpd_t", "httpd_content_t", ClassFile, PermRead))
	assert.False(t, te.CheckAccess("httpd_t", "httpd_content_t", ClassFile, PermWrite))
	assert.False(t, te.CheckAccess("httpd_t", "shadow_t", ClassFile, PermRead))
}

func TestProfileEnforceVsComplain(t *testing.T) {
	enforce := NewProfile("enforced", Enforce)
	enforce.AddRule(ProfileRule{Path: "/etc/passwd", Access: PermRead})

	allowed, audited := enforce.Check("/etc/passwd", PermRead)
	assert.True(t, allowed)
	assert.False(t, audited)

	allowed, audited = enforce.Check("/etc/shadow", PermRead)
	assert.False(t, allowed)
	assert.False(t, audited)

	complain := NewProfile("complaining", Complain)
	allowed, audited = complain.Check("/etc/shadow", PermRead)
	assert.True(t, allowed, "complain mode allows but audits")
	assert.True(t, audited)
	assert.Equal(t, int64(1), complain.AuditCount())
}

func TestModuleVerifierSignedRoundTrip(t *testing.T) {
	ring := NewPublicKeyRing()
	key := PublicKey{ID: "k1", Secret: []byte("s3cr3t")}
	require.NoError(t, ring.AddKey(key))

	v := NewModuleVerifier(ring, PolicyRequired)
	data := []byte("module bytes")
	sig := Sign(key, data)

	require.NoError(t, v.VerifyModule(data, &sig, false))
	assert.Equal(t, int64(1), v.Verified())

	tampered := append([]byte(nil), data...)
	tampered[0] ^= 0xFF
	err := v.VerifyModule(tampered, &sig, false)
	assert.ErrorIs(t, err, kerrors.ErrHashMismatch)
}

func TestModuleVerifierPolicies(t *testing.T) {
	ring := NewPublicKeyRing()

	none := NewModuleVerifier(ring, PolicyNone)
	require.NoError(t, none.VerifyModule([]byte("x"), nil, false))

	optional := NewModuleVerifier(ring, PolicyOptional)
	assert.ErrorIs(t, optional.VerifyModule([]byte("x"), nil, false), kerrors.ErrSignatureRequired)
	require.NoError(t, optional.VerifyModule([]byte("x"), nil, true))

	required := NewModuleVerifier(ring, PolicyRequired)
	assert.ErrorIs(t, required.VerifyModule([]byte("x"), nil, true), kerrors.ErrSignatureRequired)
}

func TestModuleVerifierUnknownKey(t *testing.T) {
	ring := NewPublicKeyRing()
	v := NewModuleVerifier(ring, PolicyRequired)
	sig := Signature{KeyID: "ghost"}
	err := v.VerifyModule([]byte("x"), &sig, false)
	assert.ErrorIs(t, err, kerrors.ErrKeyNotFound)
}
