package mac

import (
	"crypto/hmac"
	"crypto/sha256"
	"sync"

	"github.com/kappaos/kernel/pkg/kconfig"
	"github.com/kappaos/kernel/pkg/kerrors"
	"github.com/kappaos/kernel/pkg/ksync"
)

// MaxKeys bounds the public-key ring (spec.md §4.11).
const MaxKeys = kconfig.MaxKeys

// SigningPolicy controls how an unsigned module is treated.
type SigningPolicy int

const (
	PolicyNone SigningPolicy = iota
	PolicyOptional
	PolicyRequired
	PolicyStrict
)

// PublicKey is one entry in the key ring: an id and the HMAC secret it
// names (spec.md's Non-goals exclude cryptographic correctness, so a
// real but simple HMAC-SHA256 primitive stands in for an asymmetric
// signature scheme).
type PublicKey struct {
	ID     string
	Secret []byte
}

// Signature carries the module hash the signer committed to and the
// MAC computed with the signing key's secret.
type Signature struct {
	KeyID      string
	ModuleHash [32]byte
	MAC        []byte
}

// PublicKeyRing holds up to MaxKeys PublicKey entries.
type PublicKeyRing struct {
	mu   sync.RWMutex
	keys map[string]PublicKey
}

// NewPublicKeyRing returns an empty key ring.
func NewPublicKeyRing() *PublicKeyRing {
	return &PublicKeyRing{keys: make(map[string]PublicKey)}
}

// AddKey installs key, failing once MaxKeys entries are already present.
func (r *PublicKeyRing) AddKey(key PublicKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.keys[key.ID]; !exists && len(r.keys) >= MaxKeys {
		return kerrors.ErrTooManyRules
	}
	r.keys[key.ID] = key
	return nil
}

func (r *PublicKeyRing) find(id string) (PublicKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[id]
	return k, ok
}

// ModuleVerifier enforces a SigningPolicy against a PublicKeyRing
// (spec.md §4.11).
type ModuleVerifier struct {
	Keys   *PublicKeyRing
	Policy SigningPolicy

	verified ksync.Int64
	failed   ksync.Int64
	unsigned ksync.Int64
}

// NewModuleVerifier returns a verifier bound to keys under policy.
func NewModuleVerifier(keys *PublicKeyRing, policy SigningPolicy) *ModuleVerifier {
	return &ModuleVerifier{Keys: keys, Policy: policy}
}

// HashModule computes the SHA-256 digest a Signature commits to.
func HashModule(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Sign computes the Signature a holder of key would attach to data.
func Sign(key PublicKey, data []byte) Signature {
	hash := HashModule(data)
	mac := hmac.New(sha256.New, key.Secret)
	mac.Write(hash[:])
	return Signature{KeyID: key.ID, ModuleHash: hash, MAC: mac.Sum(nil)}
}

// VerifyModule implements spec.md §4.11's exact dispatch: unsigned
// under None always allows; under Optional it allows only with
// CAP_SYS_MODULE; under Required/Strict an unsigned module is always
// denied. A signed module must name a known key, its claimed hash must
// match data's actual hash, and the MAC must verify; any failure
// returns the specific error and increments the failed counter.
func (v *ModuleVerifier) VerifyModule(data []byte, sig *Signature, hasCapSysModule bool) error {
	if sig == nil {
		v.unsigned.Add(1)
		switch v.Policy {
		case PolicyNone:
			return nil
		case PolicyOptional:
			if hasCapSysModule {
				return nil
			}
			return kerrors.ErrSignatureRequired
		default:
			return kerrors.ErrSignatureRequired
		}
	}

	key, ok := v.Keys.find(sig.KeyID)
	if !ok {
		v.failed.Add(1)
		return kerrors.ErrKeyNotFound
	}

	actualHash := HashModule(data)
	if actualHash != sig.ModuleHash {
		v.failed.Add(1)
		return kerrors.ErrHashMismatch
	}

	mac := hmac.New(sha256.New, key.Secret)
	mac.Write(sig.ModuleHash[:])
	expected := mac.Sum(nil)
	if !hmac.Equal(expected, sig.MAC) {
		v.failed.Add(1)
		return kerrors.ErrInvalidSignature
	}

	v.verified.Add(1)
	return nil
}

// Verified, Failed, and Unsigned return the verifier's lifetime counters.
func (v *ModuleVerifier) Verified() int64 { return v.verified.Load() }
func (v *ModuleVerifier) Failed() int64   { return v.failed.Load() }
func (v *ModuleVerifier) Unsigned() int64 { return v.unsigned.Load() }
