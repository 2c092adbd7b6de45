package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("5511999999999@c.us")
	b := Fingerprint("5511999999999@c.us")
	assert.Equal(t, a, b)
	assert.Equal(t, "b60552d806ee4dd23d8831a12e328e48d198d4274aaf57085afb59d005857eb6", a)
}

func TestFingerprintLength(t *testing.T) {
	for _, id := range []string{"alice", "bob", "5511999999999@c.us", "x"} {
		assert.Len(t, Fingerprint(id), 64)
	}
}

func TestFingerprintDistinctInputs(t *testing.T) {
	seen := make(map[string]string)
	for _, id := range []string{"alice", "Alice", "alice ", "bob", "5511999999999@c.us", "5511999999998@c.us"} {
		fp := Fingerprint(id)
		prev, dup := seen[fp]
		assert.False(t, dup, "fingerprint collision between %q and %q", prev, id)
		seen[fp] = id
	}
}

func TestFingerprintKnownVector(t *testing.T) {
	assert.Equal(t, "2bd806c97f0e00af1a1fc3328fa763a9269723c8db8fac4f93af71db186d6e90", Fingerprint("alice"))
}
