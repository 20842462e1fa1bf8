package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testParams = Argon2Params{Time: 1, Memory: 64, Threads: 1, KeyLen: 16, SaltLen: 8}

func newTestHasher() *Argon2Hasher { return NewArgon2Hasher(testParams) }

func TestArgon2Hasher_RoundTrip(t *testing.T) {
	h := newTestHasher()

	for _, pw := range []string{"pw1", "", "correct horse battery staple", "пароль"} {
		digest, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=64,t=1,p=1$"), digest)
		assert.True(t, h.Verify(pw, digest), "password %q must verify", pw)
		assert.False(t, h.Verify(pw+"x", digest))
	}
}

func TestArgon2Hasher_SaltsEachHash(t *testing.T) {
	h := newTestHasher()
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestArgon2Hasher_DefaultParams(t *testing.T) {
	h := NewArgon2Hasher(DefaultArgon2Params)
	digest, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.Contains(t, digest, "m=65536,t=1,p=4")
	assert.True(t, h.Verify("pw1", digest))
}

func TestArgon2Hasher_InvalidParams(t *testing.T) {
	_, err := NewArgon2Hasher(Argon2Params{}).Hash("x")
	assert.Error(t, err)
}

func TestArgon2Hasher_MalformedDigests(t *testing.T) {
	h := newTestHasher()
	good, err := h.Hash("pw")
	require.NoError(t, err)
	parts := strings.Split(good, "$")

	tests := map[string]string{
		"empty":          "",
		"plain text":     "pw",
		"wrong algo":     strings.Replace(good, "argon2id", "argon2i", 1),
		"wrong version":  strings.Replace(good, "v=19", "v=16", 1),
		"missing field":  strings.Join(parts[:5], "$"),
		"bad params":     strings.Replace(good, "m=64,t=1,p=1", "m=x,t=1,p=1", 1),
		"zero threads":   strings.Replace(good, "p=1", "p=0", 1),
		"huge memory":    strings.Replace(good, "m=64", "m=99999999", 1),
		"bad salt b64":   strings.Join([]string{"", parts[1], parts[2], parts[3], "!!!", parts[5]}, "$"),
		"bad hash b64":   strings.Join([]string{"", parts[1], parts[2], parts[3], parts[4], "!!!"}, "$"),
		"empty hash":     strings.Join([]string{"", parts[1], parts[2], parts[3], parts[4], ""}, "$"),
		"bcrypt garbage": "$2b$10$notreallyahash",
	}
	for name, digest := range tests {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("pw", digest))
			})
		})
	}
}

func TestArgon2Hasher_VerifiesLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	require.NoError(t, err)

	h := newTestHasher()
	assert.True(t, h.Verify("pw1", string(legacy)))
	assert.False(t, h.Verify("pw2", string(legacy)))
}
