package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the tests fast
var testParams = Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestHashPassword_RoundTrip(t *testing.T) {
	h := HashPassword([]byte("secret-password1"), testParams)
	require.True(t, strings.HasPrefix(h, "argon2id$v=19$m=1024,t=1,p=1$"), h)

	ok, err := VerifyPassword([]byte("secret-password1"), h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword([]byte("secret-password2"), h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1 := HashPassword([]byte("same"), testParams)
	h2 := HashPassword([]byte("same"), testParams)

	// одинаковый пароль -> разные хеши из-за соли
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, bad := range []string{
		"",
		"plain-sha256-hex",
		"bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
		"argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	} {
		_, err := VerifyPassword([]byte("pw"), bad)
		assert.ErrorIs(t, err, ErrMalformedHash, bad)
	}
}

func TestDummyHash_NeverMatchesEmpty(t *testing.T) {
	h := DummyHash(testParams)
	ok, err := VerifyPassword([]byte(""), h)
	require.NoError(t, err)
	assert.False(t, ok)
}
