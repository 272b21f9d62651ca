package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecrets = Secrets{Link: "link-secret", Session: "session-secret"}

func TestLinkCodecRoundTrip(t *testing.T) {
	c := NewLinkCodec(testSecrets, 10*time.Minute)

	for _, purpose := range []Purpose{PurposeVerify, PurposeLogin} {
		tok, err := c.Issue("ada@example.com", purpose)
		require.NoError(t, err)

		subject, err := c.Validate(tok, purpose)
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", subject)
	}
}

func TestLinkCodecPurposeMismatch(t *testing.T) {
	c := NewLinkCodec(testSecrets, 10*time.Minute)

	tok, err := c.Issue("ada@example.com", PurposeLogin)
	require.NoError(t, err)

	_, err = c.Validate(tok, PurposeVerify)
	assert.ErrorIs(t, err, ErrPurposeMismatch)

	tok, err = c.Issue("ada@example.com", PurposeVerify)
	require.NoError(t, err)

	_, err = c.Validate(tok, PurposeLogin)
	assert.ErrorIs(t, err, ErrPurposeMismatch)
}

func TestLinkCodecExpired(t *testing.T) {
	c := NewLinkCodec(testSecrets, -time.Minute)

	tok, err := c.Issue("ada@example.com", PurposeVerify)
	require.NoError(t, err)

	_, err = c.Validate(tok, PurposeVerify)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestLinkCodecExpiryCheckedBeforePurpose(t *testing.T) {
	c := NewLinkCodec(testSecrets, -time.Minute)

	tok, err := c.Issue("ada@example.com", PurposeLogin)
	require.NoError(t, err)

	// An expired token presented to the wrong flow reports expiry,
	// not purpose: purpose is only examined on live tokens.
	_, err = c.Validate(tok, PurposeVerify)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestLinkCodecTamper(t *testing.T) {
	c := NewLinkCodec(testSecrets, 10*time.Minute)

	tok, err := c.Issue("ada@example.com", PurposeVerify)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	// Mutate one character of the payload and of the signature in turn.
	for i, part := range parts[1:] {
		mutated := make([]string, 3)
		copy(mutated, parts)
		mutated[i+1] = flipChar(part)
		_, err := c.Validate(strings.Join(mutated, "."), PurposeVerify)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}

func TestLinkCodecWrongKey(t *testing.T) {
	issuer := NewLinkCodec(Secrets{Link: "other-secret"}, 10*time.Minute)
	c := NewLinkCodec(testSecrets, 10*time.Minute)

	tok, err := issuer.Issue("ada@example.com", PurposeVerify)
	require.NoError(t, err)

	_, err = c.Validate(tok, PurposeVerify)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestLinkCodecMalformed(t *testing.T) {
	c := NewLinkCodec(testSecrets, 10*time.Minute)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := c.Validate(tok, PurposeVerify)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestSessionCodecRoundTrip(t *testing.T) {
	c := NewSessionCodec(testSecrets, 2*time.Hour)

	tok, exp, err := c.Issue("ada@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), exp, 5*time.Second)

	subject, err := c.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", subject)
}

func TestSessionCodecExpired(t *testing.T) {
	c := NewSessionCodec(testSecrets, -time.Minute)

	tok, _, err := c.Issue("ada@example.com")
	require.NoError(t, err)

	_, err = c.Validate(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenFamiliesUseIndependentSecrets(t *testing.T) {
	link := NewLinkCodec(testSecrets, 10*time.Minute)
	session := NewSessionCodec(testSecrets, 2*time.Hour)

	// A link token must not validate as a session token even when both
	// codecs are built from the same Secrets value.
	tok, err := link.Issue("ada@example.com", PurposeLogin)
	require.NoError(t, err)
	_, err = session.Validate(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	stok, _, err := session.Issue("ada@example.com")
	require.NoError(t, err)
	_, err = link.Validate(stok, PurposeLogin)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func flipChar(s string) string {
	b := []byte(s)
	if b[0] == 'A' {
		b[0] = 'B'
	} else {
		b[0] = 'A'
	}
	return string(b)
}
