package service

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptchaChecker_Verify(t *testing.T) {
	challenge, err := renderCaptcha("challenge-1", []byte{4, 8, 2, 9, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, CaptchaDigest("482913"), challenge.Digest)

	checker := CaptchaChecker{}
	assert.True(t, checker.Verify("482913", challenge.Digest))
	assert.False(t, checker.Verify("482914", challenge.Digest))
	assert.False(t, checker.Verify("", challenge.Digest))
	assert.False(t, checker.Verify("482913", ""))
}

func TestNewCaptchaChallenge(t *testing.T) {
	challenge, err := NewCaptchaChallenge()
	require.NoError(t, err)

	assert.NotEmpty(t, challenge.ID)
	assert.Len(t, challenge.Digest, 64)

	img, err := png.Decode(bytes.NewReader(challenge.PNG))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())

	other, err := NewCaptchaChallenge()
	require.NoError(t, err)
	assert.NotEqual(t, challenge.ID, other.ID)
}

func TestCSRFGuard(t *testing.T) {
	guard := NewCSRFGuard("csrf-secret")
	token := guard.Token("session-1")

	assert.True(t, guard.Verify("session-1", token))
	assert.False(t, guard.Verify("session-2", token))
	assert.False(t, guard.Verify("session-1", ""))
	assert.False(t, guard.Verify("", token))
	assert.False(t, NewCSRFGuard("other-secret").Verify("session-1", token))
}
