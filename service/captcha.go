package service

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/dchest/captcha"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

const captchaLength = captcha.DefaultLen

// CaptchaChecker compares a submitted captcha against the digest of the
// challenge issued to the session.
type CaptchaChecker struct{}

// Verify reports whether token hashes to challengeDigest. An empty token or
// an empty digest never verifies.
func (CaptchaChecker) Verify(token, challengeDigest string) bool {
	if token == "" || challengeDigest == "" {
		return false
	}
	computed := CaptchaDigest(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challengeDigest)) == 1
}

// CaptchaDigest is the one-way digest stored for a challenge code.
func CaptchaDigest(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// CaptchaChallenge is what a client receives: an id and a rendered PNG.
// The answer itself only survives as Digest on the server side.
type CaptchaChallenge struct {
	ID     string
	PNG    []byte
	Digest string
}

// NewCaptchaChallenge draws random digits and renders them as a distorted
// image.
func NewCaptchaChallenge() (*CaptchaChallenge, error) {
	return renderCaptcha(uuid.NewString(), captcha.RandomDigits(captchaLength))
}

func renderCaptcha(id string, digits []byte) (*CaptchaChallenge, error) {
	var buf bytes.Buffer
	img := captcha.NewImage(id, digits, captcha.StdWidth, captcha.StdHeight)
	if _, err := img.WriteTo(&buf); err != nil {
		return nil, oops.Code("CAPTCHA_RENDER_FAILED").Wrap(err)
	}
	return &CaptchaChallenge{ID: id, PNG: buf.Bytes(), Digest: CaptchaDigest(digitsCode(digits))}, nil
}

// digitsCode spells captcha digits (values 0-9) the way users type them.
func digitsCode(digits []byte) string {
	code := make([]byte, len(digits))
	for i, d := range digits {
		code[i] = '0' + d
	}
	return string(code)
}
