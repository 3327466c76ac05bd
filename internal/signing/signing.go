// Package signing produces durable attachment links. A link carries an HMAC of
// the object key so the file endpoint can serve it without a session.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidLink is returned for links that were not issued by this service
// or whose signature does not match.
var ErrInvalidLink = errors.New("invalid attachment link")

// Signer generates and validates HMAC signatures.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer.
func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

// Sign returns the hex signature of an object key.
func (s *Signer) Sign(key string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate compares the provided signature with the expected one in constant
// time.
func (s *Signer) Validate(key, signature string) bool {
	return hmac.Equal([]byte(s.Sign(key)), []byte(signature))
}

// Links builds and parses links of the form {base}/files/{key}?sig={hmac}.
type Links struct {
	base   *url.URL
	signer *Signer
}

// NewLinks parses base, e.g. "http://localhost:8080/api".
func NewLinks(base string, signer *Signer) (*Links, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("link base must be an absolute URL")
	}
	return &Links{base: u, signer: signer}, nil
}

// Link returns the durable download link of key.
func (l *Links) Link(key string) string {
	u := *l.base
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	u.Path = l.base.Path + "/files/" + key
	u.RawPath = l.base.EscapedPath() + "/files/" + strings.Join(segments, "/")
	u.RawQuery = url.Values{"sig": {l.signer.Sign(key)}}.Encode()
	return u.String()
}

// Key recovers and verifies the object key of a link.
func (l *Links) Key(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", ErrInvalidLink
	}
	if u.Host != l.base.Host {
		return "", ErrInvalidLink
	}
	return l.Verify(u.Path, u.Query().Get("sig"))
}

// Verify checks a request path under the base, e.g. /api/files/pdfs/u/a.pdf,
// against its signature and returns the object key.
func (l *Links) Verify(path, sig string) (string, error) {
	prefix := l.base.Path + "/files/"
	if !strings.HasPrefix(path, prefix) {
		return "", ErrInvalidLink
	}
	key := strings.TrimPrefix(path, prefix)
	if key == "" || !l.signer.Validate(key, sig) {
		return "", ErrInvalidLink
	}
	return key, nil
}
