package repository

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"

	"golang.org/x/crypto/ssh"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Headers carrying a signed upload.
const (
	HeaderSignature    = "X-Signature"
	HeaderSignatureKey = "X-Signature-Key"
)

// SigningPayload is the byte string signed for an upload:
// "METHOD path\n" followed by the hex SHA-256 of the body.
func SigningPayload(method, path string, body []byte) []byte {
	sum := sha256.Sum256(body)
	return []byte(method + " " + path + "\n" + hex.EncodeToString(sum[:]))
}

// Sign sets the signature headers on req.
func Sign(req *http.Request, signer ssh.Signer, path string, body []byte) error {
	sig, err := signer.Sign(rand.Reader, SigningPayload(req.Method, path, body))
	if err != nil {
		return errors.Wrap(errors.ErrCodeAuthenticationFailed, err, "sign %s", path)
	}
	req.Header.Set(HeaderSignature, base64.StdEncoding.EncodeToString(ssh.Marshal(sig)))
	req.Header.Set(HeaderSignatureKey, ssh.FingerprintSHA256(signer.PublicKey()))
	return nil
}

// Verify checks the signature headers of req against one of keys and
// returns the key that signed it.
func Verify(req *http.Request, keys []ssh.PublicKey, path string, body []byte) (ssh.PublicKey, error) {
	raw := req.Header.Get(HeaderSignature)
	if raw == "" {
		return nil, errors.New(errors.ErrCodeAuthenticationFailed, "missing %s header", HeaderSignature)
	}
	blob, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuthenticationFailed, err, "decode signature")
	}
	var sig ssh.Signature
	if err := ssh.Unmarshal(blob, &sig); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuthenticationFailed, err, "parse signature")
	}
	fp := req.Header.Get(HeaderSignatureKey)
	payload := SigningPayload(req.Method, path, body)
	for _, k := range keys {
		if fp != "" && ssh.FingerprintSHA256(k) != fp {
			continue
		}
		if k.Verify(payload, &sig) == nil {
			return k, nil
		}
	}
	return nil, errors.New(errors.ErrCodeAuthenticationFailed, "signature does not match any authorized key")
}
