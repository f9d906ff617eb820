package repository

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/matzehuels/mavenresolve/pkg/errors"
)

// Auth is the credential attached to a remote repository or a deployment:
// one of NoAuth, BasicAuth or KeyAuth. Implementations never print secrets.
type Auth interface {
	fmt.Stringer
	slog.LogValuer
	isAuth()
}

// NoAuth sends no credentials.
type NoAuth struct{}

// BasicAuth sends HTTP basic credentials. For s3 remotes Username is the
// access key ID and Password the secret access key.
type BasicAuth struct {
	Username string
	Password string
}

// KeyAuth signs uploads with an SSH private key. PublicKey is the path to
// the public key; the private key is read from the same path without the
// ".pub" suffix and decrypted with Passphrase.
type KeyAuth struct {
	PublicKey  string
	Passphrase string
}

func (NoAuth) isAuth()    {}
func (BasicAuth) isAuth() {}
func (KeyAuth) isAuth()   {}

func (NoAuth) String() string { return "none" }

func (a BasicAuth) String() string { return "basic(" + a.Username + ":***)" }

func (a KeyAuth) String() string { return "key(" + a.PublicKey + ")" }

// LogValue implements slog.LogValuer.
func (a NoAuth) LogValue() slog.Value { return slog.StringValue(a.String()) }

// LogValue implements slog.LogValuer.
func (a BasicAuth) LogValue() slog.Value { return slog.StringValue(a.String()) }

// LogValue implements slog.LogValuer.
func (a KeyAuth) LogValue() slog.Value { return slog.StringValue(a.String()) }

// GoString keeps %#v from printing the password.
func (a BasicAuth) GoString() string { return "repository.BasicAuth{" + a.String() + "}" }

// GoString keeps %#v from printing the passphrase.
func (a KeyAuth) GoString() string { return "repository.KeyAuth{" + a.String() + "}" }

// NewAuth picks the credential variant from configuration fields. A public
// key wins over a username.
func NewAuth(username, password, publicKey, passphrase string) Auth {
	switch {
	case publicKey != "":
		return KeyAuth{PublicKey: publicKey, Passphrase: passphrase}
	case username != "":
		return BasicAuth{Username: username, Password: password}
	default:
		return NoAuth{}
	}
}

// PrivateKeyPath returns the path of the private key paired with PublicKey.
func (a KeyAuth) PrivateKeyPath() string {
	return strings.TrimSuffix(a.PublicKey, ".pub")
}

// Signer loads and decrypts the private key and checks that it matches the
// public key.
func (a KeyAuth) Signer() (ssh.Signer, error) {
	pemBytes, err := os.ReadFile(a.PrivateKeyPath())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuthenticationFailed, err, "read private key")
	}
	var signer ssh.Signer
	if a.Passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pemBytes, []byte(a.Passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(pemBytes)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuthenticationFailed, err, "decrypt private key")
	}

	if a.PublicKey != a.PrivateKeyPath() {
		pubBytes, err := os.ReadFile(a.PublicKey)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAuthenticationFailed, err, "read public key")
		}
		pub, _, _, _, err := ssh.ParseAuthorizedKey(pubBytes)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeAuthenticationFailed, err, "parse public key")
		}
		if ssh.FingerprintSHA256(pub) != ssh.FingerprintSHA256(signer.PublicKey()) {
			return nil, errors.New(errors.ErrCodeAuthenticationFailed, "public key %s does not match private key", a.PublicKey)
		}
	}
	return signer, nil
}
