package repository

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/ssh"

	"github.com/matzehuels/mavenresolve/pkg/coord"
	"github.com/matzehuels/mavenresolve/pkg/errors"
)

func TestNewAuth(t *testing.T) {
	tests := []struct {
		name                string
		user, pass, pub, pp string
		want                Auth
	}{
		{"none", "", "", "", "", NoAuth{}},
		{"basic", "deployer", "s3cret", "", "", BasicAuth{Username: "deployer", Password: "s3cret"}},
		{"key wins", "deployer", "s3cret", "/k/id.pub", "pp", KeyAuth{PublicKey: "/k/id.pub", Passphrase: "pp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewAuth(tt.user, tt.pass, tt.pub, tt.pp); got != tt.want {
				t.Errorf("NewAuth() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthNeverPrintsSecrets(t *testing.T) {
	auths := []Auth{
		BasicAuth{Username: "deployer", Password: "hunter2"},
		KeyAuth{PublicKey: "/k/id.pub", Passphrase: "hunter2"},
	}
	for _, a := range auths {
		var logged bytes.Buffer
		slog.New(slog.NewTextHandler(&logged, nil)).Info("auth", "auth", a)

		for _, s := range []string{
			fmt.Sprint(a), fmt.Sprintf("%v", a), fmt.Sprintf("%+v", a), fmt.Sprintf("%#v", a),
			fmt.Sprint(Remote{ID: "r", URL: "https://x", Auth: a}), logged.String(),
		} {
			if strings.Contains(s, "hunter2") {
				t.Errorf("secret leaked: %s", s)
			}
		}
	}
}

// writeKeyPair stores an ed25519 key pair as <dir>/id_ed25519{,.pub}.
func writeKeyPair(t *testing.T, dir, passphrase string) (pubPath string, pub ssh.PublicKey) {
	t.Helper()
	pk, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	var block *pem.Block
	if passphrase != "" {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(sk, "test", []byte(passphrase))
	} else {
		block, err = ssh.MarshalPrivateKey(sk, "test")
	}
	if err != nil {
		t.Fatal(err)
	}
	pub, err = ssh.NewPublicKey(pk)
	if err != nil {
		t.Fatal(err)
	}
	priv := filepath.Join(dir, "id_ed25519")
	if err := os.WriteFile(priv, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	pubPath = priv + ".pub"
	if err := os.WriteFile(pubPath, ssh.MarshalAuthorizedKey(pub), 0o644); err != nil {
		t.Fatal(err)
	}
	return pubPath, pub
}

func TestKeyAuthSigner(t *testing.T) {
	dir := t.TempDir()
	pubPath, pub := writeKeyPair(t, dir, "open sesame")

	signer, err := KeyAuth{PublicKey: pubPath, Passphrase: "open sesame"}.Signer()
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	if ssh.FingerprintSHA256(signer.PublicKey()) != ssh.FingerprintSHA256(pub) {
		t.Error("signer does not match public key")
	}

	t.Run("wrong passphrase", func(t *testing.T) {
		_, err := KeyAuth{PublicKey: pubPath, Passphrase: "nope"}.Signer()
		if !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
			t.Errorf("err = %v, want AUTHENTICATION_FAILED", err)
		}
	})
	t.Run("missing key", func(t *testing.T) {
		_, err := KeyAuth{PublicKey: filepath.Join(dir, "absent.pub")}.Signer()
		if !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
			t.Errorf("err = %v, want AUTHENTICATION_FAILED", err)
		}
	})
	t.Run("mismatched pair", func(t *testing.T) {
		other := t.TempDir()
		otherPub, _ := writeKeyPair(t, other, "")
		data, _ := os.ReadFile(otherPub)
		_ = os.WriteFile(pubPath, data, 0o644)
		_, err := KeyAuth{PublicKey: pubPath, Passphrase: "open sesame"}.Signer()
		if !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
			t.Errorf("err = %v, want AUTHENTICATION_FAILED", err)
		}
	})
}

func TestSignVerify(t *testing.T) {
	pubPath, pub := writeKeyPair(t, t.TempDir(), "")
	signer, err := KeyAuth{PublicKey: pubPath}.Signer()
	if err != nil {
		t.Fatal(err)
	}
	body := []byte("artifact bytes")
	path := "g/a/1.0/a-1.0.jar"

	req := httptest.NewRequest("PUT", "/"+path, bytes.NewReader(body))
	if err := Sign(req, signer, path, body); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	got, err := Verify(req, []ssh.PublicKey{pub}, path, body)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ssh.FingerprintSHA256(got) != ssh.FingerprintSHA256(pub) {
		t.Error("Verify returned wrong key")
	}

	if _, err := Verify(req, []ssh.PublicKey{pub}, path, []byte("tampered")); !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
		t.Errorf("tampered body: err = %v", err)
	}
	if _, err := Verify(req, []ssh.PublicKey{pub}, "g/a/1.0/other.jar", body); !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
		t.Errorf("other path: err = %v", err)
	}
	_, stranger := writeKeyPair(t, t.TempDir(), "")
	if _, err := Verify(req, []ssh.PublicKey{stranger}, path, body); !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
		t.Errorf("unknown key: err = %v", err)
	}
	unsigned := httptest.NewRequest("PUT", "/"+path, nil)
	if _, err := Verify(unsigned, []ssh.PublicKey{pub}, path, body); !errors.Is(err, errors.ErrCodeAuthenticationFailed) {
		t.Errorf("unsigned: err = %v", err)
	}
}

func TestRemoteURLCredentials(t *testing.T) {
	repo, srv := newFakeRepo(t)
	repo.username, repo.password = "deployer", "s3cr3t"
	publish(repo, "g/a/1.0/a-1.0.jar", "jar")

	var logged bytes.Buffer
	m := newTestManager(t, Options{Logger: log.NewWithOptions(&logged, log.Options{Level: log.DebugLevel})})
	withCreds := strings.Replace(srv.URL, "http://", "http://deployer:s3cr3t@", 1)
	r, err := m.AddRemote(withCreds, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.URL != srv.URL {
		t.Errorf("URL = %s, want %s", r.URL, srv.URL)
	}
	if r.Auth != (BasicAuth{Username: "deployer", Password: "s3cr3t"}) {
		t.Errorf("Auth = %#v, want BasicAuth from the URL", r.Auth)
	}
	if _, err := m.Fetch(context.Background(), coord.MustParse("g:a:1.0")); err != nil {
		t.Fatalf("Fetch with URL credentials: %v", err)
	}

	direct := m.AddRemoteRepository(Remote{ID: "direct", URL: withCreds})
	for _, s := range []string{logged.String(), r.String(), direct.String(), fmt.Sprint(m.Remotes())} {
		if strings.Contains(s, "s3cr3t") {
			t.Errorf("secret leaked: %s", s)
		}
	}

	explicit, err := NewRemote("", withCreds, BasicAuth{Username: "ci", Password: "pw"})
	if err != nil {
		t.Fatal(err)
	}
	if explicit.URL != srv.URL || explicit.Auth != (BasicAuth{Username: "ci", Password: "pw"}) {
		t.Errorf("explicit auth: %#v", explicit)
	}
}
