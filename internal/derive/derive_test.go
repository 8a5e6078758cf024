package derive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"reflect"
	"testing"

	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
	"github.com/PolarWolf314/sigcrypt/internal/keys"
)

const signerHelperEnv = "SIGCRYPT_SIGNER_HELPER"

const testIdentity = keys.Identity("ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIEdw4VbBw6tYK0dGRh0MJ8SP1nGqvDpmDHW0rT6wQd9S")

// TestMain lets the test binary impersonate ssh-keygen -Y sign.
func TestMain(m *testing.M) {
	switch os.Getenv(signerHelperEnv) {
	case "sign":
		os.Exit(fakeSign(os.Args[1:]))
	case "fail":
		os.Stderr.WriteString("sign_and_send_pubkey: signing failed: agent refused operation\n")
		os.Exit(255)
	case "silent":
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func fakeSign(args []string) int {
	want := []string{"-Y", "sign", "-n"}
	if len(args) != 7 || !reflect.DeepEqual(args[:3], want) || args[4] != "-U" || args[5] != "-f" || args[6] != "/dev/fd/3" {
		return 64
	}
	namespace := args[3]

	message, err := io.ReadAll(os.Stdin)
	if err != nil || string(message) != namespace {
		return 65
	}
	key, err := io.ReadAll(os.NewFile(3, "key"))
	if err != nil {
		return 66
	}

	sum := sha256.Sum256(append(append(key, 0), message...))
	os.Stdout.WriteString("-----BEGIN SSH SIGNATURE-----\n" + hex.EncodeToString(sum[:]) + "\n-----END SSH SIGNATURE-----\n")
	return 0
}

func testSigner(t *testing.T, mode string) Signer {
	t.Helper()
	t.Setenv(signerHelperEnv, mode)
	return Signer{Command: []string{os.Args[0]}}
}

func TestDerive_Deterministic(t *testing.T) {
	signer := testSigner(t, "sign")

	first, err := signer.Derive(context.Background(), testIdentity, "s1")
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	second, err := signer.Derive(context.Background(), testIdentity+" with a comment", "s1")
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same key and salt produced different secrets")
	}

	other, err := signer.Derive(context.Background(), testIdentity, "s2")
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if bytes.Equal(first, other) {
		t.Error("different salts produced the same secret")
	}
}

func TestDerive_SignerFailure(t *testing.T) {
	_, err := testSigner(t, "fail").Derive(context.Background(), testIdentity, "s1")
	if !errors.Is(err, kerrors.ErrSigningFailed) {
		t.Fatalf("expected ErrSigningFailed, got: %v", err)
	}
	if bytes.Contains([]byte(err.Error()), []byte("s1")) {
		t.Errorf("error message leaks the salt: %v", err)
	}
}

func TestDerive_EmptySignature(t *testing.T) {
	_, err := testSigner(t, "silent").Derive(context.Background(), testIdentity, "s1")
	if !errors.Is(err, kerrors.ErrSigningFailed) {
		t.Errorf("expected ErrSigningFailed, got: %v", err)
	}
}

func TestDerive_MissingSigner(t *testing.T) {
	_, err := Signer{Command: []string{"sigcrypt-no-such-signer"}}.Derive(context.Background(), testIdentity, "s1")
	if !errors.Is(err, kerrors.ErrSigningFailed) {
		t.Errorf("expected ErrSigningFailed, got: %v", err)
	}
}

func TestSigner_Args(t *testing.T) {
	got := Signer{Command: []string{"ssh-keygen"}}.Args("2026-10-18T09:41:07Z")
	want := []string{"ssh-keygen", "-Y", "sign", "-n", "2026-10-18T09:41:07Z", "-U", "-f", "/dev/fd/3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSecret_Passphrase(t *testing.T) {
	s := Secret("-----BEGIN SSH SIGNATURE-----\nU1NIU0lH\n-----END SSH SIGNATURE-----\n")

	line := s.Passphrase()
	if line[len(line)-1] != '\n' {
		t.Fatal("passphrase is not newline terminated")
	}
	if bytes.Count(line, []byte("\n")) != 1 {
		t.Errorf("passphrase spans more than one line: %q", line)
	}
	if !bytes.Equal(line, s.Passphrase()) {
		t.Error("passphrase is not deterministic")
	}
}

func TestSecret_Zero(t *testing.T) {
	s := Secret("signature")
	s.Zero()
	if !bytes.Equal(s, make([]byte, len("signature"))) {
		t.Errorf("secret not wiped: %q", s)
	}
}
