package keys

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"

	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
)

const (
	edKey    = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIEdw4VbBw6tYK0dGRh0MJ8SP1nGqvDpmDHW0rT6wQd9S alice@laptop"
	rsaKey   = "ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABAQC7 bob@desktop"
	ecdsaKey = "ecdsa-sha2-nistp256 AAAAE2VjZHNhLXNoYTItbmlzdHAyNTYAAAAIbmlzdHAyNTY= alice@yubikey"
	skEcdsa  = "sk-ecdsa-sha2-nistp256@openssh.com AAAAInNrLWVjZHNh alice@fido"
)

const listerHelperEnv = "SIGCRYPT_KEYS_HELPER"

func TestMain(m *testing.M) {
	switch os.Getenv(listerHelperEnv) {
	case "list":
		os.Stdout.WriteString(edKey + "\n" + ecdsaKey + "\n")
		os.Exit(0)
	case "fail":
		os.Stderr.WriteString("Could not open a connection to your authentication agent.\n")
		os.Exit(2)
	}
	os.Exit(m.Run())
}

type fakeLister struct {
	lines []string
	err   error
	calls int
}

func (f *fakeLister) List(context.Context) ([]string, error) {
	f.calls++
	return f.lines, f.err
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		pattern string
		want    Identity
		wantErr error
	}{
		{"no candidates", nil, "", "", kerrors.ErrNoUsableKey},
		{"no candidates with pattern", nil, "alice", "", kerrors.ErrNoKeyMatch},
		{"single ecdsa candidate", []string{ecdsaKey}, "", "", kerrors.ErrNoUsableKey},
		{"security key ecdsa candidate", []string{skEcdsa}, "", "", kerrors.ErrNoUsableKey},
		{"two usable candidates", []string{edKey, rsaKey}, "", "", kerrors.ErrAmbiguousKey},
		{"pattern matches nothing", []string{edKey, rsaKey}, "carol", "", kerrors.ErrNoKeyMatch},
		{"pattern matches only ecdsa", []string{edKey, ecdsaKey}, "yubikey", "", kerrors.ErrNoUsableKey},
		{"single usable candidate", []string{edKey}, "", Identity(strings.Join(strings.Fields(edKey)[:2], " ")), nil},
		{"ecdsa excluded leaves one", []string{ecdsaKey, rsaKey}, "", "ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABAQC7", nil},
		{"pattern narrows to one", []string{edKey, rsaKey}, "bob@", "ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABAQC7", nil},
		{"pattern is a regular expression", []string{edKey, rsaKey}, "^ssh-ed", Identity(strings.Join(strings.Fields(edKey)[:2], " ")), nil},
		{"blank lines ignored", []string{"", edKey, "  "}, "", Identity(strings.Join(strings.Fields(edKey)[:2], " ")), nil},
		{"invalid pattern", []string{edKey}, "(", "", kerrors.ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.lines, tt.pattern)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got: %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelect_DoesNotLeakComment(t *testing.T) {
	got, err := Select([]string{edKey}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(got), "alice") {
		t.Errorf("comment was not stripped: %q", got)
	}
}

func TestResolve_OverrideSkipsAgent(t *testing.T) {
	lister := &fakeLister{err: kerrors.ErrAgentUnavailable}

	got, err := Resolve(context.Background(), lister, "ssh-ed25519 AAAA override-comment", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ssh-ed25519 AAAA override-comment" {
		t.Errorf("override was modified: %q", got)
	}
	if lister.calls != 0 {
		t.Errorf("agent was consulted %d times", lister.calls)
	}
}

func TestResolve_AgentFailure(t *testing.T) {
	lister := &fakeLister{err: kerrors.ErrAgentUnavailable}

	_, err := Resolve(context.Background(), lister, "", "")
	if !errors.Is(err, kerrors.ErrAgentUnavailable) {
		t.Errorf("expected ErrAgentUnavailable, got: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]Identity{
		"ssh-ed25519 AAAA comment with spaces": "ssh-ed25519 AAAA",
		"ssh-ed25519 AAAA\n":                   "ssh-ed25519 AAAA",
		"ssh-ed25519 AAAA\nsecond line":        "ssh-ed25519 AAAA",
		"  ssh-rsa   BBBB  ":                   "ssh-rsa BBBB",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsECDSA(t *testing.T) {
	if !IsECDSA(ecdsaKey) || !IsECDSA(skEcdsa) {
		t.Error("ecdsa identities not detected")
	}
	if !IsECDSA("ecdsa-sha2-nistp384-cert-v01@openssh.com AAAA") {
		t.Error("ecdsa certificate not detected")
	}
	if IsECDSA(edKey) || IsECDSA(rsaKey) {
		t.Error("non-ecdsa identity flagged as ecdsa")
	}
	// The comment must not influence the decision.
	if IsECDSA("ssh-ed25519 AAAA my-old-ecdsa-key") {
		t.Error("comment mentioning ecdsa flagged the identity")
	}
}

func TestComment(t *testing.T) {
	if got := Comment(edKey); got != "alice@laptop" {
		t.Errorf("Comment() = %q", got)
	}
	if got := Comment("ssh-ed25519 AAAA"); got != "" {
		t.Errorf("Comment() = %q, want empty", got)
	}
}

func newEd25519Line(t *testing.T, comment string) (ed25519.PrivateKey, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("converting key: %v", err)
	}
	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
	if comment != "" {
		line += " " + comment
	}
	return priv, line
}

func TestFingerprint(t *testing.T) {
	_, line := newEd25519Line(t, "alice@laptop")

	fp, err := Fingerprint(line)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if !strings.HasPrefix(fp, "SHA256:") {
		t.Errorf("unexpected fingerprint %q", fp)
	}

	stripped, err := Fingerprint(string(Normalize(line)))
	if err != nil {
		t.Fatalf("Fingerprint of normalized line failed: %v", err)
	}
	if stripped != fp {
		t.Errorf("fingerprint changed after normalizing: %q vs %q", stripped, fp)
	}

	if _, err := Fingerprint("not a key"); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestCommandLister(t *testing.T) {
	t.Setenv(listerHelperEnv, "list")

	lines, err := CommandLister{Command: []string{os.Args[0]}}.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(lines) != 2 || lines[0] != edKey || lines[1] != ecdsaKey {
		t.Errorf("unexpected lines: %q", lines)
	}

	got, err := Select(lines, "")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if got.Algorithm() != "ssh-ed25519" {
		t.Errorf("unexpected selection %q", got)
	}
}

func TestCommandLister_Failure(t *testing.T) {
	t.Setenv(listerHelperEnv, "fail")

	_, err := CommandLister{Command: []string{os.Args[0]}}.List(context.Background())
	if !errors.Is(err, kerrors.ErrAgentUnavailable) {
		t.Errorf("expected ErrAgentUnavailable, got: %v", err)
	}
}

func serveAgent(t *testing.T, keyring agent.Agent) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "sc")
	if err != nil {
		t.Fatalf("creating socket dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	socket := filepath.Join(dir, "agent.sock")
	ln, err := net.Listen("unix", socket)
	if err != nil {
		t.Skipf("unix sockets unavailable: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				_ = agent.ServeAgent(keyring, conn)
			}()
		}
	}()

	return socket
}

func TestSocketLister(t *testing.T) {
	priv, line := newEd25519Line(t, "")
	keyring := agent.NewKeyring()
	if err := keyring.Add(agent.AddedKey{PrivateKey: priv, Comment: "alice@laptop"}); err != nil {
		t.Fatalf("adding key: %v", err)
	}

	lines, err := SocketLister{Socket: serveAgent(t, keyring)}.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 identity, got %d", len(lines))
	}
	if lines[0] != line+" alice@laptop" {
		t.Errorf("got %q, want %q", lines[0], line+" alice@laptop")
	}
	if got := Normalize(lines[0]); string(got) != line {
		t.Errorf("Normalize() = %q, want %q", got, line)
	}
}

func TestSocketLister_EmptyAgent(t *testing.T) {
	_, err := SocketLister{Socket: serveAgent(t, agent.NewKeyring())}.List(context.Background())
	if !errors.Is(err, kerrors.ErrAgentUnavailable) {
		t.Errorf("expected ErrAgentUnavailable, got: %v", err)
	}
}

func TestSocketLister_NoSocket(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")

	_, err := SocketLister{}.List(context.Background())
	if !errors.Is(err, kerrors.ErrAgentUnavailable) {
		t.Errorf("expected ErrAgentUnavailable, got: %v", err)
	}
}
