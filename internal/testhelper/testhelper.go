// Package testhelper lets a test binary impersonate the programs sigcrypt
// drives: the agent key lister, the signer and the cipher engine.
//
// A test package wires it up from TestMain:
//
//	func TestMain(m *testing.M) {
//	    if testhelper.Active() {
//	        os.Exit(testhelper.Run(os.Args[1:]))
//	    }
//	    os.Exit(m.Run())
//	}
//
// and points the configuration at os.Args[0] with a role as first argument.
package testhelper

import (
	"bufio"
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
)

const (
	// Env marks a child process as a helper.
	Env = "SIGCRYPT_TEST_HELPER"

	// CipherExitEnv makes the fake cipher engine exit with the given status
	// after processing its input.
	CipherExitEnv = "SIGCRYPT_TEST_CIPHER_EXIT"

	// ECDSALine is an ecdsa identity the fake agent also holds.
	ECDSALine = "ecdsa-sha2-nistp256 AAAAE2VjZHNhLXNoYTItbmlzdHAyNTYAAAAIbmlzdHAyNTY= alice@yubikey"
)

// Roles understood by Run.
const (
	RoleList   = "list"
	RoleFail   = "fail"
	RoleSign   = "sign"
	RoleCipher = "cipher"
)

// Active reports whether this process was started as a helper.
func Active() bool {
	return os.Getenv(Env) == "1"
}

// Command returns the argument vector that runs the current test binary in role.
func Command(role string) []string {
	return []string{os.Args[0], role}
}

// EdLine is a real ed25519 identity derived from a fixed seed, so helper
// processes and tests agree on it.
func EdLine() string {
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	pub, err := ssh.NewPublicKey(ed25519.NewKeyFromSeed(seed).Public())
	if err != nil {
		panic(err)
	}
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(pub))) + " alice@laptop"
}

// Run performs role and returns the exit status.
func Run(args []string) int {
	if len(args) == 0 {
		return 99
	}
	switch args[0] {
	case RoleList:
		fmt.Println(EdLine())
		fmt.Println(ECDSALine)
		return 0
	case RoleFail:
		fmt.Fprintln(os.Stderr, "helper asked to fail")
		return 2
	case RoleSign:
		return sign(args[1:])
	case RoleCipher:
		return xorCipher(args[1:])
	}
	return 99
}

// sign behaves like "ssh-keygen -Y sign": a deterministic signature over the
// key read from fd 3 and the message read from stdin.
func sign(args []string) int {
	if len(args) != 7 || args[0] != "-Y" || args[2] != "-n" || args[6] != "/dev/fd/3" {
		fmt.Fprintf(os.Stderr, "unexpected signer arguments %q\n", args)
		return 2
	}
	key, err := io.ReadAll(os.NewFile(3, "key"))
	if err != nil {
		return 2
	}
	msg, err := io.ReadAll(os.Stdin)
	if err != nil || string(msg) != args[3] {
		fmt.Fprintln(os.Stderr, "namespace and message differ")
		return 2
	}

	sum := sha256.Sum256(append(append(key, 0), msg...))
	fmt.Printf("-----BEGIN SSH SIGNATURE-----\n%s\n-----END SSH SIGNATURE-----\n", hex.EncodeToString(sum[:]))
	return 0
}

// xorCipher XORs stdin with a keystream derived from the passphrase line on
// fd 3, so encryption and decryption are the same transform.
func xorCipher(args []string) int {
	n := len(args)
	if n < 3 || args[n-2] != "-pass" || args[n-1] != "fd:3" || (args[n-3] != "-e" && args[n-3] != "-d") {
		fmt.Fprintf(os.Stderr, "unexpected cipher arguments %q\n", args)
		return 2
	}

	pass, err := bufio.NewReader(os.NewFile(3, "pass")).ReadString('\n')
	if err != nil {
		return 2
	}

	in, err := io.ReadAll(os.Stdin)
	if err != nil {
		return 2
	}
	out := make([]byte, len(in))
	var block [sha256.Size]byte
	for i := range in {
		if i%sha256.Size == 0 {
			var counter [8]byte
			binary.BigEndian.PutUint64(counter[:], uint64(i/sha256.Size))
			block = sha256.Sum256(append([]byte(pass), counter[:]...))
		}
		out[i] = in[i] ^ block[i%sha256.Size]
	}
	if _, err := os.Stdout.Write(out); err != nil {
		return 2
	}

	if code, err := strconv.Atoi(os.Getenv(CipherExitEnv)); err == nil {
		return code
	}
	return 0
}
