// Package configs holds the configuration sigcrypt threads through every
// component.
//
// Persistent settings live in a TOML file, by default
// $XDG_CONFIG_HOME/sigcrypt/config.toml:
//
//	audit_log = "/home/alice/.local/state/sigcrypt/audit.jsonl"
//
//	[key]
//	pattern = "alice@yubikey"
//
//	[agent]
//	lister = "command"            # or "socket" to talk to $SSH_AUTH_SOCK directly
//	list_command = ["ssh-add", "-L"]
//	sign_command = ["ssh-keygen"]
//
//	[cipher]
//	command = ["openssl", "enc"]
//
// The per-run values (mode and salt) are never read from the file. The CLI
// layers environment variables and flags over the file before validating.
package configs
