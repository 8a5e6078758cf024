// Package keys selects the single agent-held SSH key used to derive a secret.
//
// Identities are single authorized_keys style lines, "<algo> <base64> [comment]".
// Selection narrows the agent's identities by an optional pattern, drops the
// ecdsa family (ecdsa signatures are randomized, so they cannot reproduce a
// secret) and insists on exactly one survivor. The comment is stripped before
// the identity is used or persisted because it often names a person or host.
package keys
