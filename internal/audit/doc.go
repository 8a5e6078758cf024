// Package audit records sigcrypt runs in an optional JSON Lines log.
//
// Each entry carries a random id, a UTC timestamp, the operation, the SHA256
// fingerprint of the signing key and the cipher options. The salt and the
// derived secret are never recorded.
//
// Audit logging is best-effort: a failed write is reported to the caller for
// a warning and never fails the run. ParseEntries skips malformed lines so a
// partially written entry does not hide the rest of the log.
package audit
