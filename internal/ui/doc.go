// Package ui formats the human-readable output of sigcrypt's inspection
// commands (inspect, keys, config).
//
// Formatters colorize when the terminal supports it. When NO_COLOR is set or
// color is unavailable, a few of them fall back to text decorations instead:
//
//	ui.Code.Sprint("sigcrypt config init")  // `sigcrypt config init`
//	ui.Highlight.Sprint("SHA256:abc")       // 'SHA256:abc'
//	ui.Muted.Sprint("ecdsa")                // (ecdsa)
//
// Only diagnostic streams are formatted. Cipher output is never touched.
package ui
