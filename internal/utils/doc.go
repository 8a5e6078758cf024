// Package utils provides terminal helpers shared by sigcrypt's commands.
//
// Binary cipher output must not land on an interactive terminal, and the
// progress spinner only makes sense when a person is watching stderr. Both
// decisions rest on IsTerminal.
package utils
