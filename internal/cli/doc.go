// Package cli is the interactive front end of taskkeeper: a line-oriented
// REPL that prompts for input, calls the authentication and task services
// and prints their results.
package cli
