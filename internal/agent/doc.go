// Package agent assembles the Snipee sync agent: local replica database,
// device identity, remote document client, sync engine and the interactive
// shell.
package agent
