// Package cli provides the interactive FailVault command-line client.
//
// It wires configuration, the local entitlement database, the catalog API
// client and the wallet, then runs a REPL. A background watcher pings the
// server and switches between online and offline mode; another follows the
// wallet session so the prompt shows the connected account.
//
// Key features:
//   - Browse, search and filter the catalog
//   - Unlock a record by paying its price through the wallet
//   - Publish a record (metadata upload, token mint, catalog insert)
//   - Admin table with two-step delete for the allow-listed account
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
