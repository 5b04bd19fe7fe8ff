// Package eventlog provides durable ledger.Store backends: a JSON file per
// account, SQLite, PostgreSQL and Redis. Every backend keeps the account
// history append-only, reads missing or structurally corrupt storage as an
// empty history, and fails loudly on event kinds it does not recognize.
package eventlog
