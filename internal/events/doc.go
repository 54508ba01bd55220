// Package events fans board, notice and search updates out to websocket
// clients. Every event carries a monotonically increasing sequence number so
// clients can detect gaps after a reconnect.
package events
