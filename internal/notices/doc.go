// Package notices carries short, non-blocking user messages (the toasts of the
// board UI) from core components to whatever surface is showing them.
//
// Components depend only on the Sink interface. Queue buffers notices for
// surfaces that poll, Multi fans out, and Nop discards.
package notices
