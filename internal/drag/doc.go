// Package drag interprets drag gestures and edit-mode clicks as board commands.
//
// A Controller runs one gesture at a time through Idle, Dragging and a terminal
// Dropped or Cancelled state, after which it is Idle again. Drop surfaces are
// registered with their bounds so hover highlighting is a containment test on
// the pointer position.
package drag
