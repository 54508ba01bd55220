// Package tui is the terminal board: a search box with its result list, the
// pending tray and the six tiers. Cards are dragged with the keyboard: space
// grabs the selected card, arrows, 1-6 or p pick the target, enter drops and
// esc cancels. Edit mode (e) turns enter and x into remove.
package tui
