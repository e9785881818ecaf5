// Package app implements the verse viewer and admin use cases on top of the
// ports. Adapters (HTTP, TUI, CLI) call into it; it never imports them.
package app
