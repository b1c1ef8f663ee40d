// Package command exposes go-command compatible command handlers for the SVA
// role workflow. The submission command records one grant/revoke job per
// target user under a shared transaction id. Commands are wired by the service
// layer and can be invoked by any transport.
package command
