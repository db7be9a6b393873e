// SPDX-License-Identifier: MPL-2.0

// Package tui is the interactive editor. Session drives the menus and keeps
// the candidate values; Prompter abstracts the forms so the flow can run
// against huh or a scripted prompter.
package tui
