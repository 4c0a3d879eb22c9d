// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI moves between four views:
//  1. [IdleView] : mood text input with a live n/500 counter, voice input and a language toggle
//  2. [LoadingView] : spinner with discovery progress
//  3. [ResultsView] : the preview player, track list, mood metadata and Deezer export
//  4. [ErrorView] : the failure with retry and new-search paths
//
// The [Model] owns one [player.Player] per result. Audio events arrive on the
// backend's channel and are fed to [player.Player.HandleEvent] from Update, so
// the player is only ever touched from the bubbletea loop.
//
// Language and theme come from a read-only [Preferences] value. Strings are
// available in English and Spanish.
package ui
