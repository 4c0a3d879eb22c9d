// Package audio plays 30-second MP3 previews through the system speaker.
//
// A [Backend] implements [player.Factory]. Each resource downloads and decodes
// its preview in the background and reports readiness, progress, completion
// and failures as [player.Event] values on [Backend.Events]. The speaker is
// initialised lazily on the first Play so commands that never play audio do
// not open a device.
package audio
