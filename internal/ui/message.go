package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/moodtune/internal/player"
	"github.com/desertthunder/moodtune/internal/tasks"
)

var (
	_ tea.Msg = discoveredMsg{}
	_ tea.Msg = progressMsg{}
	_ tea.Msg = audioEventMsg{}
	_ tea.Msg = exportedMsg{}
	_ tea.Msg = transcriptMsg{}
	_ tea.Msg = openedMsg{}
)

// discoveredMsg carries the outcome of discovery request seq.
type discoveredMsg struct {
	seq int
	run *tasks.DiscoveryRun
	err error
}

type progressMsg struct {
	seq    int
	update tasks.ProgressUpdate
}

type audioEventMsg player.Event

type exportedMsg struct {
	run *tasks.ExportRun
	err error
}

type transcriptMsg struct {
	text string
	err  error
}

type openedMsg struct {
	target string
	err    error
}
