// ABOUTME: Bubbletea model for the player TUI
// ABOUTME: Polls the player for status and maps keys to player controls
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Resonate-Protocol/pcmpipe/pkg/audio"
	"github.com/Resonate-Protocol/pcmpipe/pkg/audio/player"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	refreshInterval = 200 * time.Millisecond
	volumeStep      = 5
	barWidth        = 30
)

// Controller is the part of *player.Player the TUI drives
type Controller interface {
	Play() error
	Stop() error
	IsPlaying() bool
	Flush()
	SetVolume(volume int)
	Volume() int
	SetMuted(muted bool)
	IsMuted() bool
	Stats() player.Stats
	SampleRate() int
}

// Info describes what is being played
type Info struct {
	Title   string
	Format  audio.Format
	Backend string
}

// Model represents the TUI state
type Model struct {
	ctrl Controller
	info Info

	playing  bool
	volume   int
	muted    bool
	stats    player.Stats
	rate     int
	finished bool
	lastErr  string

	quitting bool
	width    int
	height   int
}

type tickMsg time.Time

// StatusMsg reports producer side events to the TUI
type StatusMsg struct {
	// Finished is set once the source reached its end
	Finished bool
	Err      error
}

// NewModel creates a new TUI model
func NewModel(ctrl Controller, info Info) Model {
	m := Model{ctrl: ctrl, info: info, volume: 100}
	m.refresh()
	return m
}

// Init starts the refresh ticker
func (m Model) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.refresh()
		return m, tickEvery()
	case StatusMsg:
		if msg.Finished {
			m.finished = true
		}
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
		}
	}
	return m, nil
}

// refresh copies the player state into the model
func (m *Model) refresh() {
	if m.ctrl == nil {
		return
	}
	m.playing = m.ctrl.IsPlaying()
	m.volume = m.ctrl.Volume()
	m.muted = m.ctrl.IsMuted()
	m.stats = m.ctrl.Stats()
	m.rate = m.ctrl.SampleRate()
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	if m.ctrl == nil {
		return m, nil
	}

	switch msg.String() {
	case " ":
		var err error
		if m.ctrl.IsPlaying() {
			err = m.ctrl.Stop()
		} else {
			err = m.ctrl.Play()
		}
		if err != nil {
			m.lastErr = err.Error()
		}
	case "f":
		m.ctrl.Flush()
	case "up":
		m.ctrl.SetVolume(min(m.ctrl.Volume()+volumeStep, 100))
	case "down":
		m.ctrl.SetVolume(max(m.ctrl.Volume()-volumeStep, 0))
	case "m":
		m.ctrl.SetMuted(!m.ctrl.IsMuted())
	}
	m.refresh()
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping playback...\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("pcmpipe"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%-9s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	row("Source:", truncate(m.info.Title, 48))
	row("Format:", fmt.Sprintf("%dHz %s s16le", m.rate, channelName(m.info.Format.Channels)))
	row("Output:", m.info.Backend)
	row("State:", m.stateText())

	volume := fmt.Sprintf("[%s] %d%%", renderBar(m.volume, 100, 10), m.volume)
	if m.muted {
		volume += " (muted)"
	}
	row("Volume:", volume)

	queued := audio.DurationForBytes(m.rate, m.stats.Queued).Round(time.Millisecond)
	row("Queue:", fmt.Sprintf("[%s] %v (%d/%d bytes)",
		renderBar(m.stats.Queued, m.stats.Capacity, barWidth), queued, m.stats.Queued, m.stats.Capacity))

	b.WriteString("\n")
	row("Played:", formatBytes(m.stats.Played))
	row("Silence:", formatBytes(m.stats.Silence))
	underruns := fmt.Sprintf("%d", m.stats.Underruns)
	if m.stats.Underruns > 0 {
		underruns = warnStyle.Render(underruns)
	}
	row("Underrun:", underruns)
	row("Rejected:", formatBytes(m.stats.Rejected))
	row("Dropped:", formatBytes(m.stats.Dropped))

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("Error: " + m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(
		"space:Play/Stop  f:Flush  ↑/↓:Volume  m:Mute  q:Quit"))
	return b.String()
}

func (m Model) stateText() string {
	switch {
	case m.playing && m.finished && m.stats.Queued == 0:
		return "finished"
	case m.playing:
		return "playing"
	default:
		return "stopped"
	}
}

// Utility functions
func renderBar(value, total, width int) string {
	filled := 0
	if total > 0 {
		filled = (value * width) / total
	}
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
