package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rgbdio/replay/internal/reader"
)

var (
	watchAccent = lipgloss.Color("#1E88E5")
	watchGood   = lipgloss.Color("#4CAF50")
	watchWarn   = lipgloss.Color("#FFB74D")
	watchBad    = lipgloss.Color("#F44336")
	watchMuted  = lipgloss.Color("#90A4AE")

	watchHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(watchAccent).
				Padding(0, 2)

	watchPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(watchMuted).
			Padding(0, 1)

	watchLabelStyle = lipgloss.NewStyle().Foreground(watchMuted)
	watchValueStyle = lipgloss.NewStyle().Bold(true)
)

// playbackState is shared between the consumer goroutine and the TUI.
type playbackState struct {
	consumed atomic.Uint64
	lastTS   atomic.Uint64
	finished atomic.Bool

	mu  sync.Mutex
	err error
}

func (s *playbackState) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *playbackState) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

type watchTickMsg time.Time

func watchTick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return watchTickMsg(t)
	})
}

type watchModel struct {
	session  *reader.Reader
	meta     *reader.Metadata
	state    *playbackState
	start    time.Time
	width    int
	quitting bool
}

// runWatch consumes the session at the recorded frame rate while a
// dashboard renders buffer and playback state.
func runWatch(r *reader.Reader) error {
	meta := r.Metadata()
	state := &playbackState{}

	go func() {
		period := time.Duration(float64(time.Second) / meta.FPS)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			frame, err := r.NextFrame()
			if err != nil {
				if !errors.Is(err, reader.ErrStreamDrained) {
					state.setErr(err)
				}
				state.finished.Store(true)
				return
			}
			state.consumed.Add(1)
			state.lastTS.Store(frame.TimestampUS)
			<-ticker.C
		}
	}()

	m := watchModel{
		session: r,
		meta:    meta,
		state:   state,
		start:   time.Now(),
		width:   80,
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return state.Err()
}

// Init implements tea.Model
func (m watchModel) Init() tea.Cmd {
	return watchTick()
}

// Update implements tea.Model
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case watchTickMsg:
		if m.state.finished.Load() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, watchTick()
	}
	return m, nil
}

// View implements tea.Model
func (m watchModel) View() string {
	stats := m.session.Stats()
	consumed := m.state.consumed.Load()
	tsUS := m.state.lastTS.Load()

	header := watchHeaderStyle.Render(fmt.Sprintf("REPLAY  %s", stats.Path))

	status := watchValueStyle.Foreground(watchGood).Render("playing")
	switch {
	case stats.Faulted:
		status = watchValueStyle.Foreground(watchBad).Render("faulted")
	case stats.EOF && stats.Occupancy == 0:
		status = watchValueStyle.Foreground(watchMuted).Render("drained")
	case stats.EOF:
		status = watchValueStyle.Foreground(watchWarn).Render("eof")
	}

	elapsed := time.Since(m.start).Round(time.Second)
	rate := float64(consumed) / time.Since(m.start).Seconds()

	info := watchPanelStyle.Width(m.width - 2).Render(strings.Join([]string{
		fmt.Sprintf("%s %s   %s %s   %s %.1f fps",
			watchLabelStyle.Render("device"), watchValueStyle.Render(m.meta.DeviceName),
			watchLabelStyle.Render("status"), status,
			watchLabelStyle.Render("rate"), rate),
		fmt.Sprintf("%s %d   %s %s   %s %s",
			watchLabelStyle.Render("frames"), consumed,
			watchLabelStyle.Render("position"), formatUS(tsUS),
			watchLabelStyle.Render("elapsed"), elapsed),
	}, "\n"))

	barWidth := m.width - 20
	if barWidth < 10 {
		barWidth = 10
	}

	progress := 0
	if m.meta.StreamLengthUS > 0 {
		progress = int(tsUS * 100 / m.meta.StreamLengthUS)
	}
	progressPanel := watchPanelStyle.Width(m.width - 2).Render(
		fmt.Sprintf("%s %s %3d%%", watchLabelStyle.Render("stream"), renderBar(progress, barWidth, watchAccent), progress))

	occupancy := 0
	if stats.Capacity > 0 {
		occupancy = int(stats.Occupancy * 100 / stats.Capacity)
	}
	bufferColor := watchGood
	if occupancy < 25 {
		bufferColor = watchWarn
	}
	bufferPanel := watchPanelStyle.Width(m.width - 2).Render(
		fmt.Sprintf("%s %s %d/%d", watchLabelStyle.Render("buffer"), renderBar(occupancy, barWidth, bufferColor), stats.Occupancy, stats.Capacity))

	footer := watchLabelStyle.Render("q to quit")
	if m.quitting {
		footer = watchLabelStyle.Render("playback finished")
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, info, progressPanel, bufferPanel, footer) + "\n"
}

func renderBar(percent, width int, color lipgloss.Color) string {
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(color).Render(bar)
}

func formatUS(us uint64) string {
	d := time.Duration(us) * time.Microsecond
	return d.Round(10 * time.Millisecond).String()
}
