package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/mediahost/internal/config"
	"github.com/llehouerou/mediahost/internal/media"
	"github.com/llehouerou/mediahost/internal/mpris"
	"github.com/llehouerou/mediahost/internal/mse"
	"github.com/llehouerou/mediahost/internal/pipeline"
	"github.com/llehouerou/mediahost/internal/state"
	"github.com/llehouerou/mediahost/internal/vtt"
)

var playerBarStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240"))

var cueStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("229")).
	Italic(true)

var logStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("243"))

const (
	tickInterval = 250 * time.Millisecond
	seekStep     = 5.0
	volumeStep   = 0.05
	maxLogLines  = 8
)

var rates = []float64{0.5, 1, 1.25, 1.5, 2}

type tickMsg time.Time

type eventMsg media.EventType

type model struct {
	element  *media.Element
	source   *mse.MediaSource
	registry *mse.Registry
	queue    *media.EventQueue
	events   chan media.EventType
	stateMgr *state.Manager
	mprisSrv *mpris.Adapter

	mediaCfg config.MediaConfig
	track    *media.TextTrack
	log      []string
	width    int
	height   int
}

func initialModel() (model, error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, err
	}
	mediaCfg := cfg.GetMediaConfig()

	stateMgr, err := state.Open()
	if err != nil {
		return model{}, err
	}

	registry := mse.NewRegistry(pipeline.NewSystemClock())
	queue := media.NewEventQueue()
	element := media.New(registry, queue)
	registry.AddElement(element)

	// Bridge scheduled events into the bubbletea loop.
	events := make(chan media.EventType, 64)
	queue.Listen(func(e media.EventType) {
		select {
		case events <- e:
		default:
		}
	})

	saved, err := stateMgr.GetPlayer()
	if err != nil {
		saved = nil
	}
	applyPlayerSettings(element, cfg, saved)

	m := model{
		element:  element,
		registry: registry,
		queue:    queue,
		events:   events,
		stateMgr: stateMgr,
		mediaCfg: mediaCfg,
	}

	m.source = registry.CreateMediaSource(mediaCfg.URL)

	if mediaCfg.Subtitles != "" {
		if track, err := loadSubtitles(element, mediaCfg.Subtitles); err == nil {
			m.track = track
		} else {
			m.log = append(m.log, fmt.Sprintf("subtitles: %v", err))
		}
	}

	if adapter, err := mpris.New(element); err == nil {
		m.mprisSrv = adapter
	}

	return m, nil
}

// applyPlayerSettings seeds the element from the config, then lets a
// previous session's saved state override it. saved is nil on first run,
// so the configured volume/muted take effect until something is saved.
func applyPlayerSettings(element *media.Element, cfg *config.Config, saved *state.PlayerState) {
	element.SetAutoplay(cfg.Autoplay)
	element.SetLoop(cfg.Loop)
	element.SetVolume(cfg.EffectiveVolume())
	element.SetMuted(cfg.Muted)

	if saved == nil {
		return
	}
	element.SetVolume(saved.Volume)
	element.SetMuted(saved.Muted)
	if saved.PlaybackRate > 0 {
		element.SetPlaybackRate(saved.PlaybackRate)
	}
}

// loadSubtitles parses a WebVTT file into a subtitles text track.
func loadSubtitles(element *media.Element, path string) (*media.TextTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cues, err := vtt.Parse(f)
	if err != nil {
		return nil, err
	}

	track := element.AddTextTrack(media.KindSubtitles, "Subtitles", "")
	for _, c := range cues {
		track.AddCue(media.Cue{
			ID:        c.ID,
			StartTime: c.Start.Seconds(),
			EndTime:   c.End.Seconds(),
			Text:      c.Text,
		})
	}
	return track, nil
}

// load attaches the configured source and feeds it metadata.
func (m *model) load() {
	if err := m.element.SetSource(m.mediaCfg.URL); err != nil {
		m.log = append(m.log, err.Error())
		return
	}
	m.source.SetDuration(m.mediaCfg.DurationSeconds)
	m.source.SetBuffered(media.TimeRanges{{Start: 0, End: m.mediaCfg.DurationSeconds}})
	m.source.ReportReadyState(media.HaveEnoughData)
	m.source.DoneInitializing()
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForEvent(m.events))
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForEvent(events chan media.EventType) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-events)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case eventMsg:
		m.log = append(m.log, media.EventType(msg).String())
		if len(m.log) > maxLogLines {
			m.log = m.log[len(m.log)-maxLogLines:]
		}
		if media.EventType(msg) == media.EventEnded && m.element.Loop() {
			m.element.Play()
		}
		return m, waitForEvent(m.events)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.pump()
		return m, tickCmd()
	}

	return m, nil
}

// pump stands in for the demuxer between ticks: it resolves pending
// seeks, accounts rendered frames and raises end of stream.
func (m *model) pump() {
	if m.element.Source() == "" {
		return
	}
	if m.element.Seeking() {
		m.source.CanPlay()
	}
	if !m.element.Paused() {
		m.source.AddFrames(uint64(tickInterval.Seconds()*30), 0, 0)
	}
	dur := m.element.Duration()
	if !math.IsNaN(dur) && !m.element.Ended() && m.element.CurrentTime() >= dur {
		m.source.EndOfStream()
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, m.quit()
	case "l":
		m.load()
	case "u":
		m.element.Load()
	case " ":
		if m.element.Paused() {
			m.element.Play()
		} else {
			m.element.Pause()
		}
	case "m":
		m.element.SetMuted(!m.element.Muted())
	case "+", "=":
		m.element.SetVolume(math.Min(1, m.element.Volume()+volumeStep))
	case "-":
		m.element.SetVolume(math.Max(0, m.element.Volume()-volumeStep))
	case "left":
		m.element.SetCurrentTime(math.Max(0, m.element.CurrentTime()-seekStep))
	case "right":
		m.element.SetCurrentTime(m.element.CurrentTime() + seekStep)
	case "r":
		m.element.SetPlaybackRate(nextRate(m.element.PlaybackRate()))
	}
	return m, nil
}

func nextRate(current float64) float64 {
	for i, r := range rates {
		if r == current {
			return rates[(i+1)%len(rates)]
		}
	}
	return 1
}

func (m model) quit() tea.Cmd {
	_ = m.stateMgr.SavePlayer(state.PlayerState{
		Volume:       m.element.Volume(),
		Muted:        m.element.Muted(),
		PlaybackRate: m.element.PlaybackRate(),
		LastURL:      m.element.Source(),
		LastPosition: m.element.CurrentTime(),
	})
	if m.mprisSrv != nil {
		_ = m.mprisSrv.Close()
	}
	_ = m.element.Close()
	_ = m.queue.Close()
	_ = m.stateMgr.Close()
	return tea.Quit
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.playerBar())
	b.WriteString("\n")

	if m.track != nil {
		for _, cue := range m.track.ActiveCues() {
			b.WriteString(cueStyle.Render(cue.Text))
			b.WriteString("\n")
		}
	}

	if len(m.log) > 0 {
		b.WriteString("\n")
		b.WriteString(logStyle.Render(strings.Join(m.log, "\n")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(logStyle.Render("space play/pause · l load · u unload · ←/→ seek · +/- volume · m mute · r rate · q quit"))

	return b.String()
}

func (m model) playerBar() string {
	status := "⏹"
	switch {
	case m.element.Source() == "":
		status = "⏹"
	case m.element.Err() != nil:
		status = "✖"
	case m.element.Ended():
		status = "⏏"
	case m.element.Paused():
		status = "⏸"
	default:
		status = "▶"
	}

	left := fmt.Sprintf(" %s  %s  [%s / %s]", status, m.mediaCfg.URL,
		m.element.ReadyState(), m.element.PipelineStatus())

	volume := fmt.Sprintf("vol %.0f%%", m.element.Volume()*100)
	if m.element.Muted() {
		volume = "muted"
	}
	right := fmt.Sprintf("%s · %.2fx · %s / %s ", volume, m.element.PlaybackRate(),
		formatTime(m.element.CurrentTime()), formatTime(m.element.Duration()))

	innerWidth := m.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}
	padding := innerWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return playerBarStyle.Width(innerWidth).Render(left + strings.Repeat(" ", padding) + right)
}

func formatTime(seconds float64) string {
	if math.IsNaN(seconds) {
		return "-:--"
	}
	d := time.Duration(seconds * float64(time.Second))
	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", min, sec)
}

func main() {
	m, err := initialModel()
	if err != nil {
		fmt.Printf("Error initializing: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
