package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"arithc/internal/buildpipeline"
)

const (
	statusColumn = 12
	minNameWidth = 20
)

// stageInfo describes how a stage is shown: its label and how far along a
// file is once it reaches the stage.
type stageInfo struct {
	label  string
	weight float64
}

var stageTable = map[buildpipeline.Stage]stageInfo{
	buildpipeline.StageCache:   {"cache", 0.05},
	buildpipeline.StageLex:     {"lexing", 0.2},
	buildpipeline.StageParse:   {"parsing", 0.4},
	buildpipeline.StageCodegen: {"generating", 0.6},
	buildpipeline.StageWrite:   {"writing", 0.8},
	buildpipeline.StageLink:    {"linking", 0.9},
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	footerStyle  = lipgloss.NewStyle().Faint(true)
)

type progressModel struct {
	title      string
	events     <-chan buildpipeline.Event
	spinner    spinner.Model
	bar        progress.Model
	items      []fileItem
	byName     map[string]int
	stageLabel string
	width      int
	done       bool
}

type fileItem struct {
	path    string
	state   buildpipeline.Status
	stage   buildpipeline.Stage
	status  string // то, что видно в колонке статуса
	elapsed time.Duration
}

func (it *fileItem) finished() bool {
	return it.state == buildpipeline.StatusDone || it.state == buildpipeline.StatusError
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders build progress
// for files, fed by events until the channel is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		items:   make([]fileItem, len(files)),
		byName:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.items[i] = fileItem{path: file, state: buildpipeline.StatusQueued, status: "queued"}
		m.byName[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	header := m.title
	if m.stageLabel != "" {
		header += " (" + m.stageLabel + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusColumn-4, minNameWidth)
	for i := range m.items {
		item := &m.items[i]
		status := statusStyle(item).Render(fmt.Sprintf("%*s", statusColumn, item.status))
		fmt.Fprintf(&b, "  %s %s", status, truncate(item.path, nameWidth))
		if item.finished() && item.elapsed > 0 {
			b.WriteString(footerStyle.Render(" " + item.elapsed.Round(time.Millisecond).String()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.summary()))
	b.WriteString("\n")
	return b.String()
}

// summary is the "N/M done" footer; failures are counted separately.
func (m *progressModel) summary() string {
	var done, failed int
	for i := range m.items {
		switch m.items[i].state {
		case buildpipeline.StatusDone:
			done++
		case buildpipeline.StatusError:
			failed++
		}
	}
	s := fmt.Sprintf("%d/%d done", done, len(m.items))
	if failed > 0 {
		s += fmt.Sprintf(", %d failed", failed)
	}
	return s
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		// событие уровня конвейера двигает только заголовок
		if ev.Status == buildpipeline.StatusWorking {
			if info, ok := stageTable[ev.Stage]; ok {
				m.stageLabel = info.label
			}
		}
		return nil
	}
	idx, ok := m.byName[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	// ошибка окончательна: поздние события того же файла её не затирают
	if item.state == buildpipeline.StatusError {
		return nil
	}
	switch ev.Status {
	case buildpipeline.StatusWorking:
		info, known := stageTable[ev.Stage]
		if !known {
			return nil
		}
		item.status = info.label
	case buildpipeline.StatusQueued, buildpipeline.StatusDone, buildpipeline.StatusError:
		item.status = string(ev.Status)
	default:
		return nil
	}
	item.state = ev.Status
	item.stage = ev.Stage
	item.elapsed += ev.Elapsed
	return m.bar.SetPercent(m.percent())
}

// percent is the mean per-file progress; finished files count as 1.
func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for i := range m.items {
		item := &m.items[i]
		if item.finished() {
			total++
			continue
		}
		total += stageTable[item.stage].weight
	}
	return total / float64(len(m.items))
}

func statusStyle(item *fileItem) lipgloss.Style {
	switch item.state {
	case buildpipeline.StatusDone:
		return doneStyle
	case buildpipeline.StatusError:
		return errorStyle
	case buildpipeline.StatusWorking:
		return workingStyle
	}
	return idleStyle
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	// Truncate вычитает ширину хвоста сам
	return runewidth.Truncate(value, width, "...")
}
