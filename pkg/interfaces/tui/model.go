// Package tui is an interactive terminal viewer for the production schedule.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vsinha/prodschedule/pkg/application/dto"
	"github.com/vsinha/prodschedule/pkg/application/services"
	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/repositories"
	"github.com/vsinha/prodschedule/pkg/domain/services/schedule"
	"github.com/vsinha/prodschedule/pkg/interfaces/cli/output"
	"github.com/vsinha/prodschedule/pkg/interfaces/styles"
)

// SnapshotMsg carries a full order snapshot from the subscription
type SnapshotMsg struct {
	Orders []*entities.Order
}

// SubscriptionClosedMsg is sent once the subscription stops delivering
type SubscriptionClosedMsg struct{}

// ReadFailedMsg reports that the order source could not be read. The
// timeline is expected to have been marked stale already.
type ReadFailedMsg struct {
	Reason string
}

const helpText = "←/h 이전 달 · →/l 다음 달 · / 검색 · t 오늘 · q 종료"

// Model is the Bubble Tea model for the schedule viewer
type Model struct {
	timeline *services.TimelineService
	sub      repositories.Subscription
	clock    func() time.Time

	input     textinput.Model
	searching bool
	// query in effect when search mode was entered; esc restores it
	prevQuery string

	result *dto.ScheduleResult
	closed bool
	width  int
	height int
}

// NewModel creates a viewer over timeline. sub may be nil for a static
// snapshot already loaded into the timeline.
func NewModel(timeline *services.TimelineService, sub repositories.Subscription, clock func() time.Time) Model {
	if clock == nil {
		clock = time.Now
	}

	ti := textinput.New()
	ti.Placeholder = "제품, 요청자, 상태..."
	ti.Prompt = "검색: "
	ti.CharLimit = 128
	ti.Width = 40
	ti.SetValue(timeline.Query())

	return Model{
		timeline: timeline,
		sub:      sub,
		clock:    clock,
		input:    ti,
		result:   timeline.Layout(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.listenForSnapshots()
}

// listenForSnapshots waits for the next snapshot from the subscription
func (m Model) listenForSnapshots() tea.Cmd {
	if m.sub == nil {
		return nil
	}
	snapshots := m.sub.Snapshots()
	return func() tea.Msg {
		orders, ok := <-snapshots
		if !ok {
			return SubscriptionClosedMsg{}
		}
		return SnapshotMsg{Orders: orders}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case SnapshotMsg:
		m.timeline.Load(msg.Orders)
		m.result = m.timeline.Layout()
		return m, m.listenForSnapshots()

	case SubscriptionClosedMsg:
		m.closed = true
		return m, nil

	case ReadFailedMsg:
		if current := m.timeline.Current(); current != nil {
			m.result = current
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleKeys(msg)
	}

	if m.searching {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeys handles keys while browsing the chart.
func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "left", "h":
		m.result = m.timeline.Navigate(schedule.Prev)

	case "right", "l":
		m.result = m.timeline.Navigate(schedule.Next)

	case "t":
		m.result = m.timeline.Today()

	case "/":
		m.searching = true
		m.prevQuery = m.timeline.Query()
		m.input.SetValue(m.prevQuery)
		m.input.CursorEnd()
		m.input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// handleSearchKeys handles keys while the search box is focused. The query
// is applied on every keystroke.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		m.searching = false
		m.input.Blur()
		return m, nil

	case "esc":
		m.searching = false
		m.input.Blur()
		m.input.SetValue(m.prevQuery)
		m.result = m.timeline.ShiftSearchQuery(m.prevQuery)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.timeline.Query() {
		m.result = m.timeline.ShiftSearchQuery(m.input.Value())
	}
	return m, cmd
}

// Searching reports whether the search box has focus
func (m Model) Searching() bool {
	return m.searching
}

// Result returns the schedule currently shown
func (m Model) Result() *dto.ScheduleResult {
	return m.result
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	if m.result != nil {
		b.WriteString(output.RenderTerminal(m.result, m.clock()))
	}

	if m.searching || m.input.Value() != "" {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.closed {
		b.WriteString(styles.WarningStyle.Render("실시간 갱신이 중단되었습니다"))
		b.WriteString("\n")
	}
	b.WriteString(styles.SubtleStyle.Render(helpText))
	return b.String()
}
