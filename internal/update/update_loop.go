package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daytodo/internal/model"
	"github.com/sandeepkv93/daytodo/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.engine != nil {
		return waitForAlarmCmd(m.engine.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		if m.Adding {
			return m.handleAddKey(typed)
		}
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.PendingSaves > 0 {
			var cmd tea.Cmd
			m.saveSpinner, cmd = m.saveSpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case SavedMsg:
		if m.PendingSaves > 0 {
			m.PendingSaves--
		}
		if typed.Err != nil {
			m.fail(fmt.Errorf("%s: %w", typed.Op, typed.Err))
		}
		return m, nil
	case AlarmMsg:
		m.onAlarm(typed.Alarm)
		if m.engine != nil {
			return m, waitForAlarmCmd(m.engine.C())
		}
		return m, nil
	case SetStatusMsg:
		m.setStatus(typed.Text, typed.IsError)
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			m.fail(typed.Err)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleAddKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Adding = false
		m.addInput.Blur()
		m.addInput.SetValue("")
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.addInput.Value())
		m.Adding = false
		m.addInput.Blur()
		m.addInput.SetValue("")
		if title == "" {
			return m, nil
		}
		return m, m.addTask(title)
	}
	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case "/":
		return m.openPalette(), nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case "a":
		m.Adding = true
		m.addInput.SetValue("")
		return m, m.addInput.Focus()
	case "h", "left":
		m.gotoDay(m.Day.AddDays(-1))
	case "l", "right":
		m.gotoDay(m.Day.AddDays(1))
	case "H":
		m.gotoDay(m.Day.AddDays(-7))
	case "L":
		m.gotoDay(m.Day.AddDays(7))
	case "t":
		m.gotoDay(m.syncToday())
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "enter":
		m.DetailVisible = !m.DetailVisible
		m.syncDetail()
	case " ":
		return m, m.toggleSelected()
	case "x":
		return m, m.deleteSelected()
	case "C":
		return m, m.clearCompleted()
	case "P":
		return m, m.purgeRepeated()
	case "r":
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		return m, m.setRepeat(m.Cursor, t.Repeat.Next())
	case "i":
		return m, m.toggleFlag(model.FieldImportant)
	case "u":
		return m, m.toggleFlag(model.FieldUrgent)
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	m.syncToday()
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	header := fmt.Sprintf("daytodo | %s | today %s", m.Day.Label(), m.Today.Label())
	if m.PendingSaves > 0 {
		header += " | " + m.saveSpinner.View() + " saving"
	}
	notification := strings.TrimSpace(strings.Join([]string{
		m.lastAlarmLine(),
		m.renderNotificationsView(),
	}, "\n"))

	return views.RenderApp(views.AppData{
		Header:       header,
		WeekStrip:    m.renderWeekStrip(),
		LeftPane:     m.renderTaskPanel(),
		RightPane:    m.renderRightPane(),
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notification,
		Footer:       fmt.Sprintf("keys: h/l day | a add | space done | x del | r repeat | / cmd | %s help | %s quit", m.Keys.Help, m.Keys.Quit),
	})
}
