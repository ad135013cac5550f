package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/daytodo/internal/commands"
)

func (m Model) openPalette() Model {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.setStatus("command palette active", false)
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.setStatus("command palette closed", false)
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	m.Palette.Input = m.commandInput.Value()
	return m, cmd
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}

	var pending []tea.Cmd
	collect := func(c tea.Cmd, failed bool) (commands.Result, error) {
		if c != nil {
			pending = append(pending, c)
		}
		if failed {
			return commands.Result{}, m.LastError
		}
		return commands.Result{Message: m.Status.Text}, nil
	}
	// run clears LastError so a handler's own failure is distinguishable.
	run := func(f func() tea.Cmd) (commands.Result, error) {
		m.LastError = nil
		c := f()
		return collect(c, m.LastError != nil)
	}
	checkRow := func(t commands.TargetArgs) error {
		if t.Index() < 0 || t.Index() >= len(m.Tasks) {
			return &commands.CommandError{
				Code:    commands.ErrCodeInvalidArgument,
				Message: fmt.Sprintf("no task at row %d", t.Row),
			}
		}
		return nil
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			return run(func() tea.Cmd { return m.addTask(a.Title) })
		},
		Done: func(t commands.TargetArgs) (commands.Result, error) {
			if err := checkRow(t); err != nil {
				return commands.Result{}, err
			}
			m.Cursor = t.Index()
			return run(m.toggleSelected)
		},
		Delete: func(t commands.TargetArgs) (commands.Result, error) {
			if err := checkRow(t); err != nil {
				return commands.Result{}, err
			}
			m.Cursor = t.Index()
			return run(m.deleteSelected)
		},
		Set: func(s commands.SetArgs) (commands.Result, error) {
			if err := checkRow(s.TargetArgs); err != nil {
				return commands.Result{}, err
			}
			m.Cursor = s.Index()
			return run(func() tea.Cmd { return m.editAt(s.Index(), s.Field, s.Value) })
		},
		Repeat: func(r commands.RepeatArgs) (commands.Result, error) {
			if err := checkRow(r.TargetArgs); err != nil {
				return commands.Result{}, err
			}
			m.Cursor = r.Index()
			return run(func() tea.Cmd { return m.setRepeat(r.Index(), r.Repeat) })
		},
		Clear: func() (commands.Result, error) {
			return run(m.clearCompleted)
		},
		Purge: func() (commands.Result, error) {
			return run(m.purgeRepeated)
		},
		Goto: func(g commands.GotoArgs) (commands.Result, error) {
			day := g.Day
			if g.Today {
				day = m.syncToday()
			}
			m.gotoDay(day)
			return commands.Result{Message: fmt.Sprintf("showing %s", m.Day.Label())}, nil
		},
		Notify: func(n commands.NotifyArgs) (commands.Result, error) {
			if m.alarms == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeHandlerMissing, Message: "scheduler not running"}
			}
			if err := m.alarms.Test(n.Title); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "test notification scheduled"}, nil
		},
	})
	if err != nil {
		if err != m.LastError {
			m.notify("Command Failed", err.Error(), "error")
		}
		m.setStatus(err.Error(), true)
		return m, tea.Batch(pending...)
	}
	m.setStatus(res.Message, false)
	return m, tea.Batch(pending...)
}
