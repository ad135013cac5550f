package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dayStyle      = lipgloss.NewStyle().Padding(0, 1)
	selectedDay   = dayStyle.Reverse(true)
	todayDay      = dayStyle.Underline(true)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Faint(true)
	importantMark = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render("!")
	urgentMark    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render("*")
)

type DayCell struct {
	Label    string
	Count    int
	Selected bool
	Today    bool
}

type TaskRowData struct {
	Title     string
	Done      bool
	TimeRange string
	Deadline  string
	Reminder  string
	Repeat    string
	Important bool
	Urgent    bool
}

type TaskPanelData struct {
	Day     string
	Rows    []TaskRowData
	Cursor  int
	AddView string
	Adding  bool
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

// RenderWeekStrip draws the seven days of the visible week on one line.
func RenderWeekStrip(cells []DayCell) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		label := c.Label
		if c.Count > 0 {
			label = fmt.Sprintf("%s (%d)", label, c.Count)
		}
		style := dayStyle
		switch {
		case c.Selected:
			style = selectedDay
		case c.Today:
			style = todayDay
		}
		parts = append(parts, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks for %s:\n", data.Day))
	if data.Adding {
		b.WriteString(data.AddView + "\n")
	}
	if len(data.Rows) == 0 {
		b.WriteString("  (no tasks, press a to add one)")
		return b.String()
	}
	for i, row := range data.Rows {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %d. %s\n", cursor, i+1, renderTaskRow(row)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func renderTaskRow(row TaskRowData) string {
	box := "[ ]"
	if row.Done {
		box = "[x]"
	}
	title := row.Title
	if row.Done {
		title = doneStyle.Render(title)
	}
	var marks string
	if row.Important {
		marks += importantMark
	}
	if row.Urgent {
		marks += urgentMark
	}
	parts := []string{box, title}
	if marks != "" {
		parts = append(parts, marks)
	}
	if row.TimeRange != "" {
		parts = append(parts, "@"+row.TimeRange)
	}
	if row.Deadline != "" {
		parts = append(parts, "due:"+row.Deadline)
	}
	if row.Reminder != "" {
		parts = append(parts, "remind:"+row.Reminder)
	}
	if row.Repeat != "" && row.Repeat != "none" {
		parts = append(parts, "("+row.Repeat+")")
	}
	return strings.Join(parts, " ")
}

// TaskMarkdown renders one task as markdown for the detail panel.
func TaskMarkdown(row TaskRowData) string {
	var b strings.Builder
	b.WriteString("### " + row.Title + "\n\n")
	state := "open"
	if row.Done {
		state = "done"
	}
	b.WriteString(fmt.Sprintf("- **state**: %s\n", state))
	writeField := func(name, value string) {
		if value == "" {
			value = "_unset_"
		}
		b.WriteString(fmt.Sprintf("- **%s**: %s\n", name, value))
	}
	writeField("time", row.TimeRange)
	writeField("deadline", row.Deadline)
	writeField("reminder", row.Reminder)
	writeField("repeat", row.Repeat)
	flags := make([]string, 0, 2)
	if row.Important {
		flags = append(flags, "important")
	}
	if row.Urgent {
		flags = append(flags, "urgent")
	}
	writeField("flags", strings.Join(flags, ", "))
	return b.String()
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command:\n" + inputView
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s\n\n%s", strings.Join(data.Bindings, "\n"), data.HelpView)
}
