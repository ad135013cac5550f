package update

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/daytodo/internal/model"
	"github.com/sandeepkv93/daytodo/internal/scheduler"
	"github.com/sandeepkv93/daytodo/internal/store"
)

// saveTimeout bounds how long a save command waits on the writer.
const saveTimeout = 10 * time.Second

const maxNotifications = 40

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Help string
	Quit string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type DesktopNotifier interface {
	Send(Notification) error
	Available() bool
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }
func (NoopDesktopNotifier) Available() bool         { return true }

// ExecDesktopNotifier shells out to notify-send on Linux and osascript on
// macOS.
type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) tool() string {
	switch runtime.GOOS {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}

func (n ExecDesktopNotifier) Available() bool {
	tool := n.tool()
	if tool == "" {
		return false
	}
	_, err := exec.LookPath(tool)
	return err == nil
}

func (n ExecDesktopNotifier) Send(msg Notification) error {
	switch n.tool() {
	case "notify-send":
		return exec.Command("notify-send", msg.Title, msg.Body).Run()
	case "osascript":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(msg.Body), escapeAppleScript(msg.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return fmt.Errorf("desktop notifications unsupported on %s", runtime.GOOS)
	}
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// SavedMsg reports the persistence result of one store mutation.
type SavedMsg struct {
	Op    string
	Count int
	Err   error
}

// AlarmMsg carries an alarm fired by the scheduler engine.
type AlarmMsg struct {
	Alarm scheduler.Alarm
}

type Deps struct {
	Store     *store.Store
	Engine    *scheduler.Engine
	Notifier  *scheduler.Notifier
	Desktop   DesktopNotifier
	Logger    *log.Logger
	Now       func() time.Time
	WeekStart time.Weekday
	// DesktopNotifications forwards alarms and errors to Desktop.
	DesktopNotifications bool
}

type Model struct {
	Day            model.Day
	Today          model.Day
	Tasks          []model.Task
	Cursor         int
	Palette        CommandPaletteState
	Adding         bool
	DetailVisible  bool
	HelpVisible    bool
	Status         StatusBar
	Notifications  []Notification
	AlarmLog       []scheduler.Alarm
	DesktopEnabled bool
	Keys           GlobalKeyMap
	Quitting       bool
	LastError      error
	PendingSaves   int

	store     *store.Store
	engine    *scheduler.Engine
	alarms    *scheduler.Notifier
	notifier  DesktopNotifier
	logger    *log.Logger
	now       func() time.Time
	weekStart time.Weekday

	addInput     textinput.Model
	commandInput textinput.Model
	helpModel    help.Model
	detailView   viewport.Model
	saveSpinner  spinner.Model
}

func NewModel(deps Deps) Model {
	m := Model{
		DesktopEnabled: deps.DesktopNotifications,
		Keys:           GlobalKeyMap{Help: "?", Quit: "q"},
		store:          deps.Store,
		engine:         deps.Engine,
		alarms:         deps.Notifier,
		notifier:       deps.Desktop,
		logger:         deps.Logger,
		now:            deps.Now,
		weekStart:      deps.WeekStart,
	}
	if m.notifier == nil {
		m.notifier = NoopDesktopNotifier{}
	}
	if m.logger == nil {
		m.logger = log.New(io.Discard)
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.Today = model.DayOf(m.now())
	m.Day = m.Today
	m.initBubbleComponents()
	m.refresh()
	if m.DesktopEnabled && !m.notifier.Available() {
		m.DesktopEnabled = false
		m.setStatus("desktop notifier not found, alarms stay in the app", true)
	}
	return m
}

func (m *Model) initBubbleComponents() {
	m.addInput = textinput.New()
	m.addInput.Prompt = "add> "
	m.addInput.Placeholder = "task title"
	m.addInput.CharLimit = 256
	m.addInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 44

	m.helpModel = help.New()
	m.helpModel.ShowAll = true

	m.detailView = viewport.New(48, 12)

	m.saveSpinner = spinner.New()
	m.saveSpinner.Spinner = spinner.Dot
}
