package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/daytodo/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	nav := toKeyBindings(m.navigationBindings())
	tasks := toKeyBindings(m.taskBindings())
	var plain []string
	for _, kb := range m.globalBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: nav,
			full:  [][]key.Binding{nav, tasks},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) navigationBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "h/l", Action: "previous/next day"},
		{Key: "H/L", Action: "previous/next week"},
		{Key: "t", Action: "jump to today"},
		{Key: "j/k", Action: "move cursor"},
		{Key: "enter", Action: "toggle detail"},
	}
}

func (m Model) taskBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "a", Action: "add task"},
		{Key: "space", Action: "toggle done"},
		{Key: "x", Action: "delete task"},
		{Key: "r", Action: "cycle repeat"},
		{Key: "i/u", Action: "toggle important/urgent"},
		{Key: "C", Action: "delete completed"},
		{Key: "P", Action: "delete repeats of completed"},
	}
}

func toKeyBindings(kbs []KeyBinding) []key.Binding {
	out := make([]key.Binding, 0, len(kbs))
	for _, kb := range kbs {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
