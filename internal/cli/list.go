package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daytodo/internal/model"
)

var (
	headerColor = color.New(color.Bold, color.Underline)
	dayColor    = color.New(color.Bold)
	doneColor   = color.New(color.Faint, color.CrossedOut)
	flagColor   = color.New(color.FgHiYellow)
)

func addList(topLevel *cobra.Command, opts *GlobalOptions) {
	var all bool

	cmd := &cobra.Command{
		Use:     "list [day]",
		Aliases: []string{"ls"},
		Short:   "list the tasks of a day",
		Example: `
daytodo list
daytodo list tomorrow
daytodo list --all
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var days []model.Day
			if !all {
				raw := ""
				if len(args) > 0 {
					raw = args[0]
				}
				day, err := parseDayArg(raw, time.Now())
				if err != nil {
					return err
				}
				days = []model.Day{day}
			}

			a, err := openApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(); err == nil {
					err = cerr
				}
			}()
			if warn := loadWarning(a); warn != nil {
				return warn
			}
			if all {
				days = a.store.Days()
			}

			w := cmd.OutOrStdout()
			for i, day := range days {
				if i > 0 {
					fmt.Fprintln(w)
				}
				printDay(w, day, a.store.QueryByDate(day))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every day holding tasks")

	topLevel.AddCommand(cmd)
}

func printDay(w io.Writer, day model.Day, tasks []model.Task) {
	fmt.Fprintln(w, dayColor.Sprintf("%s (%s)", day.Label(), day))
	if len(tasks) == 0 {
		fmt.Fprintln(w, "  no tasks")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(headerColor.Sprint("#"), headerColor.Sprint("Done"), headerColor.Sprint("Title"),
		headerColor.Sprint("Time"), headerColor.Sprint("Deadline"), headerColor.Sprint("Reminder"),
		headerColor.Sprint("Repeat"), headerColor.Sprint("Flags"))
	for i, t := range tasks {
		box, title := "[ ]", t.Title
		if t.Done {
			box, title = "[x]", doneColor.Sprint(t.Title)
		}
		tbl.AddRow(i+1, box, title, timeRange(t), t.Deadline.String(), t.Reminder.String(),
			string(t.Repeat.Normalize()), flags(t))
	}
	fmt.Fprintln(w, tbl)
}

func timeRange(t model.Task) string {
	switch {
	case t.HasTimeRange():
		return fmt.Sprintf("%s-%s", t.From, t.To)
	case !t.From.IsZero():
		return t.From.String()
	default:
		return ""
	}
}

func flags(t model.Task) string {
	var out []string
	if t.Important {
		out = append(out, "important")
	}
	if t.Urgent {
		out = append(out, "urgent")
	}
	if len(out) == 0 {
		return ""
	}
	return flagColor.Sprint(strings.Join(out, ","))
}
