package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daytodo/internal/model"
	"github.com/sandeepkv93/daytodo/internal/store"
)

type addOptions struct {
	Day       string
	From      string
	To        string
	Deadline  string
	Remind    string
	Repeat    string
	Important bool
	Urgent    bool
}

func (o addOptions) task(title string, now time.Time) (model.Task, error) {
	day, err := parseDayArg(o.Day, now)
	if err != nil {
		return model.Task{}, err
	}
	repeat, err := model.ParseRepeat(o.Repeat)
	if err != nil {
		return model.Task{}, err
	}
	t := model.Task{Title: title, Day: day, Repeat: repeat, Important: o.Important, Urgent: o.Urgent}
	if err := t.Set(model.FieldFrom, o.From); err != nil {
		return model.Task{}, err
	}
	if err := t.Set(model.FieldTo, o.To); err != nil {
		return model.Task{}, err
	}
	if err := setStamp(&t, model.FieldDeadlineDate, model.FieldDeadlineTime, o.Deadline); err != nil {
		return model.Task{}, err
	}
	if err := setStamp(&t, model.FieldReminderDate, model.FieldReminderTime, o.Remind); err != nil {
		return model.Task{}, err
	}
	return t, t.Validate()
}

func addAdd(topLevel *cobra.Command, opts *GlobalOptions) {
	ao := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "add a task to a day",
		Example: `
daytodo add buy milk
daytodo add stand-up --day tomorrow --from 09:30 --to 09:45 --repeat daily
daytodo add report --deadline "2026-10-30 17:00" --remind 16:00 --important
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			task, err := ao.task(strings.Join(args, " "), time.Now())
			if err != nil {
				return err
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
			if err := a.requireLoaded(); err != nil {
				return err
			}

			out, err := a.store.Add(task)
			if err != nil {
				return err
			}
			if err := wait(cmd.Context(), out); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "added %q on %s\n", task.Title, task.Day)

			if !task.Repeat.IsRepeating() {
				return nil
			}
			exp, err := a.store.ExpandRepeat(task)
			if errors.Is(err, store.ErrRepeatUnsupported) {
				fmt.Fprintf(w, "repeat %s saved, not expanded\n", task.Repeat)
				return nil
			}
			if err != nil {
				return err
			}
			if err := wait(cmd.Context(), exp); err != nil {
				return err
			}
			fmt.Fprintf(w, "added %d %s copies\n", exp.Count, task.Repeat)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&ao.Day, "day", "", "YYYY-MM-DD, today, tomorrow or yesterday")
	flags.StringVar(&ao.From, "from", "", "start time HH:MM")
	flags.StringVar(&ao.To, "to", "", "end time HH:MM")
	flags.StringVar(&ao.Deadline, "deadline", "", `"YYYY-MM-DD HH:MM" or HH:MM on the task's day`)
	flags.StringVar(&ao.Remind, "remind", "", `"YYYY-MM-DD HH:MM" or HH:MM on the task's day`)
	flags.StringVar(&ao.Repeat, "repeat", "none", "none, daily, weekly or monthly")
	flags.BoolVar(&ao.Important, "important", false, "mark as important")
	flags.BoolVar(&ao.Urgent, "urgent", false, "mark as urgent")

	topLevel.AddCommand(cmd)
}

func addDone(topLevel *cobra.Command, opts *GlobalOptions) {
	var day string

	cmd := &cobra.Command{
		Use:     "done <title>",
		Aliases: []string{"toggle"},
		Short:   "toggle completion of a task",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			d, err := parseDayArg(day, time.Now())
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			a, err := openApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(); err == nil {
					err = cerr
				}
			}()
			if err := a.requireLoaded(); err != nil {
				return err
			}

			out, err := a.store.ToggleDone(d, title)
			if err != nil {
				return err
			}
			if err := wait(cmd.Context(), out); err != nil {
				return err
			}
			state := "reopened"
			if out.Count == 1 {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", state, title)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "YYYY-MM-DD, today, tomorrow or yesterday")

	topLevel.AddCommand(cmd)
}

// dayMutation runs one store operation on the day named by the optional
// positional argument.
func dayMutation(opts *GlobalOptions, op func(*store.Store, model.Day) (store.Outcome, error), report func(int) string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		raw := ""
		if len(args) > 0 {
			raw = args[0]
		}
		day, err := parseDayArg(raw, time.Now())
		if err != nil {
			return err
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
		if err := a.requireLoaded(); err != nil {
			return err
		}

		out, err := op(a.store, day)
		if errors.Is(err, store.ErrNothingCompleted) {
			fmt.Fprintln(cmd.OutOrStdout(), "no checked tasks to delete")
			return nil
		}
		if err != nil {
			return err
		}
		if err := wait(cmd.Context(), out); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report(out.Count))
		return nil
	}
}

func addClear(topLevel *cobra.Command, opts *GlobalOptions) {
	cmd := &cobra.Command{
		Use:   "clear [day]",
		Short: "delete the completed tasks of a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: dayMutation(opts, (*store.Store).DeleteCompleted, func(n int) string {
			return fmt.Sprintf("deleted %d completed %s", n, plural(n))
		}),
	}
	topLevel.AddCommand(cmd)
}

func addPurge(topLevel *cobra.Command, opts *GlobalOptions) {
	cmd := &cobra.Command{
		Use:   "purge [day]",
		Short: "delete every repeat of the completed tasks of a day",
		Long: fmt.Sprintf(`Takes the titles of the completed tasks on the day and deletes every
task with one of those titles from that day through the next %d days.`, store.RepeatSpan),
		Args: cobra.MaximumNArgs(1),
		RunE: dayMutation(opts, (*store.Store).DeleteRepeatedOccurrences, func(n int) string {
			return fmt.Sprintf("deleted %d %s across %d days", n, plural(n), store.RepeatSpan)
		}),
	}
	topLevel.AddCommand(cmd)
}

func plural(n int) string {
	if n == 1 {
		return "task"
	}
	return "tasks"
}
