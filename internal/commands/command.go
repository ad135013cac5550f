package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/daytodo/internal/model"
)

type Type string

const (
	TypeAdd    Type = "add"
	TypeDone   Type = "done"
	TypeDelete Type = "del"
	TypeSet    Type = "set"
	TypeRepeat Type = "repeat"
	TypeClear  Type = "clear"
	TypePurge  Type = "purge"
	TypeGoto   Type = "goto"
	TypeNotify Type = "notify"
)

var aliases = map[string]Type{
	"delete": TypeDelete,
	"rm":     TypeDelete,
	"toggle": TypeDone,
	"go":     TypeGoto,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Title string
}

// TargetArgs addresses a task by its 1-based row in the current day.
type TargetArgs struct {
	Row int
}

// Index is the 0-based position of the row.
func (a TargetArgs) Index() int { return a.Row - 1 }

type SetArgs struct {
	TargetArgs
	Field model.Field
	Value string
}

type RepeatArgs struct {
	TargetArgs
	Repeat model.Repeat
}

type GotoArgs struct {
	Day   model.Day
	Today bool
}

type NotifyArgs struct {
	Title string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Set    *SetArgs
	Repeat *RepeatArgs
	Goto   *GotoArgs
	Notify *NotifyArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := Type(strings.ToLower(parts[0]))
	if alias, ok := aliases[string(head)]; ok {
		head = alias
	}
	args := parts[1:]

	switch head {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeDelete:
		return parseTarget(input, head, args)
	case TypeSet:
		return parseSet(input, args)
	case TypeRepeat:
		return parseRepeat(input, args)
	case TypeClear, TypePurge:
		if len(args) > 0 {
			return Command{}, invalid("%s takes no arguments", head)
		}
		return Command{Type: head, Raw: input}, nil
	case TypeGoto:
		return parseGoto(input, args)
	case TypeNotify:
		return parseNotify(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseRow(verb Type, arg string) (TargetArgs, error) {
	row, err := strconv.Atoi(arg)
	if err != nil || row < 1 {
		return TargetArgs{}, invalid("%s expects a row number, got %q", verb, arg)
	}
	return TargetArgs{Row: row}, nil
}

func parseTarget(raw string, verb Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires a row number", verb)
	}
	target, err := parseRow(verb, args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: verb, Raw: raw, Target: &target}, nil
}

func parseSet(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("set requires a row, a field and a value")
	}
	target, err := parseRow(TypeSet, args[0])
	if err != nil {
		return Command{}, err
	}
	field, err := model.ParseField(args[1])
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	value := strings.TrimSpace(strings.Join(args[2:], " "))
	if value == "" && field == model.FieldTitle {
		return Command{}, invalid("set title requires a value")
	}
	return Command{Type: TypeSet, Raw: raw, Set: &SetArgs{TargetArgs: target, Field: field, Value: value}}, nil
}

func parseRepeat(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("repeat requires a row and none|daily|weekly|monthly")
	}
	target, err := parseRow(TypeRepeat, args[0])
	if err != nil {
		return Command{}, err
	}
	kind, err := model.ParseRepeat(args[1])
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	return Command{Type: TypeRepeat, Raw: raw, Repeat: &RepeatArgs{TargetArgs: target, Repeat: kind}}, nil
}

func parseGoto(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("goto requires YYYY-MM-DD or today")
	}
	if strings.EqualFold(args[0], "today") {
		return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Today: true}}, nil
	}
	day, err := model.ParseDay(args[0])
	if err != nil {
		return Command{}, invalid("%v", err)
	}
	return Command{Type: TypeGoto, Raw: raw, Goto: &GotoArgs{Day: day}}, nil
}

func parseNotify(raw string, args []string) (Command, error) {
	if len(args) == 0 || strings.ToLower(args[0]) != "test" {
		return Command{}, invalid("usage: notify test [title]")
	}
	return Command{Type: TypeNotify, Raw: raw, Notify: &NotifyArgs{Title: strings.Join(args[1:], " ")}}, nil
}
