package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add    func(AddArgs) (Result, error)
	Done   func(TargetArgs) (Result, error)
	Delete func(TargetArgs) (Result, error)
	Set    func(SetArgs) (Result, error)
	Repeat func(RepeatArgs) (Result, error)
	Clear  func() (Result, error)
	Purge  func() (Result, error)
	Goto   func(GotoArgs) (Result, error)
	Notify func(NotifyArgs) (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(*cmd.Target)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Delete(*cmd.Target)
	case TypeSet:
		if handlers.Set == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Set(*cmd.Set)
	case TypeRepeat:
		if handlers.Repeat == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Repeat(*cmd.Repeat)
	case TypeClear:
		if handlers.Clear == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Clear()
	case TypePurge:
		if handlers.Purge == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Purge()
	case TypeGoto:
		if handlers.Goto == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Goto(*cmd.Goto)
	case TypeNotify:
		if handlers.Notify == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Notify(*cmd.Notify)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
