package rounding

import "errors"

var (
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrProblemNotFound   = errors.New("problem not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrChecklistKey      = errors.New("unknown checklist item")
	ErrLastSheet         = errors.New("cannot remove the last sheet")
	ErrInvalidSheet      = errors.New("invalid sheet")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrSchemaVersion     = errors.New("workspace schema version mismatch")
)
