package models

import "errors"

// ErrNotFound is the parent of every lookup miss so callers can test for it
// without caring whether a law or an article was missing
var ErrNotFound = errors.New("not found")

var (
	ErrLawNotFound     = notFound("law not found")
	ErrArticleNotFound = notFound("article not found")
	ErrSessionNotFound = notFound("session not found")
	ErrBlankLawName    = errors.New("law name is empty")
	ErrDataCorruption  = errors.New("persisted law data is corrupt")
)

type notFoundError struct {
	msg string
}

func notFound(msg string) error { return &notFoundError{msg: msg} }

func (e *notFoundError) Error() string { return e.msg }

// Is reports whether target is ErrNotFound
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }
