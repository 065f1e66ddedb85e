package service

import "errors"

// ErrEmptyMessage is returned for blank user messages
var ErrEmptyMessage = errors.New("message is empty")
