package game

import "errors"

var (
	ErrRoomFull         = errors.New("room-full")
	ErrAlreadyJoined    = errors.New("already-joined")
	ErrNotInRoom        = errors.New("not-in-room")
	ErrMalformedMessage = errors.New("malformed-message")
	ErrUnknownCommand   = errors.New("unknown-command")
	ErrEmptyVocabulary  = errors.New("empty-vocabulary")
)
