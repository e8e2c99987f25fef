package room

import "errors"

var (
	ErrCodeGenerationExhausted = errors.New("failed to generate unique room code")
	ErrRoomNotFound            = errors.New("room not found")
	ErrRoomFull                = errors.New("room is full")
	ErrNameTaken               = errors.New("name already taken in this room")
	ErrInvalidName             = errors.New("invalid player name")
	ErrNotHost                 = errors.New("only the host can do that")
)
