package service

// Error is a domain failure with a stable machine-readable code. Handlers map
// codes to HTTP statuses; clients use them to pick the remedial UI action.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrRoomCodeTooShort = &Error{Code: "ROOM_CODE_TOO_SHORT", Message: "room code must be at least 3 characters"}
	ErrRoomCodeTooLong  = &Error{Code: "ROOM_CODE_TOO_LONG", Message: "room code must be at most 12 characters"}
	ErrRoomCodeInvalid  = &Error{Code: "ROOM_CODE_INVALID", Message: "room code may only contain letters and digits"}
	ErrRoomCodeReserved = &Error{Code: "ROOM_CODE_RESERVED", Message: "room code is reserved"}
	ErrRoomNotFound     = &Error{Code: "ROOM_NOT_FOUND", Message: "room not found"}
	ErrRoomFull         = &Error{Code: "ROOM_FULL", Message: "room is at its member limit"}
	ErrRoomLocked       = &Error{Code: "ROOM_LOCKED", Message: "room is closed to new members"}
	ErrRoomInviteOnly   = &Error{Code: "ROOM_INVITE_ONLY", Message: "room requires an invite code"}
	ErrDuplicateName    = &Error{Code: "DUPLICATE_NAME", Message: "display name is already taken in this room"}
	ErrNotCreator       = &Error{Code: "NOT_CREATOR", Message: "only the room creator may do this"}

	ErrJoinRequired = &Error{Code: "JOIN_REQUIRED", Message: "join the room before writing to its ledger"}
	ErrNotAMember   = &Error{Code: "NOT_A_MEMBER", Message: "not a member of this room"}

	ErrNothingToUndo     = &Error{Code: "NOTHING_TO_UNDO", Message: "no entry to undo"}
	ErrUndoWindowElapsed = &Error{Code: "UNDO_WINDOW_ELAPSED", Message: "the undo window for this entry has elapsed"}

	ErrFocusAreasInvalid = &Error{Code: "FOCUS_AREAS_INVALID", Message: "weekly focus needs 2 or 3 distinct non-empty areas"}
	ErrFocusAlreadySet   = &Error{Code: "FOCUS_ALREADY_SET", Message: "weekly focus is already locked for this week"}

	ErrConfirmationRequired = &Error{Code: "CONFIRMATION_REQUIRED", Message: "leaving a room must be confirmed"}
	ErrDisplayNameInvalid   = &Error{Code: "DISPLAY_NAME_INVALID", Message: "display name must not be empty"}
)
