package core

// ErrorCode is an in-band room error code delivered to the offending
// sender. In-band errors never close the connection.
type ErrorCode string

const (
	CodeInCall        ErrorCode = "IN_CALL"
	CodeInvalidRoom   ErrorCode = "INVALID_ROOM"
	CodeForbiddenRoom ErrorCode = "FORBIDDEN_ROOM"
	CodeSignalInvalid ErrorCode = "SIGNAL_INVALID"
)

// RoomError is reported back to the sender as a room-error frame.
type RoomError struct {
	Code    ErrorCode
	Message string
}

func (e *RoomError) Error() string { return string(e.Code) + ": " + e.Message }

func ErrInCall(msg string) *RoomError        { return &RoomError{Code: CodeInCall, Message: msg} }
func ErrInvalidRoom(msg string) *RoomError   { return &RoomError{Code: CodeInvalidRoom, Message: msg} }
func ErrForbiddenRoom(msg string) *RoomError { return &RoomError{Code: CodeForbiddenRoom, Message: msg} }
func ErrSignalInvalid(msg string) *RoomError { return &RoomError{Code: CodeSignalInvalid, Message: msg} }
