package gridsheet

// AppErrorCode represents gRPC-style error codes for application-level
// errors. these cover structural violations callers are expected to
// pre-validate (deleting the last sheet, freezing past the grid edge),
// not formula errors.
type AppErrorCode int

const (
	// OK indicates the operation completed successfully.
	OK AppErrorCode = 0

	// Unknown error. errors raised by APIs that do not return enough error
	// information may be converted to this error.
	Unknown AppErrorCode = 2

	// InvalidArgument indicates the caller specified an invalid argument.
	InvalidArgument AppErrorCode = 3

	// NotFound means some requested entity (e.g. a sheet) was not found.
	NotFound AppErrorCode = 5

	// AlreadyExists means an attempt to create an entity failed because one
	// already exists.
	AlreadyExists AppErrorCode = 6

	// FailedPrecondition indicates the operation was rejected because the
	// workbook is not in a state required for the operation's execution.
	FailedPrecondition AppErrorCode = 9

	// OutOfRange means the operation was attempted past the valid range.
	OutOfRange AppErrorCode = 11

	// Internal errors. some invariant expected by the engine has been broken.
	Internal AppErrorCode = 13
)

// AppError represents errors at the application level (not in-cell
// formula errors).
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewAppError creates a new application error.
func NewAppError(code AppErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// ErrorCode represents the in-cell error taxonomy. these are values, not
// Go errors: once attached to a cell they flow through dependent formulas
// like any other value.
type ErrorCode uint8

const (
	ErrorCodeParse    ErrorCode = 1 // #PARSE! - malformed formula text
	ErrorCodeCircular ErrorCode = 2 // #CIRCULAR! - reentrancy guard trip
	ErrorCodeDiv0     ErrorCode = 3 // #DIV/0! - infinite evaluation result
	ErrorCodeNum      ErrorCode = 4 // #NUM! - non-finite evaluation result
	ErrorCodeRef      ErrorCode = 5 // #REF! - unknown sheet or bad reference
	ErrorCodeEval     ErrorCode = 6 // #ERROR! - catch-all evaluation failure
)

// ErrorMapper maps error codes to their display strings.
var ErrorMapper = map[ErrorCode]string{
	ErrorCodeParse:    "#PARSE!",
	ErrorCodeCircular: "#CIRCULAR!",
	ErrorCodeDiv0:     "#DIV/0!",
	ErrorCodeNum:      "#NUM!",
	ErrorCodeRef:      "#REF!",
	ErrorCodeEval:     "#ERROR!",
}

// CellError preserves an error code for display in cells.
type CellError struct {
	Code    ErrorCode
	Message string
}

func (e *CellError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return ErrorMapper[e.Code]
}

// NewCellError creates a new in-cell error value.
func NewCellError(code ErrorCode, message string) *CellError {
	if message == "" {
		message = ErrorMapper[code]
	}
	return &CellError{
		Code:    code,
		Message: message,
	}
}

// IsCellError reports whether a value is an in-cell error.
func IsCellError(v Value) bool {
	_, ok := v.(*CellError)
	return ok
}
