package errors

// ErrorCode is a stable, machine-readable error identifier. Codes show up in
// logs and in settings CLI responses.
type ErrorCode string

// Coder is anything that carries an ErrorCode.
type Coder interface {
	Code() ErrorCode
}

// Error is a coded error with an optional message override, payload and
// cause. Two Errors match under Is when their codes are equal.
type Error interface {
	error
	Coder
	Is(target error) bool
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory creates Errors.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
