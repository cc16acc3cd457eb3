package status

import "errors"

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges:
//   0-999:     client errors
//   1000-1999: pipeline errors (search, prompt, completion)

const (
	BadRequestBase    ErrorCode = 0
	InternalErrorBase ErrorCode = 1000
)

// Client errors start at 0
const (
	AskInvalidBody     ErrorCode = BadRequestBase + iota // 0
	AskMissingQuestion                                   // 1
)

// Pipeline errors start at 1000
const (
	SearchServiceFailed         ErrorCode = InternalErrorBase + iota // 1000
	SearchMalformedResponse                                          // 1001
	PromptIndexFieldMissing                                          // 1002
	PromptSourceFieldMissing                                         // 1003
	CompletionServiceFailed                                          // 1004
	CompletionMalformedResponse                                      // 1005
)

const (
	ErrorCodeInternal ErrorCode = 9000
)

// CodedError represents an error with an associated ErrorCode
type CodedError interface {
	error
	ErrorCode() ErrorCode
}

type codedError struct {
	code ErrorCode
	err  error
}

func (e codedError) Error() string        { return e.err.Error() }
func (e codedError) Unwrap() error        { return e.err }
func (e codedError) ErrorCode() ErrorCode { return e.code }

// New creates a new CodedError with the given code and underlying error
func New(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return codedError{code: code, err: err}
}

// CodeOf returns the code of the first CodedError in err's chain, or
// ErrorCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var ce CodedError
	if errors.As(err, &ce) {
		return ce.ErrorCode()
	}
	return ErrorCodeInternal
}
