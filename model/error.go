package model

import (
	"fmt"
	"regexp"

	log "github.com/sirupsen/logrus"
)

const (
	ErrorParams          = 100001
	ErrorQueryEmpty      = 100002
	ErrorQueryTooShort   = 100003
	ErrorQueryTooLong    = 100004
	ErrorQueryUnsafe     = 100005
	ErrorSessionNotFound = 100006
	ErrorNewRepo         = 100007
	ErrorDB              = 100008
	ErrorRemoteFetch     = 100009
	ErrorGeneration      = 100010
)

var ErrorMessages = map[int]string{
	ErrorParams:          "invalid request parameters",
	ErrorQueryEmpty:      "query cannot be empty",
	ErrorQueryTooShort:   "query too short",
	ErrorQueryTooLong:    "query too long",
	ErrorQueryUnsafe:     "query contains potentially unsafe content",
	ErrorSessionNotFound: "session not found",
	ErrorNewRepo:         "failed to create repository",
	ErrorDB:              "db error",
	ErrorRemoteFetch:     "report portal fetch failed",
	ErrorGeneration:      "llm generation failed",
}

type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	InnerError error  `json:"inner_error"`
}

func (err Error) Error() string {
	return err.Message
}

func NewError(code int, innerError error) *Error {
	if innerError != nil {
		var re = regexp.MustCompile(`[\n\t]+`)
		innerErrorString := re.ReplaceAllString(fmt.Sprintf("%+v", innerError), " ")
		log.Errorf("NewError code:%d, message:%s, innerError:%+v\n", code, ErrorMessages[code], innerErrorString)
	}
	return &Error{
		Code:       code,
		Message:    ErrorMessages[code],
		InnerError: nil,
	}
}

func NewErrorWithMessage(code int, message string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		InnerError: nil,
	}
}
