package mailapi

import (
	"errors"
	"fmt"
)

var ErrUnauthorized = errors.New("mail api rejected the credentials")

// Error is a failed procedure call as reported by the mail API.
type Error struct {
	Procedure  string
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Procedure, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d", e.Procedure, e.StatusCode)
}

func (e *Error) Is(target error) bool {
	if target != ErrUnauthorized {
		return false
	}
	return e.Code == "UNAUTHORIZED" || e.StatusCode == 401
}

type errorEnvelope struct {
	Error *struct {
		JSON struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
			Data    struct {
				Code       string `json:"code"`
				HTTPStatus int    `json:"httpStatus"`
			} `json:"data"`
		} `json:"json"`
	} `json:"error"`
}

func (env errorEnvelope) toError(procedure string, statusCode int) *Error {
	apiErr := &Error{Procedure: procedure, StatusCode: statusCode}
	if env.Error == nil {
		return apiErr
	}

	apiErr.Message = env.Error.JSON.Message
	apiErr.Code = env.Error.JSON.Data.Code
	if env.Error.JSON.Data.HTTPStatus != 0 {
		apiErr.StatusCode = env.Error.JSON.Data.HTTPStatus
	}

	return apiErr
}
