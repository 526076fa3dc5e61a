package response

import "audittracker/internal/apperror"

// Response is the uniform API envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorBody is the error part of the envelope.
type ErrorBody struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	Details []apperror.FieldError `json:"details,omitempty"`
}

// Meta carries pagination information for list responses.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Success wraps data in a success envelope
func Success(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// SuccessWithPagination wraps a page of results together with paging metadata
func SuccessWithPagination(data interface{}, page, limit int, total int64) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Page: page, Limit: limit, Total: total},
	}
}

// Error builds an error envelope from a classified error
func Error(err *apperror.Error) Response {
	return Response{
		Success: false,
		Error: &ErrorBody{
			Code:    err.Code,
			Message: err.Message,
			Details: err.Details,
		},
	}
}
