package sdk

import "encoding/json"

// StatusType marks a response as success or error
type StatusType string

const (
	StatusSuccess StatusType = "success"
	StatusError   StatusType = "error"
)

// ApiResponse represents a standard API response structure
type ApiResponse[T any] struct {
	Status  StatusType `json:"status"`          // Status message
	Code    int        `json:"code"`            // Status code
	Message string     `json:"message"`         // Human-readable message
	Data    T          `json:"data,omitempty"`  // Optional data field for successful responses
	Error   any        `json:"error,omitempty"` // Optional errors field for error responses
}

// AsGinResponse converts the ApiResponse to a format suitable for Gin framework
func (r ApiResponse[T]) AsGinResponse() (int, any) {
	return r.Code, r
}

// AsJSON converts the ApiResponse to a format suitable for JSON responses
func (r ApiResponse[T]) AsJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func NewSuccess(message string) ApiResponse[any] {
	return ApiResponse[any]{
		Status:  StatusSuccess,
		Code:    200,
		Message: message,
	}
}

func NewSuccessResponse[T any](message string, data T) ApiResponse[T] {
	return ApiResponse[T]{
		Status:  StatusSuccess,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(code int, message string, err any) ApiResponse[any] {
	resp := ApiResponse[any]{
		Status:  StatusError,
		Code:    code,
		Message: message,
	}

	// Errors are rendered as strings so the envelope stays JSON-serializable
	if e, ok := err.(error); ok {
		resp.Error = e.Error()
	} else {
		resp.Error = err
	}

	return resp
}
