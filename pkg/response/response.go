package response

// Response represents the standard API envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"` // cause detail, development mode only
}

// Success returns a standard success response wrapping the data
func Success(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// SuccessMessage returns a success response carrying only a message
func SuccessMessage(message string) Response {
	return Response{
		Success: true,
		Message: message,
	}
}

// Error returns a standard error response wrapping the error message
func Error(message string) Response {
	return Response{
		Success: false,
		Message: message,
	}
}

// ErrorWithDetail adds the underlying cause, for development builds
func ErrorWithDetail(message, detail string) Response {
	return Response{
		Success: false,
		Message: message,
		Error:   detail,
	}
}
