package render

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Envelope wraps every JSON body the API returns
type Envelope struct {
	TimeStamp  string `json:"timeStamp"`
	StatusCode int    `json:"statusCode"`
	HTTPStatus string `json:"httpStatus"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, code int, message string, data any) {
	response := Envelope{
		TimeStamp:  time.Now().Format(time.RFC3339),
		StatusCode: code,
		HTTPStatus: http.StatusText(code),
		Message:    message,
		Data:       data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	// Body is built from our own structs, encoding can not realistically fail
	_ = json.NewEncoder(w).Encode(response)
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Error(w http.ResponseWriter, code int, message string) {
	JSON(w, code, message, nil)
}

// DecodeError renders a json decoding failure
func DecodeError(w http.ResponseWriter, err error) {
	message := "Failed to parse JSON"

	// Try to provide more specific error message based on error type
	switch err := err.(type) {
	case *json.UnmarshalTypeError:
		message = fmt.Sprintf("Invalid data type for field '%s'", err.Field)
	default:
		message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	Error(w, http.StatusBadRequest, message)
}
