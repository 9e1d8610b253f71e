package apimodel

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// ErrorMessage is the JSON body of every api reply that carries no data.
type ErrorMessage struct {
	ErrStatusCode int    `json:"status_code"`
	ErrMessage    string `json:"message"`
}

// NewErrorMessage falls back to a generic message for status when message is empty.
func NewErrorMessage(status int, message string) ErrorMessage {
	if message == "" {
		message = defaultMessage(status)
	}
	return ErrorMessage{ErrStatusCode: status, ErrMessage: message}
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusOK:
		return "Ok"
	case http.StatusNotFound:
		return "Page not found"
	case http.StatusMethodNotAllowed:
		return "Method not allowed"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusServiceUnavailable:
		return "Service unavailable"
	case http.StatusBadRequest:
		return "Bad request"
	default:
		return "Internal error"
	}
}

func (e ErrorMessage) Error() string {
	return strconv.Itoa(e.ErrStatusCode) + ":" + e.ErrMessage
}

func (e ErrorMessage) SendError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.ErrStatusCode)
	if err := json.NewEncoder(w).Encode(e); err != nil {
		logrus.Warnf("Unable to encode error message: %v", err)
	}
}

var (
	WrongParametersErrorMessage = NewErrorMessage(http.StatusBadRequest, "unable to parse parameters")
	InvalidSettingErrorMessage  = NewErrorMessage(http.StatusUnprocessableEntity, "invalid color or brightness")
	EmptyTextErrorMessage       = NewErrorMessage(http.StatusBadRequest, "text must not be empty")
	WeatherDisabledErrorMessage = NewErrorMessage(http.StatusConflict, "weather is disabled")
)
