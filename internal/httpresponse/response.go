package httpresponse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	errs "margo/internal/errors"
)

type Response[T any] struct {
	Status int `json:"Status"`
	Body   T   `json:"Body,omitempty"`
}

type ErrorResponse struct {
	ErrorDescription string `json:"ErrorDescription"`
}

const INTERNALERRORJSON = "{\"Status\": 500,\"Body\":{\"ErrorDescription\": \"Internal server error\"}}"

func WriteResponseWithStatus(w http.ResponseWriter, status int, body any) {
	jsonByte, err := marshalStatusJson(status, body)
	if err != nil {
		WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(jsonByte)
}

func marshalStatusJson(status int, body any) ([]byte, error) {
	response := Response[any]{
		Status: status,
		Body:   body,
	}
	marshal, err := json.Marshal(response)
	if err != nil {
		return nil, err
	}
	return marshal, nil
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	// same as http.Error apart from the content type
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, INTERNALERRORJSON)
}

// StatusOf maps a use-case error onto an HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrCellOccupied),
		errors.Is(err, errs.ErrNoSupport),
		errors.Is(err, errs.ErrSuicideMove),
		errors.Is(err, errs.ErrKoViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrBadPosition),
		errors.Is(err, errs.ErrBadRequest),
		errors.Is(err, errs.ErrInvalidCoordinate),
		errors.Is(err, errs.ErrInvalidSide),
		errors.Is(err, errs.ErrInvalidBoardSize):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrNotYourTurn),
		errors.Is(err, errs.ErrPassRefused),
		errors.Is(err, errs.ErrGameFinished):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// WriteError answers with the status StatusOf picks. Internal errors never
// expose their text.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		WriteInternalErrorResponse(w)
		return
	}
	WriteResponseWithStatus(w, status, ErrorResponse{ErrorDescription: err.Error()})
}
