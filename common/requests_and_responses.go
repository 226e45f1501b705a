package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	MAX_REQUEST_BODY_BYTES = 524288
)

// ResponseData is the payload section of the response envelope
type ResponseData map[string]interface{}

type responseEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    ResponseData `json:"data,omitempty"`
}

func UnmarshalJSONRequestBody(w http.ResponseWriter, r *http.Request, dst interface{}) (statusCode int, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, MAX_REQUEST_BODY_BYTES)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err = decoder.Decode(&dst); err != nil {
		var unmarshalTypeError *json.UnmarshalTypeError
		var syntaxError *json.SyntaxError
		switch {
		case errors.As(err, &unmarshalTypeError):
			fallthrough
		case errors.As(err, &syntaxError):
			fallthrough
		case errors.Is(err, io.ErrUnexpectedEOF):
			err = fmt.Errorf("request body contains invalid JSON")
			statusCode = http.StatusBadRequest
			return
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			err = fmt.Errorf("request body contains unknown field")
			statusCode = http.StatusBadRequest
			return
		case errors.Is(err, io.EOF):
			err = fmt.Errorf("request body is empty")
			statusCode = http.StatusBadRequest
			return
		case err.Error() == "http: request body too large":
			err = fmt.Errorf("request body too large")
			statusCode = http.StatusBadRequest
			return
		default:
			statusCode = http.StatusInternalServerError
			return
		}
	}
	return
}

func WriteResponse(w http.ResponseWriter, statusCode int, data ResponseData) {
	writeEnvelope(w, statusCode, responseEnvelope{
		Success: statusCode < http.StatusBadRequest,
		Data:    data,
	})
}

func WriteMessageResponse(w http.ResponseWriter, statusCode int, message string, data ResponseData) {
	writeEnvelope(w, statusCode, responseEnvelope{
		Success: statusCode < http.StatusBadRequest,
		Message: message,
		Data:    data,
	})
}

func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, statusCode, responseEnvelope{
		Success: false,
		Message: message,
	})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, envelope responseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	responseBytes, err := json.Marshal(envelope)
	if err != nil {
		w.Write([]byte("failed to write response"))
		return
	}
	w.Write(responseBytes)
}
