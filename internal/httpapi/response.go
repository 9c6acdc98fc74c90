package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

func OK() Response {
	return Response{Status: http.StatusOK}
}

func Error(msg string, status int) Response {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Response{Status: status, Error: msg}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var msgs []string
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", err.Field()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("field %s is out of range", err.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", err.Field()))
		}
	}
	return Response{Status: http.StatusBadRequest, Error: strings.Join(msgs, ", ")}
}

// reply sets the HTTP status from the body so clients can use either.
func reply(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func replyError(w http.ResponseWriter, r *http.Request, msg string, status int) {
	reply(w, r, status, Error(msg, status))
}
