package errors

import "net/http"

var ErrNotTaskOwner = &Exception{
	Message:    "only the task creator may perform this action",
	StatusCode: http.StatusForbidden,
}
