package errors

import (
	"fmt"
	"net/http"
)

// NewTaskNotDraft is returned when publish is attempted on a task that has
// already left the draft state. The current status is part of the message.
func NewTaskNotDraft(current string) *Exception {
	return &Exception{
		Message:    fmt.Sprintf("only draft tasks can be published, current status is %s", current),
		StatusCode: http.StatusBadRequest,
	}
}
