package flowapi

import "errors"

var (
	ErrRecordNotReturned = errors.New("backend did not return a time record")
	ErrTaskNotCreated    = errors.New("task could not be created")
	ErrTaskNotMarkedDone = errors.New("task could not be marked as done")
	ErrTaskNotEdited     = errors.New("task could not be edited")
	ErrTaskNotDeleted    = errors.New("task could not be deleted")
	ErrTaskNotStarted    = errors.New("task could not be started")
	ErrTaskNotStopped    = errors.New("task could not be stopped")
	// ErrUnauthorized is returned when credentials are rejected or no user is signed in
	ErrUnauthorized = errors.New("unauthorized")
)
