package evaluation

import "errors"

var (
	ErrRecordNotFound   = errors.New("evaluation record not found")
	ErrNoWeekToDelete   = errors.New("no evaluation week to delete for user and month")
	ErrIdentityNotFound = errors.New("user not found in directory")
)
