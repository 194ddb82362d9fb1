package domain

import "errors"

var (
	ErrNotAuthorized = errors.New("you are not in this group")
	ErrNotAdmin      = errors.New("not the group admin")
	ErrGroupExists   = errors.New("group already exists")
	ErrGroupNotFound = errors.New("group not found")
	ErrAdminRemoval  = errors.New("group admin cannot be removed")
	ErrEmptyMessage  = errors.New("empty message")
	ErrTooLong       = errors.New("message too long")
)
