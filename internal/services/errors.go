package services

import "errors"

// ErrUnauthorized is returned when no valid credential was presented.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the acting user is not the resource owner.
var ErrForbidden = errors.New("forbidden")

// ErrSelfFollow is returned when a user attempts to follow themself.
var ErrSelfFollow = errors.New("cannot follow yourself")
