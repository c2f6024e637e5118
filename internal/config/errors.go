package config

import "errors"

var (
	// ErrNotRegistered is returned for names the registry does not hold.
	ErrNotRegistered = errors.New("config not registered")
	// ErrAlreadyRegistered is returned when a name is registered twice.
	ErrAlreadyRegistered = errors.New("config already registered")
	// ErrNotEditable is returned when an update targets a read-only field.
	ErrNotEditable = errors.New("field is not editable")
	// ErrNotPersistent is returned by Persist on in-memory instances.
	ErrNotPersistent = errors.New("config is not persistent")
)
