package domain

import "errors"

var (
	ErrInvalidOrganisation = errors.New("invalid_organisation")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidCountry      = errors.New("invalid_country")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrNotFound            = errors.New("not_found")
)
