package domain

import "errors"

var (
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrInvalidTransactionType = errors.New("invalid_transaction_type")
	ErrAmbiguousAccount       = errors.New("ambiguous_account")
	ErrInvalidAccount         = errors.New("invalid_account")
	ErrInvalidOrganisation    = errors.New("invalid_organisation")
	ErrInvalidProduct         = errors.New("invalid_product")
	ErrNotFound               = errors.New("not_found")
)
