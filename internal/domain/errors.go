package domain

import "errors"

var (
	ErrEmptyContent   = errors.New("ticket content is empty")
	ErrContentTooLong = errors.New("ticket content exceeds maximum length")
	ErrInvalidTicket  = errors.New("invalid ticket")
)
