package domain

import "errors"

var (
	ErrConcertNotFound          = errors.New("concert not found")
	ErrTicketTypeNotFound       = errors.New("ticket type not found")
	ErrTicketNotFound           = errors.New("ticket not found")
	ErrOrderNotFound            = errors.New("order not found")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrNoLineItems              = errors.New("no line items in request")
	ErrNoValidLineItems         = errors.New("no valid line items")
	ErrConcertNameRequired      = errors.New("concert name required")
	ErrLabelRequired            = errors.New("ticket label required")
	ErrInvalidQuantity          = errors.New("invalid quantity")
	ErrInvalidTotal             = errors.New("invalid total")
	ErrInvalidID                = errors.New("invalid id")
	ErrLinkToSelf               = errors.New("cannot link a ticket type to itself")
)
