package domain

import "time"

// Ticket is an issued ticket. Tickets are only ever created by order
// reconciliation after a confirmed payment, never speculatively. Only valid
// tickets count toward a pool's sold total.
type Ticket struct {
	ID           string
	TicketTypeID string
	ConcertID    string
	HolderName   string
	HolderEmail  string
	// TransactionRef is the payment session that paid for this ticket.
	TransactionRef string
	Valid          bool
	// AuditLog is an append-only record of automated changes to the ticket.
	AuditLog  string
	CreatedAt time.Time
}
