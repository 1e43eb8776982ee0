package domain

// TicketType is a sellable category of ticket for a concert. Types can be
// linked into a shared inventory pool; every member of a pool reports the
// same total, sold and available counts once a mutation settles.
type TicketType struct {
	ID          string
	ConcertID   string
	Position    int
	Label       string
	Description string
	// Price in minor currency units (pence).
	Price int64
	// PriceRef is the payment provider's identifier for this price point.
	PriceRef     string
	QtyTotal     int
	QtySold      int
	QtyAvailable int
	// Display marks the type as purchasable by the public. Complimentary
	// types keep this false.
	Display bool
}
