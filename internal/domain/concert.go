package domain

import "time"

// Concert represents a single performance that tickets are sold for.
type Concert struct {
	ID          string
	Name        string
	Date        time.Time
	Location    string
	Description string
	Conductor   string
}
