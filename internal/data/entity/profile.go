package entity

import (
	"github.com/google/uuid"
)

// Artist is the provider profile. Profile CRUD lives in another
// service; this module reads snapshots and payout references and
// increments completion counters.
type Artist struct {
	BaseNoDelete
	Name              string `db:"name"`
	Email             string `db:"email"`
	Phone             string `db:"phone"`
	StripeAccountID   string `db:"stripe_account_id"`
	CompletedBookings int    `db:"completed_bookings"`
}

// HasPayoutAccount reports whether funds can be transferred to the artist.
func (a *Artist) HasPayoutAccount() bool {
	return a.StripeAccountID != ""
}

func (a *Artist) Contact() ContactInfo {
	return ContactInfo{Name: a.Name, Email: a.Email, Phone: a.Phone}
}

type Client struct {
	BaseNoDelete
	Name  string `db:"name"`
	Email string `db:"email"`
	Phone string `db:"phone"`
}

func (c *Client) Contact() ContactInfo {
	return ContactInfo{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// Service is an artist's offered engagement with its listed price.
type Service struct {
	BaseNoDelete
	ArtistID       uuid.UUID `db:"artist_id"`
	Name           string    `db:"name"`
	PriceCents     int64     `db:"price_cents"`
	CompletedCount int       `db:"completed_count"`
}
