// Package expiry decides when listings, bids and offers lapse. All predicates
// take the evaluation time so one request sees one consistent instant.
package expiry

import (
	"time"

	"github.com/x-xyz/marketengine/domain/bid"
	"github.com/x-xyz/marketengine/domain/listing"
)

// ListingLapsed reports whether an ACTIVE listing is past its end time
func ListingLapsed(l *listing.Listing, now time.Time) bool {
	return l.Status == listing.StatusActive && l.HasEnded(now)
}

// BidLapsed reports whether a bid is EXPIRED or past its own expiry
func BidLapsed(b *bid.Bid, now time.Time) bool {
	return b.Status == bid.StatusExpired || b.IsLapsed(now)
}

// OfferLapsed reports whether an offer is EXPIRED or past its own expiry
func OfferLapsed(o *bid.Offer, now time.Time) bool {
	return o.Status == bid.StatusExpired || o.IsLapsed(now)
}

// BidUsable reports whether a bid can still be accepted at now
func BidUsable(b *bid.Bid, now time.Time) bool {
	return b.Status == bid.StatusActive && !b.IsLapsed(now)
}

// OfferUsable reports whether an offer can still be accepted at now
func OfferUsable(o *bid.Offer, now time.Time) bool {
	return o.Status == bid.StatusActive && !o.IsLapsed(now)
}

// ValidExpiry reports whether an expiry requested at now is acceptable, nil never expires
func ValidExpiry(expiresAt *time.Time, now time.Time) bool {
	return expiresAt == nil || expiresAt.After(now)
}
