package domain

import "time"

// KickRecord tracks a kicked display name inside one room.
type KickRecord struct {
	Name     DisplayName `json:"displayName"`
	KickTime time.Time   `json:"kickTime"`
	KickedBy DisplayName `json:"kickedBy"`
	Approved bool        `json:"approved"`
}

// Expired reports whether the cooldown window has passed at now.
func (k KickRecord) Expired(now time.Time, cooldown time.Duration) bool {
	return now.Sub(k.KickTime) >= cooldown
}

// Remaining is the time left in the cooldown window, never negative.
func (k KickRecord) Remaining(now time.Time, cooldown time.Duration) time.Duration {
	left := cooldown - now.Sub(k.KickTime)
	if left < 0 {
		return 0
	}
	return left
}

// Blocks reports whether the record still forbids a rejoin.
func (k KickRecord) Blocks(now time.Time, cooldown time.Duration) bool {
	return !k.Approved && !k.Expired(now, cooldown)
}

// EntryRequest is a participant waiting for a trainer to let them in.
type EntryRequest struct {
	ConnID      string      `json:"userId"`
	Name        DisplayName `json:"displayName"`
	RequestedAt time.Time   `json:"requestedAt"`
}
