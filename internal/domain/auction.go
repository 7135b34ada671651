package domain

import "time"

// DisplayLayout renders an auction time as "YYYY-MM-DD HH:MM TZ".
const DisplayLayout = "2006-01-02 15:04 MST"

// AuctionKey identifies an auction. DateUTC must be in UTC so that equal
// instants produce equal keys.
type AuctionKey struct {
	DateUTC  time.Time
	Location string
}

// Auction groups the vehicles listed at one location at one time. DateUTC
// and Location never change after creation; Vehicles only grows.
type Auction struct {
	DateUTC  time.Time
	Location string
	Vehicles []Vehicle
}

// NewAuction returns an empty auction for key.
func NewAuction(key AuctionKey) *Auction {
	return &Auction{DateUTC: key.DateUTC, Location: key.Location}
}

func (a *Auction) Key() AuctionKey {
	return AuctionKey{DateUTC: a.DateUTC, Location: a.Location}
}

// Add appends v to the auction's vehicle list.
func (a *Auction) Add(v Vehicle) { a.Vehicles = append(a.Vehicles, v) }

// DisplayLocalTime formats DateUTC in loc using DisplayLayout. A nil loc
// renders in UTC.
func (a *Auction) DisplayLocalTime(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return a.DateUTC.In(loc).Format(DisplayLayout)
}
