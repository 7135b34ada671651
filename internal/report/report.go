// Package report renders the console summary of a run.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"auctions/internal/domain"
)

// DisplayZone is the zone auction times are shown in.
const DisplayZone = "Europe/Warsaw"

// Separator closes every auction block.
var Separator = strings.Repeat("-", 40)

// LoadDisplayZone resolves DisplayZone.
func LoadDisplayZone() (*time.Location, error) {
	loc, err := time.LoadLocation(DisplayZone)
	if err != nil {
		return nil, fmt.Errorf("load display zone %s: %w", DisplayZone, err)
	}
	return loc, nil
}

// Render writes one block per auction to w, in the given order, under a
// heading naming title.
func Render(w io.Writer, title string, auctions []*domain.Auction, loc *time.Location) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "--- PROCESSING REPORT (%s) ---\n\n", title)
	for _, a := range auctions {
		fmt.Fprintf(bw, "Location: %s\n", a.Location)
		fmt.Fprintf(bw, "Date (local): %s\n", a.DisplayLocalTime(loc))
		fmt.Fprintf(bw, "Vehicles: %d\n", len(a.Vehicles))
		if len(a.Vehicles) > 0 {
			v := a.Vehicles[0]
			fmt.Fprintf(bw, "Sample vehicle: %d %s %s [VIN: %s]\n", v.Year, v.Make, v.Model, v.VIN)
		}
		fmt.Fprintln(bw, Separator)
	}
	return bw.Flush()
}
