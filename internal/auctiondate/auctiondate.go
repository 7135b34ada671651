// Package auctiondate converts the loosely formatted auction date strings
// found in listing exports ("Mon Dec 01, 8:30am CST") into UTC instants.
//
// Source strings carry no year. The parser prefixes either a configured year
// or the current calendar year, so a December file processed in January is
// attributed to the wrong year unless Year is set explicitly.
package auctiondate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	// Embedded zone database; the source and display zones must resolve on
	// hosts without /usr/share/zoneinfo.
	_ "time/tzdata"
)

const (
	// SourceZone is the zone raw auction times are expressed in.
	SourceZone = "America/Chicago"

	// Layout is applied after the year has been prefixed.
	Layout = "2006 Mon Jan 02, 3:04PM"
)

// ErrParse is matched by every *ParseError via errors.Is.
var ErrParse = errors.New("unparseable auction date")

// tokenRe extracts "Mon Dec 01, 8:30AM" from surrounding noise.
var tokenRe = regexp.MustCompile(`[a-zA-Z]{3} [a-zA-Z]{3} \d{2}, \d{1,2}:\d{2}[APM]{2}`)

var meridiem = strings.NewReplacer("am", "AM", "pm", "PM")

// ParseError reports a date string that does not fit Layout.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse auction date %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Parser turns raw auction date strings into UTC instants. The zero value is
// not usable; construct with New.
type Parser struct {
	// Year, when non-zero, is used instead of the current calendar year.
	Year int
	// Now supplies the current time; only its year is consulted.
	Now func() time.Time

	src *time.Location
}

// New returns a Parser interpreting times in SourceZone. year overrides the
// current-year assumption when non-zero.
func New(year int) (*Parser, error) {
	loc, err := time.LoadLocation(SourceZone)
	if err != nil {
		return nil, fmt.Errorf("load source zone %s: %w", SourceZone, err)
	}
	return &Parser{Year: year, Now: time.Now, src: loc}, nil
}

// Location returns the zone raw strings are interpreted in.
func (p *Parser) Location() *time.Location { return p.src }

// Parse normalizes meridiem case, extracts the date token (falling back to
// the whole string), prefixes the year, parses it as wall-clock time in the
// source zone and returns the instant in UTC.
func (p *Parser) Parse(raw string) (time.Time, error) {
	clean := meridiem.Replace(raw)
	if tok := tokenRe.FindString(clean); tok != "" {
		clean = tok
	}

	t, err := time.ParseInLocation(Layout, strconv.Itoa(p.year())+" "+clean, p.src)
	if err != nil {
		return time.Time{}, &ParseError{Input: raw, Err: err}
	}
	return t.UTC(), nil
}

func (p *Parser) year() int {
	if p.Year != 0 {
		return p.Year
	}
	if p.Now != nil {
		return p.Now().Year()
	}
	return time.Now().Year()
}
