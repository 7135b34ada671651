package domain

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func TestNewVehicle(t *testing.T) {
	t.Parallel()

	engine := Engine{Description: "V6", Cylinders: "6"}

	cases := []struct {
		name     string
		year     string
		wantYear int
		wantErr  bool
	}{
		{name: "plain", year: "2020", wantYear: 2020},
		{name: "padded", year: " 2018 ", wantYear: 2018},
		{name: "word", year: "STARY", wantErr: true},
		{name: "empty", year: "", wantErr: true},
		{name: "decimal", year: "2020.5", wantErr: true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			v, err := NewVehicle(c.year, "Audi", "A4", "123", engine, TransmissionAutomatic)
			if c.wantErr {
				if err == nil {
					t.Fatalf("NewVehicle(year=%q) error = nil, want error", c.year)
				}
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("errors.Is(err, ErrValidation) = false; err=%v", err)
				}
				var ve *ValidationError
				if !errors.As(err, &ve) || ve.Field != "year" {
					t.Fatalf("want *ValidationError for field year, got %T %v", err, err)
				}
				if !errors.Is(err, strconv.ErrSyntax) {
					t.Fatalf("want strconv.ErrSyntax as cause, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewVehicle(year=%q) unexpected error: %v", c.year, err)
			}
			if v.Year != c.wantYear {
				t.Fatalf("Year = %d, want %d", v.Year, c.wantYear)
			}
			if v.Make != "Audi" || v.Model != "A4" || v.VIN != "123" || v.Engine != engine {
				t.Fatalf("fields not carried: %+v", v)
			}
		})
	}
}

func TestAuction_KeyAndAdd(t *testing.T) {
	t.Parallel()

	key := AuctionKey{DateUTC: time.Date(2025, 12, 1, 14, 30, 0, 0, time.UTC), Location: "Dallas"}
	a := NewAuction(key)
	if len(a.Vehicles) != 0 {
		t.Fatalf("new auction has %d vehicles", len(a.Vehicles))
	}
	a.Add(Vehicle{VIN: "A"})
	a.Add(Vehicle{VIN: "B"})

	if a.Key() != key {
		t.Fatalf("Key() = %+v, want %+v", a.Key(), key)
	}
	if len(a.Vehicles) != 2 || a.Vehicles[0].VIN != "A" || a.Vehicles[1].VIN != "B" {
		t.Fatalf("vehicles out of order: %+v", a.Vehicles)
	}
}

func TestAuction_DisplayLocalTime(t *testing.T) {
	t.Parallel()

	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	cases := []struct {
		name string
		at   time.Time
		loc  *time.Location
		want string
	}{
		{"winter", time.Date(2025, 12, 1, 14, 30, 0, 0, time.UTC), warsaw, "2025-12-01 15:30 CET"},
		{"summer", time.Date(2025, 7, 1, 14, 30, 0, 0, time.UTC), warsaw, "2025-07-01 16:30 CEST"},
		{"nil location", time.Date(2025, 7, 1, 14, 30, 0, 0, time.UTC), nil, "2025-07-01 14:30 UTC"},
	}
	for _, c := range cases {
		a := &Auction{DateUTC: c.at, Location: "X"}
		if got := a.DisplayLocalTime(c.loc); got != c.want {
			t.Errorf("%s: DisplayLocalTime() = %q, want %q", c.name, got, c.want)
		}
	}
}
