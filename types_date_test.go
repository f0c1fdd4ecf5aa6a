package portfel

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-03-05", want: NewDate(2024, time.March, 5)},
		{in: "2024-3-5", want: NewDate(2024, time.March, 5)},
		{in: "2024-02-29", want: NewDate(2024, time.February, 29)},
		{in: "05-03-2024", wantErr: true},
		{in: "not a date", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q): want an error, got %s", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDateDaysSince(t *testing.T) {
	d0 := NewDate(2024, time.January, 15)
	if got := d0.Add(365).DaysSince(d0); got != 365 {
		t.Errorf("got %d, want 365", got)
	}
	if got := d0.DaysSince(d0); got != 0 {
		t.Errorf("same day: got %d, want 0", got)
	}
	// Normalization across a month boundary.
	if got := NewDate(2024, time.January, 32); got != NewDate(2024, time.February, 1) {
		t.Errorf("got %s, want 2024-02-01", got)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, time.June, 1)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), `"2024-06-01"`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("round trip: got %s, want %s", back, d)
	}
}
