package report

import (
	"errors"
	"testing"
	"time"
)

func TestParseBound(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name         string
		in           string
		wantTime     time.Time
		wantDateOnly bool
		wantErr      bool
	}{
		{name: "empty", in: ""},
		{name: "date", in: "2024-03-01", wantTime: time.Date(2024, 3, 1, 0, 0, 0, 0, rome), wantDateOnly: true},
		{name: "minutes", in: "2024-03-01T10:30", wantTime: time.Date(2024, 3, 1, 10, 30, 0, 0, rome)},
		{name: "seconds", in: "2024-03-01T10:30:15", wantTime: time.Date(2024, 3, 1, 10, 30, 15, 0, rome)},
		{name: "rfc3339", in: "2024-03-01T10:30:00Z", wantTime: time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{name: "garbage", in: "yesterday", wantErr: true},
		{name: "impossible date", in: "2024-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBound(tt.in, rome)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Fatalf("error = %v, want ErrInvalidParameter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Time.Equal(tt.wantTime) {
				t.Errorf("time = %v, want %v", got.Time, tt.wantTime)
			}
			if got.DateOnly != tt.wantDateOnly {
				t.Errorf("DateOnly = %v, want %v", got.DateOnly, tt.wantDateOnly)
			}
		})
	}
}

func TestParseOptionalID(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    int64
		wantNil bool
		wantErr bool
	}{
		"empty":    {in: "", wantNil: true},
		"padded":   {in: " 7 ", want: 7},
		"zero":     {in: "0", wantErr: true},
		"negative": {in: "-3", wantErr: true},
		"text":     {in: "abc", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseOptionalID("categoryId", tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Fatalf("error = %v, want ErrInvalidParameter", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Fatalf("got %d, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("got %v, want %d", got, tt.want)
			}
		})
	}
}

func TestBoundInclusive(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, warsaw)

	if got := At(at).Inclusive(); !got.Equal(at) {
		t.Errorf("instant bound = %v, want %v", got, at)
	}

	want := time.Date(2024, 3, 15, 23, 59, 59, 999999999, warsaw)
	got := OnDate(at).Inclusive()
	if !got.Equal(want) {
		t.Errorf("date bound = %v, want %v", got, want)
	}
	if got.Location() != warsaw {
		t.Errorf("location = %v, want %v", got.Location(), warsaw)
	}
	if !OnDate(at).EndOfDay().Equal(want) {
		t.Errorf("EndOfDay = %v, want %v", OnDate(at).EndOfDay(), want)
	}
}
