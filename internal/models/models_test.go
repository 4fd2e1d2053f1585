package models

import (
	"errors"
	"testing"
)

func TestSummarize(t *testing.T) {
	tickets := []Ticket{
		{Status: TicketStatusNew},
		{Status: TicketStatusOpen},
		{Status: TicketStatusInProgress},
		{Status: TicketStatusClosed},
		{Status: TicketStatusClosed},
	}
	got := Summarize(tickets)
	want := Summary{Total: 5, Open: 1, InProgress: 1, Closed: 2}
	if got != want {
		t.Fatalf("Summarize() = %+v, want %+v", got, want)
	}

	if got := Summarize(nil); got != (Summary{}) {
		t.Fatalf("Summarize(nil) = %+v, want zero", got)
	}
}

func TestSummarizeExactMatch(t *testing.T) {
	got := Summarize([]Ticket{{Status: "open"}, {Status: "closed"}, {Status: "In progress"}})
	if got.Total != 3 || got.Open != 0 || got.InProgress != 0 || got.Closed != 0 {
		t.Fatalf("case-mismatched statuses must only count toward total, got %+v", got)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    TicketStatus
		wantErr bool
	}{
		{in: "", want: TicketStatusNew},
		{in: "Open", want: TicketStatusOpen},
		{in: "In Progress", want: TicketStatusInProgress},
		{in: "Closed", want: TicketStatusClosed},
		{in: "closed", wantErr: true},
		{in: "Resolved", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidStatus) {
				t.Errorf("ParseStatus(%q) error = %v, want ErrInvalidStatus", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in      string
		want    TicketPriority
		wantErr bool
	}{
		{in: "", want: TicketPriorityLow},
		{in: "Low", want: TicketPriorityLow},
		{in: "Mid", want: TicketPriorityMedium},
		{in: "Medium", want: TicketPriorityMedium},
		{in: "High", want: TicketPriorityHigh},
		{in: "Urgent", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParsePriority(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidPriority) {
				t.Errorf("ParsePriority(%q) error = %v, want ErrInvalidPriority", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParsePriority(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}
