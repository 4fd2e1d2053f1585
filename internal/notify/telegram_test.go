package notify

import (
	"testing"

	"github.com/example/helpdesk/internal/mq"
)

func TestFormatEvent(t *testing.T) {
	cases := []struct {
		event mq.TicketEvent
		want  string
	}{
		{
			event: mq.TicketEvent{Event: mq.EventTicketCreated, TicketID: 4, UserID: 2, Title: "Printer broken", Priority: "High"},
			want:  "New ticket #4 from user 2: Printer broken (priority High)",
		},
		{
			event: mq.TicketEvent{Event: mq.EventTicketStatusChanged, TicketID: 4, Title: "Printer broken", Status: "In Progress"},
			want:  `Ticket #4 "Printer broken" is now In Progress`,
		},
		{
			event: mq.TicketEvent{Event: mq.EventTicketStatusChanged, TicketID: 5, Title: "x"},
			want:  `Ticket #5 "x" is now new`,
		},
		{
			event: mq.TicketEvent{Event: "ticket.other", TicketID: 6},
			want:  "Ticket #6: ticket.other",
		},
	}
	for _, tc := range cases {
		if got := FormatEvent(tc.event); got != tc.want {
			t.Errorf("FormatEvent(%+v) = %q, want %q", tc.event, got, tc.want)
		}
	}
}
