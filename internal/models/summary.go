package models

// Summary holds ticket counts by status. Tickets with the empty status only
// count toward Total.
type Summary struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Closed     int `json:"closed"`
}

// Summarize counts tickets by exact status match.
func Summarize(tickets []Ticket) Summary {
	s := Summary{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case TicketStatusOpen:
			s.Open++
		case TicketStatusInProgress:
			s.InProgress++
		case TicketStatusClosed:
			s.Closed++
		}
	}
	return s
}
