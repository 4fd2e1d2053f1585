package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CreatedDateLayout is the format of Ticket.CreatedDate.
const CreatedDateLayout = "2006-01-02 15:04:05"

// TicketStatus describes the life-cycle state of a ticket. The empty status is
// the state of a freshly submitted ticket and is distinct from Open.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = ""
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketStatuses lists the allowed statuses in the order the admin grid offers them.
var TicketStatuses = []TicketStatus{TicketStatusNew, TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed}

// TicketPriority is the urgency label set on submission and editable by an admin.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketPriorities lists the allowed priorities in the order the admin grid offers them.
var TicketPriorities = []TicketPriority{TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow}

var (
	ErrInvalidStatus   = errors.New("invalid ticket status")
	ErrInvalidPriority = errors.New("invalid ticket priority")
)

// ParseStatus validates s against the closed set of statuses. Matching is exact.
func ParseStatus(s string) (TicketStatus, error) {
	for _, st := range TicketStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", errors.Wrapf(ErrInvalidStatus, "%q", s)
}

// ParsePriority validates s against the closed set of priorities. The label
// "Mid" used by the submission form is accepted as Medium, and an empty value
// means Low.
func ParsePriority(s string) (TicketPriority, error) {
	switch strings.TrimSpace(s) {
	case "":
		return TicketPriorityLow, nil
	case "Low":
		return TicketPriorityLow, nil
	case "Mid", "Medium":
		return TicketPriorityMedium, nil
	case "High":
		return TicketPriorityHigh, nil
	}
	return "", errors.Wrapf(ErrInvalidPriority, "%q", s)
}

// Ticket is a support request owned by exactly one user.
type Ticket struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"not null" json:"description"`
	Status      TicketStatus   `gorm:"not null;default:''" json:"status"`
	Priority    TicketPriority `gorm:"not null;default:'Low'" json:"priority"`
	CreatedDate string         `gorm:"column:created_date;not null" json:"createdDate"`
	UserID      uint           `gorm:"not null;index" json:"userId"`
}

// BeforeCreate is a GORM hook that fills the creation date and default priority.
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.CreatedDate == "" {
		t.CreatedDate = time.Now().Format(CreatedDateLayout)
	}
	if t.Priority == "" {
		t.Priority = TicketPriorityLow
	}
	return nil
}
