package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/helpdesk/internal/models"
)

// TicketRepository provides persistence access for Ticket entities.
type TicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository constructs a repository using the provided gorm DB.
func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create persists the ticket instance.
func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(ticket).Error)
}

// FindByID returns the ticket by id.
func (r *TicketRepository) FindByID(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &ticket, nil
}

// List returns tickets in insertion order. A nil owner lists every ticket.
func (r *TicketRepository) List(ctx context.Context, ownerID *uint) ([]models.Ticket, error) {
	q := r.db.WithContext(ctx).Order("id asc")
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}
	tickets := []models.Ticket{}
	err := q.Find(&tickets).Error
	return tickets, errors.WithStack(err)
}

// UpdateStatus overwrites the status of one ticket and reports how many rows
// changed. An unknown id changes nothing and is not an error.
func (r *TicketRepository) UpdateStatus(ctx context.Context, id uint, status models.TicketStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Ticket{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected, errors.WithStack(res.Error)
}

// UpdateFields writes the given columns of one ticket.
func (r *TicketRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Ticket{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, errors.WithStack(res.Error)
}
