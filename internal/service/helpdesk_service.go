package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/example/helpdesk/internal/models"
	"github.com/example/helpdesk/internal/mq"
	"github.com/example/helpdesk/internal/repository"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TicketEdit is one row of the admin grid as submitted on save. An empty
// Priority leaves the stored priority untouched.
type TicketEdit struct {
	ID       uint   `json:"id" form:"id"`
	Status   string `json:"status" form:"status"`
	Priority string `json:"priority" form:"priority"`
}

// HelpdeskService contains the account and ticket operations behind the UI and API.
type HelpdeskService struct {
	db      *gorm.DB
	users   *repository.UserRepository
	tickets *repository.TicketRepository
	mq      mq.Publisher
	now     func() time.Time
	cost    int

	mu        sync.Mutex
	listeners []func(context.Context)
}

// NewHelpdeskService builds a service with dependencies. mq may be nil.
func NewHelpdeskService(db *gorm.DB, users *repository.UserRepository, tickets *repository.TicketRepository, mq mq.Publisher) *HelpdeskService {
	return &HelpdeskService{
		db:      db,
		users:   users,
		tickets: tickets,
		mq:      mq,
		now:     time.Now,
		cost:    bcrypt.DefaultCost,
	}
}

// OnTicketsChanged registers fn to run after any write that changed ticket rows.
func (s *HelpdeskService) OnTicketsChanged(fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Register stores a new user with the default role. It returns
// ErrUsernameTaken when the username is already in use.
func (s *HelpdeskService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return s.createUser(ctx, username, password, models.RoleUser)
}

func (s *HelpdeskService) createUser(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	user := &models.User{Username: username, Password: string(hash), Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// Login returns the stored user matching both username and password. Unknown
// usernames and wrong passwords both yield ErrInvalidCredentials.
func (s *HelpdeskService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	// The admin account signs in through LoginAdmin only.
	if user.IsAdmin() {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// LoginAdmin authenticates an account holding the admin role.
func (s *HelpdeskService) LoginAdmin(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *HelpdeskService) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin seeds the privileged account when it does not exist yet.
func (s *HelpdeskService) EnsureAdmin(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	switch {
	case err == nil && user.IsAdmin():
		return user, nil
	case err == nil:
		return nil, errors.Errorf("user %q exists without admin role", username)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	user, err = s.createUser(ctx, username, password, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	log.Printf("seeded admin account %q", username)
	return user, nil
}

// SubmitTicket stores a new ticket for ownerID with the empty status.
func (s *HelpdeskService) SubmitTicket(ctx context.Context, title, description, priority string, ownerID uint) (*models.Ticket, error) {
	p, err := models.ParsePriority(priority)
	if err != nil {
		return nil, err
	}
	ticket := &models.Ticket{
		Title:       title,
		Description: description,
		Status:      models.TicketStatusNew,
		Priority:    p,
		CreatedDate: s.now().Format(models.CreatedDateLayout),
		UserID:      ownerID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, mq.EventTicketCreated, ticket)
	s.ticketsChanged(ctx)
	return ticket, nil
}

// ListTickets returns the owner's tickets, or all tickets when ownerID is nil.
func (s *HelpdeskService) ListTickets(ctx context.Context, ownerID *uint) ([]models.Ticket, error) {
	return s.tickets.List(ctx, ownerID)
}

// UpdateStatus overwrites a ticket's status. An unknown ticket id is a no-op.
// Callers are responsible for restricting this to admins.
func (s *HelpdeskService) UpdateStatus(ctx context.Context, ticketID uint, status string) error {
	st, err := models.ParseStatus(status)
	if err != nil {
		return err
	}
	n, err := s.tickets.UpdateStatus(ctx, ticketID, st)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if ticket, err := s.tickets.FindByID(ctx, ticketID); err == nil {
		s.publishEvent(ctx, mq.EventTicketStatusChanged, ticket)
	}
	s.ticketsChanged(ctx)
	return nil
}

// SaveChanges applies an admin grid save. Every edit is validated before
// anything is written, and only rows whose status or priority differ from
// the stored values are updated. It returns the number of rows written.
func (s *HelpdeskService) SaveChanges(ctx context.Context, edits []TicketEdit) (int, error) {
	type change struct {
		id       uint
		status   models.TicketStatus
		priority models.TicketPriority
	}
	changes := make([]change, 0, len(edits))
	for _, e := range edits {
		st, err := models.ParseStatus(e.Status)
		if err != nil {
			return 0, errors.Wrapf(err, "ticket %d", e.ID)
		}
		c := change{id: e.ID, status: st}
		if e.Priority != "" {
			if c.priority, err = models.ParsePriority(e.Priority); err != nil {
				return 0, errors.Wrapf(err, "ticket %d", e.ID)
			}
		}
		changes = append(changes, c)
	}

	var changed []uint
	statusChanged := map[uint]bool{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewTicketRepository(tx)
		current, err := repo.List(ctx, nil)
		if err != nil {
			return err
		}
		byID := make(map[uint]models.Ticket, len(current))
		for _, t := range current {
			byID[t.ID] = t
		}
		for _, c := range changes {
			cur, ok := byID[c.id]
			if !ok {
				continue
			}
			fields := map[string]any{}
			if c.status != cur.Status {
				fields["status"] = c.status
				statusChanged[c.id] = true
			}
			if c.priority != "" && c.priority != cur.Priority {
				fields["priority"] = c.priority
			}
			if len(fields) == 0 {
				continue
			}
			if _, err := repo.UpdateFields(ctx, c.id, fields); err != nil {
				return err
			}
			changed = append(changed, c.id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, id := range changed {
		if !statusChanged[id] {
			continue
		}
		if ticket, err := s.tickets.FindByID(ctx, id); err == nil {
			s.publishEvent(ctx, mq.EventTicketStatusChanged, ticket)
		}
	}
	if len(changed) > 0 {
		s.ticketsChanged(ctx)
	}
	return len(changed), nil
}

// Summarize counts the tickets visible under the same filter as ListTickets.
func (s *HelpdeskService) Summarize(ctx context.Context, ownerID *uint) (models.Summary, error) {
	tickets, err := s.ListTickets(ctx, ownerID)
	if err != nil {
		return models.Summary{}, err
	}
	return models.Summarize(tickets), nil
}

func (s *HelpdeskService) publishEvent(ctx context.Context, event string, ticket *models.Ticket) {
	if s.mq == nil {
		return
	}
	payload := mq.TicketEvent{
		Event:      event,
		TicketID:   ticket.ID,
		UserID:     ticket.UserID,
		Title:      ticket.Title,
		Status:     string(ticket.Status),
		Priority:   string(ticket.Priority),
		OccurredAt: s.now().UTC().Format(time.RFC3339),
	}
	if err := s.mq.Publish(ctx, event, payload); err != nil {
		log.Printf("publish %s failed: %v", event, err)
	}
}

func (s *HelpdeskService) ticketsChanged(ctx context.Context) {
	s.mu.Lock()
	listeners := append([]func(context.Context){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(ctx)
	}
}
