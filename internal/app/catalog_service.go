package app

import (
	"context"
	"time"

	"github.com/YukiSuter/NovaKelvin/internal/clock"
	"github.com/YukiSuter/NovaKelvin/internal/domain"
)

type CatalogRepository interface {
	CreateConcert(ctx context.Context, c domain.Concert) error
	ListConcerts(ctx context.Context) ([]domain.Concert, error)
	GetConcert(ctx context.Context, id string) (domain.Concert, error)
	ListTicketTypesByConcert(ctx context.Context, concertID string) ([]domain.TicketType, error)
	GetOrderBySessionRef(ctx context.Context, sessionRef string) (*domain.Order, error)
}

// CatalogService serves the query surface consumed by the HTTP layer:
// concert listings, per-concert availability and order status polls.
type CatalogService struct {
	repo  CatalogRepository
	clock clock.Clock
}

func NewCatalogService(repo CatalogRepository, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:  repo,
		clock: clk,
	}
}

type CreateConcertInput struct {
	Name        string
	Date        *time.Time
	Location    string
	Description string
	Conductor   string
}

func (s *CatalogService) CreateConcert(ctx context.Context, in CreateConcertInput) (domain.Concert, error) {
	if in.Name == "" {
		return domain.Concert{}, domain.ErrConcertNameRequired
	}
	date := s.clock.Now()
	if in.Date != nil {
		date = *in.Date
	}

	concert := domain.Concert{
		ID:          newID(),
		Name:        in.Name,
		Date:        date,
		Location:    in.Location,
		Description: in.Description,
		Conductor:   in.Conductor,
	}
	if err := s.repo.CreateConcert(ctx, concert); err != nil {
		return domain.Concert{}, err
	}
	return concert, nil
}

func (s *CatalogService) ListConcerts(ctx context.Context) ([]domain.Concert, error) {
	return s.repo.ListConcerts(ctx)
}

// ListTicketTypes returns a concert's ticket types in display order. The
// concert must exist; an unknown id is a NotFound, not an empty list.
func (s *CatalogService) ListTicketTypes(ctx context.Context, concertID string) ([]domain.TicketType, error) {
	if concertID == "" {
		return nil, domain.ErrInvalidID
	}
	if _, err := s.repo.GetConcert(ctx, concertID); err != nil {
		return nil, err
	}
	return s.repo.ListTicketTypesByConcert(ctx, concertID)
}

// OrderStatusView is what a status poll exposes. Customer identity and the
// total only appear once the order is confirmed.
type OrderStatusView struct {
	OrderID       string
	Status        domain.OrderStatus
	CustomerName  string
	CustomerEmail string
	TotalAmount   int64
	Currency      string
	ConfirmedAt   *time.Time
}

func (s *CatalogService) OrderStatus(ctx context.Context, sessionRef string) (OrderStatusView, error) {
	if sessionRef == "" {
		return OrderStatusView{}, domain.ErrInvalidID
	}

	order, err := s.repo.GetOrderBySessionRef(ctx, sessionRef)
	if err != nil {
		return OrderStatusView{}, err
	}
	if order == nil {
		return OrderStatusView{}, domain.ErrOrderNotFound
	}

	view := OrderStatusView{
		OrderID: order.ID,
		Status:  order.Status,
	}
	if order.Status == domain.OrderStatusConfirmed {
		view.CustomerName = order.CustomerName
		view.CustomerEmail = order.CustomerEmail
		view.TotalAmount = order.TotalAmount
		view.Currency = order.Currency
		view.ConfirmedAt = order.ConfirmedAt
	}
	return view, nil
}
