package app

import (
	"context"
	"sort"

	"github.com/YukiSuter/NovaKelvin/internal/domain"
	"github.com/YukiSuter/NovaKelvin/internal/inventory"
)

type LedgerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListLinks(ctx context.Context) ([]inventory.Edge, error)
	LockCluster(ctx context.Context, ids []string) ([]domain.TicketType, error)
	CountValidTickets(ctx context.Context, ticketTypeIDs []string) (int, error)
	UpdateClusterCounts(ctx context.Context, ids []string, sold int) error
	PropagateTotal(ctx context.Context, ids []string, total int) error
	CreateTicketType(ctx context.Context, tt domain.TicketType) error
	CreateLink(ctx context.Context, a, b string) error
}

// LedgerService keeps the sold/available counts of every linked pool
// consistent with the ground-truth ticket records. Counts are always fully
// recomputed from valid tickets rather than adjusted by deltas, so the ledger
// cannot drift when links or ticket validity change underneath it.
type LedgerService struct {
	repo LedgerRepository
}

func NewLedgerService(repo LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

// Recalculate recomputes sold and available counts for the whole pool
// containing the given ticket type. Runs in (or joins) a transaction; the
// pool's rows are locked in id order for the duration.
func (s *LedgerService) Recalculate(ctx context.Context, ticketTypeID string) error {
	if ticketTypeID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ids, _, err := s.lockCluster(txCtx, ticketTypeID)
		if err != nil {
			return err
		}
		return s.recalculateLocked(txCtx, ids)
	})
}

// SetTotal changes a ticket type's capacity and propagates it across the
// pool, then recomputes counts. Setting the stored total again is a no-op.
func (s *LedgerService) SetTotal(ctx context.Context, ticketTypeID string, newTotal int) error {
	if ticketTypeID == "" {
		return domain.ErrInvalidID
	}
	if newTotal < 0 {
		return domain.ErrInvalidTotal
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ids, members, err := s.lockCluster(txCtx, ticketTypeID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.ID == ticketTypeID && m.QtyTotal == newTotal {
				return nil
			}
		}
		if err := s.repo.PropagateTotal(txCtx, ids, newTotal); err != nil {
			return err
		}
		return s.recalculateLocked(txCtx, ids)
	})
}

type CreateTicketTypeInput struct {
	ConcertID   string
	Position    int
	Label       string
	Description string
	Price       int64
	PriceRef    string
	QtyTotal    int
	Display     bool
}

// CreateTicketType creates a brand-new type and seeds its counts. A new type
// has no prior state to compare against, so the capacity always propagates.
func (s *LedgerService) CreateTicketType(ctx context.Context, in CreateTicketTypeInput) (domain.TicketType, error) {
	if in.ConcertID == "" {
		return domain.TicketType{}, domain.ErrInvalidID
	}
	if in.Label == "" {
		return domain.TicketType{}, domain.ErrLabelRequired
	}
	if in.QtyTotal < 0 {
		return domain.TicketType{}, domain.ErrInvalidTotal
	}

	tt := domain.TicketType{
		ID:          newID(),
		ConcertID:   in.ConcertID,
		Position:    in.Position,
		Label:       in.Label,
		Description: in.Description,
		Price:       in.Price,
		PriceRef:    in.PriceRef,
		QtyTotal:    in.QtyTotal,
		Display:     in.Display,
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateTicketType(txCtx, tt); err != nil {
			return err
		}
		return s.recalculateLocked(txCtx, []string{tt.ID})
	})
	if err != nil {
		return domain.TicketType{}, err
	}
	tt.QtySold = 0
	tt.QtyAvailable = tt.QtyTotal
	return tt, nil
}

// LinkTicketTypes merges two pools into one. The first type's capacity wins
// and propagates across the merged pool before counts are recomputed, so a
// reader never sees the merged pool with mismatched totals.
func (s *LedgerService) LinkTicketTypes(ctx context.Context, ticketTypeID, otherID string) error {
	if ticketTypeID == "" || otherID == "" {
		return domain.ErrInvalidID
	}
	if ticketTypeID == otherID {
		return domain.ErrLinkToSelf
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateLink(txCtx, ticketTypeID, otherID); err != nil {
			return err
		}

		ids, members, err := s.lockCluster(txCtx, ticketTypeID)
		if err != nil {
			return err
		}

		var total int
		for _, m := range members {
			if m.ID == ticketTypeID {
				total = m.QtyTotal
			}
		}
		if err := s.repo.PropagateTotal(txCtx, ids, total); err != nil {
			return err
		}
		return s.recalculateLocked(txCtx, ids)
	})
}

// lockCluster materializes the pool around start and locks its rows. Rows
// are locked in sorted id order so concurrent transactions over the same
// pool acquire locks in the same sequence.
func (s *LedgerService) lockCluster(ctx context.Context, start string) ([]string, []domain.TicketType, error) {
	edges, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, nil, err
	}

	ids := inventory.NewGraph(edges).Cluster(start)
	sort.Strings(ids)

	members, err := s.repo.LockCluster(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	found := false
	for _, m := range members {
		if m.ID == start {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, domain.ErrTicketTypeNotFound
	}
	return ids, members, nil
}

func (s *LedgerService) recalculateLocked(ctx context.Context, ids []string) error {
	sold, err := s.repo.CountValidTickets(ctx, ids)
	if err != nil {
		return err
	}
	return s.repo.UpdateClusterCounts(ctx, ids, sold)
}
