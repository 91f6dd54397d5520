package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

var ErrStayNotCompleted = errors.New("reviews: booking stay is not completed")

type ListReviewsQuery struct {
	PropertyID   string
	ApprovedOnly bool
	Limit        int
	Offset       int
}

func (q ListReviewsQuery) Key() string { return "reviews.list" }

type ListReviewsHandler struct {
	Factory uow.Factory
}

func (h *ListReviewsHandler) Handle(ctx context.Context, query ListReviewsQuery) ([]dto.ReviewView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if owned {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := unit.Reviews().ListByProperty(ctx, domainproperties.PropertyID(query.PropertyID), query.ApprovedOnly, limit, query.Offset)
	if err != nil {
		return nil, err
	}
	return dto.MapReviews(items), nil
}

type SubmitReviewCommand struct {
	BookingID  string
	AuthorName string
	Rating     int
	Text       string
}

func (c SubmitReviewCommand) Key() string { return "reviews.submit" }

type SubmitReviewHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

// Handle accepts a review only for bookings whose stay has ended.
func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (dto.ReviewView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{})
	if err != nil {
		return dto.ReviewView{}, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}
	record, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.ReviewView{}, err
	}
	if record.State != domainbooking.StateCheckedOut {
		return dto.ReviewView{}, ErrStayNotCompleted
	}
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:         domainreviews.ReviewID(uuid.NewString()),
		BookingID:  record.ID,
		PropertyID: record.PropertyID,
		AuthorName: cmd.AuthorName,
		Rating:     cmd.Rating,
		Text:       cmd.Text,
		Now:        clockOrNow(h.Now),
	})
	if err != nil {
		return dto.ReviewView{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.ReviewView{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, &review.EventRecorder); err != nil {
		return dto.ReviewView{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.ReviewView{}, err
		}
		committed = true
	}
	return dto.MapReview(review), nil
}

type ModerateReviewCommand struct {
	ReviewID string
	Approve  bool
}

func (c ModerateReviewCommand) Key() string { return "reviews.moderate" }

type ModerateReviewHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *ModerateReviewHandler) Handle(ctx context.Context, cmd ModerateReviewCommand) (dto.ReviewView, error) {
	return mutateReview(ctx, h.Factory, h.Outbox, h.Encoder, cmd.ReviewID, func(r *domainreviews.Review) error {
		if cmd.Approve {
			r.Approve(clockOrNow(h.Now))
		} else {
			r.Reject(clockOrNow(h.Now))
		}
		return nil
	})
}

type EditReviewCommand struct {
	ReviewID string
	Text     string
	Rating   int
}

func (c EditReviewCommand) Key() string { return "reviews.edit" }

type EditReviewHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *EditReviewHandler) Handle(ctx context.Context, cmd EditReviewCommand) (dto.ReviewView, error) {
	return mutateReview(ctx, h.Factory, h.Outbox, h.Encoder, cmd.ReviewID, func(r *domainreviews.Review) error {
		return r.UpdateText(cmd.Text, cmd.Rating, clockOrNow(h.Now))
	})
}

func mutateReview(ctx context.Context, factory uow.Factory, box outbox.Outbox, encoder outbox.EventEncoder, id string, mutate func(*domainreviews.Review) error) (dto.ReviewView, error) {
	ctx, unit, owned, err := uow.Require(ctx, factory, uow.TxOptions{})
	if err != nil {
		return dto.ReviewView{}, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}
	review, err := unit.Reviews().ByID(ctx, domainreviews.ReviewID(id))
	if err != nil {
		return dto.ReviewView{}, err
	}
	if err := mutate(review); err != nil {
		return dto.ReviewView{}, err
	}
	if err := unit.Reviews().Save(ctx, review); err != nil {
		return dto.ReviewView{}, err
	}
	if err := outbox.Drain(ctx, box, encoder, &review.EventRecorder); err != nil {
		return dto.ReviewView{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.ReviewView{}, err
		}
		committed = true
	}
	return dto.MapReview(review), nil
}

func clockOrNow(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

var (
	_ queries.Handler[ListReviewsQuery, []dto.ReviewView]     = (*ListReviewsHandler)(nil)
	_ commands.Handler[SubmitReviewCommand, dto.ReviewView]   = (*SubmitReviewHandler)(nil)
	_ commands.Handler[ModerateReviewCommand, dto.ReviewView] = (*ModerateReviewHandler)(nil)
	_ commands.Handler[EditReviewCommand, dto.ReviewView]     = (*EditReviewHandler)(nil)
)
