package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/order"
	orderentity "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/order/entity"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/payment/entity"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/pkg/utilities"
)

// Submissions is the slice of the payment repository the service depends on.
type Submissions interface {
	Create(ctx context.Context, s *entity.Submission) error
	GetByID(ctx context.Context, id string) (*entity.Submission, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.Submission, error)
	SetStatus(ctx context.Context, id, status string) (int64, error)
}

// Orders is the slice of the order service the payment flow drives.
type Orders interface {
	Get(ctx context.Context, orderNumber string) (*orderentity.Order, error)
	UpdateStatus(ctx context.Context, orderNumber, to string) (*orderentity.Order, error)
}

var (
	ErrNotFound        = errors.New("submission not found")
	ErrAlreadyReviewed = errors.New("submission already reviewed")
	ErrDuplicateTrx    = errors.New("transaction already submitted")
)

// ValidationError names the malformed or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Service handles manual payment submissions and the resulting order status
// transitions. Stripe checkout sessions are created elsewhere; only the
// paid-status transition is modeled here.
type Service struct {
	subs   Submissions
	orders Orders
	now    func() time.Time
}

func NewService(subs Submissions, orders Orders) *Service {
	return &Service{subs: subs, orders: orders, now: time.Now}
}

// SubmitRequest is a customer's manual payment claim.
type SubmitRequest struct {
	OrderNumber  string `json:"order_number"`
	Method       string `json:"method"`
	SenderNumber string `json:"sender_number"`
	TrxID        string `json:"trx_id"`
}

// Submit validates and records a manual payment claim for a pending order.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*entity.Submission, error) {
	number := strings.ToUpper(strings.TrimSpace(req.OrderNumber))
	if number == "" {
		return nil, &ValidationError{Field: "order_number", Message: "order number is required"}
	}
	if req.Method != orderentity.PaymentBkash && req.Method != orderentity.PaymentNagad {
		return nil, &ValidationError{Field: "method", Message: "method must be bkash or nagad"}
	}
	if !order.ValidBDPhone(req.SenderNumber) {
		return nil, &ValidationError{Field: "sender_number", Message: "invalid sender number"}
	}
	trx := strings.ToUpper(strings.TrimSpace(req.TrxID))
	if len(trx) < 6 {
		return nil, &ValidationError{Field: "trx_id", Message: "transaction id is too short"}
	}

	o, err := s.orders.Get(ctx, number)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return nil, &ValidationError{Field: "order_number", Message: "order not found"}
		}
		return nil, err
	}
	if o.Status != orderentity.StatusPending {
		return nil, &ValidationError{Field: "order_number", Message: "order is not awaiting payment"}
	}
	if o.PaymentMethod != req.Method {
		return nil, &ValidationError{Field: "method", Message: "order was placed with a different payment method"}
	}

	sub := &entity.Submission{
		ID:           utilities.NewKSUID(),
		OrderNumber:  number,
		Method:       req.Method,
		SenderNumber: strings.TrimSpace(req.SenderNumber),
		TrxID:        trx,
		Status:       entity.StatusPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.subs.Create(ctx, sub); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateTrx
		}
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return sub, nil
}

// Verify marks a submission verified and confirms its order.
func (s *Service) Verify(ctx context.Context, id string) (*entity.Submission, error) {
	return s.review(ctx, id, entity.StatusVerified)
}

// Reject marks a submission rejected; the order stays pending for re-payment.
func (s *Service) Reject(ctx context.Context, id string) (*entity.Submission, error) {
	return s.review(ctx, id, entity.StatusRejected)
}

func (s *Service) review(ctx context.Context, id, status string) (*entity.Submission, error) {
	sub, err := s.subs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rows, err := s.subs.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrAlreadyReviewed
	}
	sub.Status = status
	now := s.now().UTC()
	sub.ReviewedAt = &now

	if status == entity.StatusVerified {
		if _, err := s.orders.UpdateStatus(ctx, sub.OrderNumber, orderentity.StatusConfirmed); err != nil {
			// submission is verified either way; the order may already have
			// moved on (e.g. confirmed manually)
			if !errors.Is(err, order.ErrBadTransition) {
				return nil, fmt.Errorf("confirm order: %w", err)
			}
		}
	}
	return sub, nil
}

// ListPending returns the admin review queue.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*entity.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.subs.ListByStatus(ctx, entity.StatusPending, limit, offset)
}

// StripeEvent is the minimal shape of the payment processor callback this
// service consumes. Session creation and signature verification happen in
// the hosted function layer; this endpoint only applies the status result.
type StripeEvent struct {
	Type        string `json:"type"`
	OrderNumber string `json:"order_number"`
}

// ApplyStripeEvent transitions an order on a completed checkout session.
func (s *Service) ApplyStripeEvent(ctx context.Context, ev StripeEvent) error {
	if ev.Type != "checkout.session.completed" {
		return nil // ignore everything else
	}
	if ev.OrderNumber == "" {
		return &ValidationError{Field: "order_number", Message: "order number is required"}
	}
	_, err := s.orders.UpdateStatus(ctx, ev.OrderNumber, orderentity.StatusConfirmed)
	switch {
	case errors.Is(err, order.ErrBadTransition):
		return nil // already confirmed or further along
	case errors.Is(err, order.ErrNotFound):
		return &ValidationError{Field: "order_number", Message: "order not found"}
	}
	return err
}
