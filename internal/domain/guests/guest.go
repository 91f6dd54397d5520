package guests

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("guests: not found")
	ErrEmailInvalid = errors.New("guests: email address is invalid")
	ErrNameRequired = errors.New("guests: full name is required")
)

type GuestID string

// Guest is the back-office guest registry entry. Checkout upserts by email;
// repeat guests keep one record across bookings.
type Guest struct {
	ID        GuestID
	FullName  string
	Email     string
	Phone     string
	Notes     string
	Bookings  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

type Repository interface {
	ByID(ctx context.Context, id GuestID) (*Guest, error)
	ByEmail(ctx context.Context, email string) (*Guest, error)
	List(ctx context.Context, limit, offset int) ([]*Guest, error)
	Save(ctx context.Context, guest *Guest) error
}

func New(id GuestID, fullName, email, phone string, now time.Time) (*Guest, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrNameRequired
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	ts := now.UTC()
	return &Guest{
		ID:        id,
		FullName:  fullName,
		Email:     email,
		Phone:     strings.TrimSpace(phone),
		CreatedAt: ts,
		UpdatedAt: ts,
	}, nil
}

// RecordBooking bumps the per-guest booking counter shown in the admin list.
func (g *Guest) RecordBooking(now time.Time) {
	g.Bookings++
	g.UpdatedAt = now.UTC()
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrEmailInvalid
	}
	return email, nil
}
