package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/pantry-roster/pkg/core/model"
	"github.com/jakechorley/pantry-roster/pkg/core/schedule"
	"github.com/jakechorley/pantry-roster/pkg/db"
)

// ClientInput carries the fields of a household registration
type ClientInput struct {
	FirstName  string `validate:"required"`
	LastName   string `validate:"required"`
	FamilySize int    `validate:"min=1"`
	Phone      string
	Email      string `validate:"omitempty,email"`
}

// RegisterClientStore defines the database operations needed to register a client
type RegisterClientStore interface {
	InsertClient(ctx context.Context, client *model.Client) error
}

// RecordVisitStore defines the database operations needed to record a visit
type RecordVisitStore interface {
	GetClient(ctx context.Context, id string) (*model.Client, error)
	GetVisitsBetween(ctx context.Context, from, to string) ([]model.Visit, error)
	InsertVisit(ctx context.Context, visit *model.Visit) error
}

// VisitResult is the recorded visit plus whether the household had already
// been served earlier in the same calendar month
type VisitResult struct {
	Visit                   model.Visit
	Client                  model.Client
	AlreadyVisitedThisMonth bool
}

func RegisterClient(
	ctx context.Context,
	store RegisterClientStore,
	logger *zap.Logger,
	input ClientInput,
) (*model.Client, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid client: %w", err)
	}

	now := timeNow().UTC()
	client := &model.Client{
		ID:         newID(),
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		FamilySize: input.FamilySize,
		Phone:      strings.TrimSpace(input.Phone),
		Email:      strings.TrimSpace(input.Email),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := store.InsertClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	logger.Info("Registered client", zap.String("client_id", client.ID), zap.Int("family_size", client.FamilySize))
	return client, nil
}

// RecordVisit logs a client being served. A repeat visit in the same month
// is still recorded; the result flags it so the caller can warn.
func RecordVisit(
	ctx context.Context,
	store RecordVisitStore,
	logger *zap.Logger,
	clientID, dateStr, servedBy string,
) (*VisitResult, error) {
	date, err := parseDateInput(dateStr)
	if err != nil {
		return nil, err
	}

	client, err := store.GetClient(ctx, clientID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	first, last := monthBounds(date)
	visits, err := store.GetVisitsBetween(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch visits: %w", err)
	}

	already := false
	for _, v := range visits {
		if v.ClientID == clientID {
			already = true
			break
		}
	}

	visit := model.Visit{
		ID:        newID(),
		ClientID:  clientID,
		Date:      schedule.FormatDate(date),
		ServedBy:  strings.TrimSpace(servedBy),
		CreatedAt: timeNow().UTC(),
	}
	if err := store.InsertVisit(ctx, &visit); err != nil {
		return nil, fmt.Errorf("failed to save visit: %w", err)
	}

	if already {
		logger.Warn("Client already visited this month", zap.String("client_id", clientID), zap.String("date", visit.Date))
	} else {
		logger.Info("Recorded visit", zap.String("client_id", clientID), zap.String("date", visit.Date))
	}

	return &VisitResult{Visit: visit, Client: *client, AlreadyVisitedThisMonth: already}, nil
}
