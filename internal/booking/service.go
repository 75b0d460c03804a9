// Package booking implements the reservation validation pipeline: time
// normalization, future and interval checks, room existence, overlap
// exclusion and the public-holiday blackout, in that order, short-circuiting
// on the first failure.
package booking

import (
	"context"
	"errors"
	"time"

	"booking-rooms-backend/internal/holiday"
	"booking-rooms-backend/internal/model"
	"booking-rooms-backend/internal/result"
	"booking-rooms-backend/internal/store"
)

// CreateRequest is the reservation creation payload.
type CreateRequest struct {
	RoomID    int64  `json:"roomId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

// View is the hydrated reservation representation returned by the API.
type View struct {
	ID           int64     `json:"id"`
	RoomID       int64     `json:"roomId"`
	RoomName     string    `json:"roomName"`
	UserID       string    `json:"userId"`
	UserName     string    `json:"userName"`
	StartTimeUtc time.Time `json:"startTimeUtc"`
	EndTimeUtc   time.Time `json:"endTimeUtc"`
	Status       string    `json:"status"`
}

// Oracle answers public-holiday queries. Satisfied by *holiday.Oracle.
type Oracle interface {
	IsPublicHoliday(ctx context.Context, date time.Time, countryCode string) (bool, error)
}

var _ Oracle = (*holiday.Oracle)(nil)

// Service orchestrates reservation creation, retrieval and cancellation.
type Service struct {
	store       store.Store
	oracle      Oracle
	countryCode string
	loc         *time.Location
	now         func() time.Time
}

// NewService builds a Service. loc is the zone in which incoming wall-clock
// times are interpreted; countryCode scopes the holiday blackout.
func NewService(s store.Store, oracle Oracle, countryCode string, loc *time.Location) *Service {
	return &Service{
		store:       s,
		oracle:      oracle,
		countryCode: countryCode,
		loc:         loc,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create runs the full validation pipeline and persists the reservation on
// success. Checks are ordered cheapest first: pure computation, then the
// database, then the remote holiday service, so doomed requests never reach
// the network.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*View, error) {
	startUtc, endUtc, err := NormalizeInterval(req.Date, req.StartTime, req.EndTime, s.loc)
	if err != nil {
		return nil, result.Validation(err.Error())
	}

	if !startUtc.After(s.now()) {
		return nil, result.Validation("Reservation start time must be in the future.")
	}

	if !startUtc.Before(endUtc) {
		return nil, result.Validation("Start time must be before end time.")
	}

	exists, err := s.store.RoomExists(ctx, req.RoomID)
	if err != nil {
		return nil, result.From(err)
	}
	if !exists {
		return nil, result.NotFound("Room", req.RoomID)
	}

	overlaps, err := s.store.HasOverlap(ctx, req.RoomID, startUtc, endUtc)
	if err != nil {
		return nil, result.From(err)
	}
	if overlaps {
		return nil, result.Conflict("The room is already booked for the requested time slot.")
	}

	isHoliday, err := s.oracle.IsPublicHoliday(ctx, startUtc, s.countryCode)
	if err != nil {
		// An oracle outage is a Failure, not a validation rejection.
		return nil, result.Failuref("holiday lookup failed: %v", err)
	}
	if isHoliday {
		return nil, result.Validation("Reservations cannot be made on public holidays.")
	}

	res := &model.Reservation{
		RoomID:       req.RoomID,
		UserID:       userID,
		StartTimeUtc: startUtc,
		EndTimeUtc:   endUtc,
		Status:       model.StatusActive,
		CreatedAtUtc: s.now(),
	}

	if err := s.store.CreateReservation(ctx, res); err != nil {
		if errors.Is(err, store.ErrOverlap) {
			// A concurrent request won the slot between the pre-check
			// and the insert transaction.
			return nil, result.Conflict("The room is already booked for the requested time slot.")
		}
		return nil, result.From(err)
	}

	return toView(res), nil
}

// Get returns a single reservation. Non-admins may only see their own;
// anything else reads as NotFound so existence is not leaked.
func (s *Service) Get(ctx context.Context, id int64, userID string, isAdmin bool) (*View, error) {
	res, err := s.store.GetReservation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, result.NotFound("Reservation", id)
	}
	if err != nil {
		return nil, result.From(err)
	}
	if !isAdmin && res.UserID != userID {
		return nil, result.NotFound("Reservation", id)
	}
	return toView(res), nil
}

// List returns all reservations for admins, and only the caller's own
// otherwise, ordered by start time ascending.
func (s *Service) List(ctx context.Context, userID string, isAdmin bool) ([]View, error) {
	var (
		reservations []model.Reservation
		err          error
	)
	if isAdmin {
		reservations, err = s.store.ListAllReservations(ctx)
	} else {
		reservations, err = s.store.ListReservationsByUser(ctx, userID)
	}
	if err != nil {
		return nil, result.From(err)
	}

	views := make([]View, 0, len(reservations))
	for i := range reservations {
		views = append(views, *toView(&reservations[i]))
	}
	return views, nil
}

// Cancel transitions a reservation to Cancelled and returns it so callers
// can notify watchers of the freed slot. Cancelling an already-cancelled
// reservation is a Validation failure, not a no-op.
func (s *Service) Cancel(ctx context.Context, id int64, userID string, isAdmin bool) (*model.Reservation, error) {
	existing, err := s.store.GetReservation(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, result.NotFound("Reservation", id)
	}
	if err != nil {
		return nil, result.From(err)
	}
	if !isAdmin && existing.UserID != userID {
		return nil, result.NotFound("Reservation", id)
	}

	res, err := s.store.CancelReservation(ctx, id)
	if errors.Is(err, store.ErrAlreadyCancelled) {
		return nil, result.Validation("Reservation is already cancelled.")
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, result.NotFound("Reservation", id)
	}
	if err != nil {
		return nil, result.From(err)
	}
	return res, nil
}

func toView(res *model.Reservation) *View {
	return &View{
		ID:           res.ID,
		RoomID:       res.RoomID,
		RoomName:     res.Room.Name,
		UserID:       res.UserID,
		UserName:     res.User.DisplayName,
		StartTimeUtc: res.StartTimeUtc.UTC(),
		EndTimeUtc:   res.EndTimeUtc.UTC(),
		Status:       res.Status.String(),
	}
}
