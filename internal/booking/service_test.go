package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"booking-rooms-backend/internal/db"
	"booking-rooms-backend/internal/model"
	"booking-rooms-backend/internal/result"
	"booking-rooms-backend/internal/store"
)

// fakeOracle is a deterministic in-memory Oracle.
type fakeOracle struct {
	holidays map[string]bool
	err      error
}

func (f *fakeOracle) IsPublicHoliday(ctx context.Context, date time.Time, countryCode string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.holidays[date.Format("2006-01-02")], nil
}

func newTestService(t *testing.T, oracle Oracle) (*Service, store.Store, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB)
	if oracle == nil {
		oracle = &fakeOracle{}
	}
	return NewService(s, oracle, "MX", time.UTC), s, gormDB
}

func seedRoomAndUser(t *testing.T, gormDB *gorm.DB) (*model.Room, *model.User) {
	t.Helper()

	room := &model.Room{Name: "Boardroom", Capacity: 12, Location: "3F"}
	require.NoError(t, gormDB.Create(room).Error)

	user := &model.User{
		ID:           "11111111-1111-1111-1111-111111111111",
		Email:        "alice@example.com",
		DisplayName:  "alice@example.com",
		PasswordHash: "x",
		Role:         model.RoleUser,
	}
	require.NoError(t, gormDB.Create(user).Error)
	return room, user
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
}

func kindOf(t *testing.T, err error) result.Kind {
	t.Helper()
	var e *result.Error
	require.ErrorAs(t, err, &e)
	return e.Kind
}

func TestCreate_Succeeds(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	view, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	assert.Equal(t, room.ID, view.RoomID)
	assert.Equal(t, "Boardroom", view.RoomName)
	assert.Equal(t, user.ID, view.UserID)
	assert.Equal(t, "alice@example.com", view.UserName)
	assert.Equal(t, "Active", view.Status)
	assert.True(t, view.EndTimeUtc.Sub(view.StartTimeUtc) == time.Hour)
}

func TestCreate_PastStartRejected(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: yesterday, StartTime: "10:00", EndTime: "11:00",
	})
	assert.Equal(t, result.KindValidation, kindOf(t, err))

	var count int64
	gormDB.Model(&model.Reservation{}).Count(&count)
	assert.Zero(t, count, "no record may be created on rejection")
}

func TestCreate_StartMustPrecedeEnd(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "11:00", EndTime: "10:00",
	})
	assert.Equal(t, result.KindValidation, kindOf(t, err))

	// Zero-length reservations are also invalid.
	_, err = svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "10:00",
	})
	assert.Equal(t, result.KindValidation, kindOf(t, err))
}

func TestCreate_MalformedInputRejected(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: "not-a-date", StartTime: "10:00", EndTime: "11:00",
	})
	assert.Equal(t, result.KindValidation, kindOf(t, err))
}

func TestCreate_UnknownRoom(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	_, user := seedRoomAndUser(t, gormDB)

	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: 9999, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	assert.Equal(t, result.KindNotFound, kindOf(t, err))
}

func TestCreate_OverlapConflicts(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:30", EndTime: "11:30",
	})
	assert.Equal(t, result.KindConflict, kindOf(t, err))
}

func TestCreate_AdjacentIntervalsBothSucceed(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	// Half-open intervals: the end instant is not part of the slot.
	_, err = svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "11:00", EndTime: "12:00",
	})
	assert.NoError(t, err)
}

func TestCreate_CancelledReservationDoesNotBlock(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	view, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), view.ID, user.ID, false)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:30", EndTime: "11:30",
	})
	assert.NoError(t, err, "a cancelled reservation must not block new bookings")
}

func TestCreate_CancelledSlotRebookableWithExactBounds(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	view, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), view.ID, user.ID, false)
	require.NoError(t, err)

	// Identical bounds, not merely a non-overlapping slot: the cancelled
	// row must not linger in the unique key space.
	rebooked, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err, "the exact slot of a cancelled reservation must be bookable")
	assert.Equal(t, "Active", rebooked.Status)
	assert.NotEqual(t, view.ID, rebooked.ID)
}

func TestCreate_HolidayRejected(t *testing.T) {
	date := futureDate()
	oracle := &fakeOracle{holidays: map[string]bool{date: true}}
	svc, _, gormDB := newTestService(t, oracle)
	room, user := seedRoomAndUser(t, gormDB)

	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: date, StartTime: "10:00", EndTime: "11:00",
	})
	assert.Equal(t, result.KindValidation, kindOf(t, err))
}

func TestCreate_OracleOutageIsFailureNotValidation(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("holiday service returned status 503")}
	svc, _, gormDB := newTestService(t, oracle)
	room, user := seedRoomAndUser(t, gormDB)

	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	assert.Equal(t, result.KindFailure, kindOf(t, err))

	var count int64
	gormDB.Model(&model.Reservation{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreate_HolidayCheckedAfterOverlap(t *testing.T) {
	// The oracle errors on every call; an overlapping request must still
	// report Conflict because the holiday lookup comes last.
	oracle := &fakeOracle{}
	svc, _, gormDB := newTestService(t, oracle)
	room, user := seedRoomAndUser(t, gormDB)

	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	oracle.err = errors.New("unreachable")
	_, err = svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:30", EndTime: "11:30",
	})
	assert.Equal(t, result.KindConflict, kindOf(t, err))
}

func TestCancel_Flows(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	view, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	res, err := svc.Cancel(context.Background(), view.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, room.ID, res.RoomID)

	// Cancelled is terminal; cancelling again is a validation failure.
	_, err = svc.Cancel(context.Background(), view.ID, user.ID, false)
	assert.Equal(t, result.KindValidation, kindOf(t, err))

	var stored model.Reservation
	require.NoError(t, gormDB.First(&stored, view.ID).Error)
	assert.Equal(t, model.StatusCancelled, stored.Status)

	_, err = svc.Cancel(context.Background(), 424242, user.ID, false)
	assert.Equal(t, result.KindNotFound, kindOf(t, err))
}

func TestCancel_OwnershipEnforced(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	other := &model.User{ID: "22222222-2222-2222-2222-222222222222", Email: "bob@example.com", DisplayName: "bob@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, gormDB.Create(other).Error)

	view, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), view.ID, other.ID, false)
	assert.Equal(t, result.KindNotFound, kindOf(t, err), "another user's reservation must read as absent")

	_, err = svc.Cancel(context.Background(), view.ID, other.ID, true)
	assert.NoError(t, err, "admins may cancel any reservation")
}

func TestGet_OwnerAndAdminOnly(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	view, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), view.ID, user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, view.ID, got.ID)

	_, err = svc.Get(context.Background(), view.ID, "someone-else", false)
	assert.Equal(t, result.KindNotFound, kindOf(t, err))

	_, err = svc.Get(context.Background(), view.ID, "someone-else", true)
	assert.NoError(t, err)
}

func TestList_RoleScoping(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	other := &model.User{ID: "22222222-2222-2222-2222-222222222222", Email: "bob@example.com", DisplayName: "bob@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, gormDB.Create(other).Error)

	// Created out of order to verify start-time ordering.
	_, err := svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "14:00", EndTime: "15:00",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), other.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "12:00", EndTime: "13:00",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), user.ID, CreateRequest{
		RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	own, err := svc.List(context.Background(), user.ID, false)
	require.NoError(t, err)
	require.Len(t, own, 2)
	for _, v := range own {
		assert.Equal(t, user.ID, v.UserID)
	}
	assert.True(t, own[0].StartTimeUtc.Before(own[1].StartTimeUtc))

	all, err := svc.List(context.Background(), user.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].StartTimeUtc.Before(all[i-1].StartTimeUtc))
	}
}

func TestCreate_ConcurrentOverlappingSubmissions(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	// A single pooled connection keeps sqlite honest; postgres relies on
	// the per-room advisory lock instead.
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	requests := []CreateRequest{
		{RoomID: room.ID, Date: futureDate(), StartTime: "10:00", EndTime: "11:00"},
		{RoomID: room.ID, Date: futureDate(), StartTime: "10:30", EndTime: "11:30"},
	}

	errs := make(chan error, len(requests))
	for _, req := range requests {
		go func(req CreateRequest) {
			_, err := svc.Create(context.Background(), user.ID, req)
			errs <- err
		}(req)
	}

	var failures []error
	for range requests {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}

	require.Len(t, failures, 1, "exactly one of two overlapping submissions may win")
	assert.Equal(t, result.KindConflict, kindOf(t, failures[0]))

	var active int64
	gormDB.Model(&model.Reservation{}).Where("status = ?", model.StatusActive).Count(&active)
	assert.Equal(t, int64(1), active)
}

func TestActiveReservationsNeverOverlapInvariant(t *testing.T) {
	svc, _, gormDB := newTestService(t, nil)
	room, user := seedRoomAndUser(t, gormDB)

	slots := [][2]string{
		{"08:00", "09:30"}, {"09:00", "10:00"}, {"09:30", "10:30"},
		{"10:00", "11:00"}, {"10:45", "11:15"}, {"11:00", "12:00"},
	}
	for _, slot := range slots {
		svc.Create(context.Background(), user.ID, CreateRequest{
			RoomID: room.ID, Date: futureDate(), StartTime: slot[0], EndTime: slot[1],
		})
	}

	var active []model.Reservation
	require.NoError(t, gormDB.Where("status = ?", model.StatusActive).Find(&active).Error)
	require.NotEmpty(t, active)

	for i := range active {
		for j := range active {
			if i == j {
				continue
			}
			disjoint := !active[i].EndTimeUtc.After(active[j].StartTimeUtc) ||
				!active[j].EndTimeUtc.After(active[i].StartTimeUtc)
			assert.True(t, disjoint, "active reservations %d and %d overlap", active[i].ID, active[j].ID)
		}
	}
}
