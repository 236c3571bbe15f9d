package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/eventease/eventease/internal/domain"
	"github.com/eventease/eventease/internal/dto"
	"github.com/eventease/eventease/internal/repository/memory"
)

func newTestStore(t *testing.T) (*memory.Store, *domain.Event, *domain.TicketType) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	event := &domain.Event{
		ID:          uuid.New().String(),
		OrganizerID: uuid.New().String(),
		Name:        "GopherCon",
		Venue:       "Convention Center",
		StartTime:   time.Now().Add(24 * time.Hour),
		EndTime:     time.Now().Add(32 * time.Hour),
		Status:      domain.EventStatusApproved,
	}
	if err := store.Events().Create(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	tt := &domain.TicketType{
		ID:         uuid.New().String(),
		EventID:    event.ID,
		Name:       "General Admission",
		Price:      50,
		Currency:   "USD",
		Quantity:   10,
		MaxPerUser: 4,
	}
	if err := store.TicketTypes().Create(ctx, tt); err != nil {
		t.Fatalf("create ticket type: %v", err)
	}

	return store, event, tt
}

func TestBookingService_CreateBooking(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		quantity int
		setup    func(store *memory.Store, event *domain.Event, tt *domain.TicketType)
		wantErr  error
	}{
		{
			name:     "successful booking",
			userID:   "user-001",
			quantity: 2,
		},
		{
			name:     "quantity equal to remaining capacity",
			userID:   "user-001",
			quantity: 4,
		},
		{
			name:     "zero quantity",
			userID:   "user-001",
			quantity: 0,
			wantErr:  domain.ErrInvalidQuantity,
		},
		{
			name:     "negative quantity",
			userID:   "user-001",
			quantity: -2,
			wantErr:  domain.ErrInvalidQuantity,
		},
		{
			name:     "missing user",
			userID:   "",
			quantity: 2,
			wantErr:  domain.ErrInvalidUserID,
		},
		{
			name:     "quantity above availability",
			userID:   "user-001",
			quantity: 11,
			wantErr:  domain.ErrInsufficientInventory,
		},
		{
			name:     "per-user limit exceeded in one request",
			userID:   "user-001",
			quantity: 5,
			wantErr:  domain.ErrUserLimitExceeded,
		},
		{
			name:     "event not approved",
			userID:   "user-001",
			quantity: 2,
			setup: func(store *memory.Store, event *domain.Event, tt *domain.TicketType) {
				event.Status = domain.EventStatusPending
				_ = store.Events().Create(context.Background(), event)
			},
			wantErr: domain.ErrEventNotApproved,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, event, tt := newTestStore(t)
			if tc.setup != nil {
				tc.setup(store, event, tt)
			}

			svc := NewBookingService(store, nil, &BookingServiceConfig{DefaultCurrency: "USD"})
			resp, err := svc.CreateBooking(context.Background(), tc.userID, event.ID, &dto.CreateBookingRequest{
				TicketTypeID: tt.ID,
				Quantity:     tc.quantity,
			})

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("CreateBooking() error = %v, wantErr %v", err, tc.wantErr)
				}
				// Failed bookings must not touch the sold counter.
				after, _ := store.TicketTypes().GetByID(context.Background(), tt.ID)
				if after != nil && after.Sold != 0 {
					t.Errorf("sold = %d after failed booking, want 0", after.Sold)
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateBooking() unexpected error = %v", err)
			}
			if resp.Reference == "" {
				t.Error("CreateBooking() returned empty reference")
			}
			if resp.Status != string(domain.BookingStatusConfirmed) {
				t.Errorf("status = %s, want confirmed", resp.Status)
			}
			if resp.TotalPrice != float64(tc.quantity)*50 {
				t.Errorf("total price = %v, want %v", resp.TotalPrice, float64(tc.quantity)*50)
			}

			after, err := store.TicketTypes().GetByID(context.Background(), tt.ID)
			if err != nil {
				t.Fatalf("get ticket type: %v", err)
			}
			if after.Sold != tc.quantity {
				t.Errorf("sold = %d, want %d", after.Sold, tc.quantity)
			}
		})
	}
}

func TestBookingService_CreateBooking_WrongEvent(t *testing.T) {
	store, _, tt := newTestStore(t)
	ctx := context.Background()

	other := &domain.Event{
		ID:          uuid.New().String(),
		OrganizerID: uuid.New().String(),
		Name:        "Other Conf",
		StartTime:   time.Now().Add(24 * time.Hour),
		EndTime:     time.Now().Add(30 * time.Hour),
		Status:      domain.EventStatusApproved,
	}
	if err := store.Events().Create(ctx, other); err != nil {
		t.Fatalf("create event: %v", err)
	}

	svc := NewBookingService(store, nil, nil)
	_, err := svc.CreateBooking(ctx, "user-001", other.ID, &dto.CreateBookingRequest{
		TicketTypeID: tt.ID,
		Quantity:     1,
	})
	if !errors.Is(err, domain.ErrTicketTypeNotFound) {
		t.Errorf("CreateBooking() error = %v, want ErrTicketTypeNotFound", err)
	}
}

func TestBookingService_CreateBooking_UserLimitAcrossBookings(t *testing.T) {
	store, event, tt := newTestStore(t)
	ctx := context.Background()
	svc := NewBookingService(store, nil, nil)

	// Two bookings of 2 reach the limit of 4.
	for i := 0; i < 2; i++ {
		if _, err := svc.CreateBooking(ctx, "user-001", event.ID, &dto.CreateBookingRequest{
			TicketTypeID: tt.ID,
			Quantity:     2,
		}); err != nil {
			t.Fatalf("booking %d: %v", i, err)
		}
	}

	_, err := svc.CreateBooking(ctx, "user-001", event.ID, &dto.CreateBookingRequest{
		TicketTypeID: tt.ID,
		Quantity:     1,
	})
	if !errors.Is(err, domain.ErrUserLimitExceeded) {
		t.Fatalf("CreateBooking() error = %v, want ErrUserLimitExceeded", err)
	}

	// Another user is unaffected.
	if _, err := svc.CreateBooking(ctx, "user-002", event.ID, &dto.CreateBookingRequest{
		TicketTypeID: tt.ID,
		Quantity:     2,
	}); err != nil {
		t.Fatalf("other user booking: %v", err)
	}
}

func TestBookingService_CancelReleasesLimit(t *testing.T) {
	store, event, tt := newTestStore(t)
	ctx := context.Background()
	svc := NewBookingService(store, nil, nil)

	first, err := svc.CreateBooking(ctx, "user-001", event.ID, &dto.CreateBookingRequest{
		TicketTypeID: tt.ID,
		Quantity:     4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.CancelBooking(ctx, first.ID, "user-001"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Cancelled units no longer count toward the per-user limit.
	if _, err := svc.CreateBooking(ctx, "user-001", event.ID, &dto.CreateBookingRequest{
		TicketTypeID: tt.ID,
		Quantity:     4,
	}); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}

	after, _ := store.TicketTypes().GetByID(ctx, tt.ID)
	if after.Sold != 4 {
		t.Errorf("sold = %d, want 4", after.Sold)
	}
}

func TestBookingService_CancelBooking(t *testing.T) {
	store, event, tt := newTestStore(t)
	ctx := context.Background()
	svc := NewBookingService(store, nil, nil)

	created, err := svc.CreateBooking(ctx, "user-001", event.ID, &dto.CreateBookingRequest{
		TicketTypeID: tt.ID,
		Quantity:     3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("owner cancels and inventory returns", func(t *testing.T) {
		resp, err := svc.CancelBooking(ctx, created.ID, "user-001")
		if err != nil {
			t.Fatalf("CancelBooking() error = %v", err)
		}
		if resp.Status != string(domain.BookingStatusCancelled) {
			t.Errorf("status = %s, want cancelled", resp.Status)
		}
		after, _ := store.TicketTypes().GetByID(ctx, tt.ID)
		if after.Sold != 0 {
			t.Errorf("sold = %d after cancel, want 0", after.Sold)
		}
	})

	t.Run("second cancel fails and inventory is untouched", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, created.ID, "user-001")
		if !errors.Is(err, domain.ErrAlreadyCancelled) {
			t.Fatalf("CancelBooking() error = %v, want ErrAlreadyCancelled", err)
		}
		after, _ := store.TicketTypes().GetByID(ctx, tt.ID)
		if after.Sold != 0 {
			t.Errorf("sold = %d after double cancel, want 0", after.Sold)
		}
	})

	t.Run("stranger sees not found", func(t *testing.T) {
		other, err := svc.CreateBooking(ctx, "user-002", event.ID, &dto.CreateBookingRequest{
			TicketTypeID: tt.ID,
			Quantity:     1,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		_, err = svc.CancelBooking(ctx, other.ID, "user-003")
		if !errors.Is(err, domain.ErrBookingNotFound) {
			t.Errorf("CancelBooking() error = %v, want ErrBookingNotFound", err)
		}
	})
}

func TestBookingService_CheckInBooking(t *testing.T) {
	store, event, tt := newTestStore(t)
	ctx := context.Background()
	svc := NewBookingService(store, nil, nil)

	created, err := svc.CreateBooking(ctx, "user-001", event.ID, &dto.CreateBookingRequest{
		TicketTypeID: tt.ID,
		Quantity:     2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	t.Run("first check-in succeeds without touching inventory", func(t *testing.T) {
		resp, err := svc.CheckInBooking(ctx, event.ID, created.ID)
		if err != nil {
			t.Fatalf("CheckInBooking() error = %v", err)
		}
		if resp.Status != string(domain.BookingStatusCheckedIn) {
			t.Errorf("status = %s, want checked_in", resp.Status)
		}
		after, _ := store.TicketTypes().GetByID(ctx, tt.ID)
		if after.Sold != 2 {
			t.Errorf("sold = %d after check-in, want 2", after.Sold)
		}
	})

	t.Run("second check-in fails", func(t *testing.T) {
		_, err := svc.CheckInBooking(ctx, event.ID, created.ID)
		if !errors.Is(err, domain.ErrAlreadyCheckedIn) {
			t.Errorf("CheckInBooking() error = %v, want ErrAlreadyCheckedIn", err)
		}
	})

	t.Run("cancel after check-in fails", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, created.ID, "user-001")
		if !errors.Is(err, domain.ErrCannotCancelCheckedIn) {
			t.Errorf("CancelBooking() error = %v, want ErrCannotCancelCheckedIn", err)
		}
	})

	t.Run("check-in of cancelled booking fails", func(t *testing.T) {
		cancelled, err := svc.CreateBooking(ctx, "user-002", event.ID, &dto.CreateBookingRequest{
			TicketTypeID: tt.ID,
			Quantity:     1,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := svc.CancelBooking(ctx, cancelled.ID, "user-002"); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		_, err = svc.CheckInBooking(ctx, event.ID, cancelled.ID)
		if !errors.Is(err, domain.ErrCannotCheckInCancelled) {
			t.Errorf("CheckInBooking() error = %v, want ErrCannotCheckInCancelled", err)
		}
	})

	t.Run("wrong event sees not found", func(t *testing.T) {
		_, err := svc.CheckInBooking(ctx, uuid.New().String(), created.ID)
		if !errors.Is(err, domain.ErrBookingNotFound) {
			t.Errorf("CheckInBooking() error = %v, want ErrBookingNotFound", err)
		}
	})
}

func TestBookingService_GetBooking(t *testing.T) {
	store, event, tt := newTestStore(t)
	ctx := context.Background()
	svc := NewBookingService(store, nil, nil)

	created, err := svc.CreateBooking(ctx, "user-001", event.ID, &dto.CreateBookingRequest{
		TicketTypeID: tt.ID,
		Quantity:     1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.GetBooking(ctx, created.ID, "user-001")
	if err != nil {
		t.Fatalf("GetBooking() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetBooking() id = %s, want %s", got.ID, created.ID)
	}

	byRef, err := svc.GetBookingByReference(ctx, created.Reference, "user-001")
	if err != nil {
		t.Fatalf("GetBookingByReference() error = %v", err)
	}
	if byRef.ID != created.ID {
		t.Errorf("GetBookingByReference() id = %s, want %s", byRef.ID, created.ID)
	}

	// Someone else's booking reads as not found, not forbidden.
	if _, err := svc.GetBooking(ctx, created.ID, "user-002"); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Errorf("GetBooking() as stranger error = %v, want ErrBookingNotFound", err)
	}
}

func TestBookingService_ConcurrentBookingsNeverOversell(t *testing.T) {
	store, event, _ := newTestStore(t)
	ctx := context.Background()

	// A tier with 5 units, no per-user cap, and 20 buyers of 1 each.
	scarce := &domain.TicketType{
		ID:       uuid.New().String(),
		EventID:  event.ID,
		Name:     "VIP",
		Price:    200,
		Quantity: 5,
	}
	if err := store.TicketTypes().Create(ctx, scarce); err != nil {
		t.Fatalf("create ticket type: %v", err)
	}

	svc := NewBookingService(store, nil, nil)

	const buyers = 20
	var wg sync.WaitGroup
	results := make(chan error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.CreateBooking(ctx, uuid.New().String(), event.ID, &dto.CreateBookingRequest{
				TicketTypeID: scarce.ID,
				Quantity:     1,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInsufficientInventory):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != 5 {
		t.Errorf("succeeded = %d, want exactly 5", succeeded)
	}
	if rejected != 15 {
		t.Errorf("rejected = %d, want 15", rejected)
	}

	after, _ := store.TicketTypes().GetByID(ctx, scarce.ID)
	if after.Sold != 5 {
		t.Errorf("sold = %d, want 5", after.Sold)
	}
}

func TestBookingService_ConcurrentCancelIsExactlyOnce(t *testing.T) {
	store, event, tt := newTestStore(t)
	ctx := context.Background()
	svc := NewBookingService(store, nil, nil)

	created, err := svc.CreateBooking(ctx, "user-001", event.ID, &dto.CreateBookingRequest{
		TicketTypeID: tt.ID,
		Quantity:     3,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CancelBooking(ctx, created.ID, "user-001")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrAlreadyCancelled) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("succeeded = %d, want exactly 1", succeeded)
	}

	// Inventory released exactly once: sold returned to zero, not below.
	after, _ := store.TicketTypes().GetByID(ctx, tt.ID)
	if after.Sold != 0 {
		t.Errorf("sold = %d, want 0", after.Sold)
	}
}

func TestBookingService_ReferenceRetryExhaustion(t *testing.T) {
	store, event, tt := newTestStore(t)
	ctx := context.Background()
	svc := NewBookingService(store, nil, &BookingServiceConfig{ReferenceAttempts: 3})

	// The retry loop is exercised indirectly: generated references are
	// effectively collision-free, so a long run of bookings must all
	// succeed with distinct references.
	seen := make(map[string]bool)
	for i := 0; i < 8; i++ {
		resp, err := svc.CreateBooking(ctx, uuid.New().String(), event.ID, &dto.CreateBookingRequest{
			TicketTypeID: tt.ID,
			Quantity:     1,
		})
		if err != nil {
			t.Fatalf("booking %d: %v", i, err)
		}
		if seen[resp.Reference] {
			t.Fatalf("duplicate reference %s", resp.Reference)
		}
		seen[resp.Reference] = true
	}
}

func TestBookingService_ListUserBookings(t *testing.T) {
	store, event, tt := newTestStore(t)
	ctx := context.Background()
	svc := NewBookingService(store, nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.CreateBooking(ctx, "user-001", event.ID, &dto.CreateBookingRequest{
			TicketTypeID: tt.ID,
			Quantity:     1,
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	bookings, err := svc.ListUserBookings(ctx, "user-001", 1, 10)
	if err != nil {
		t.Fatalf("ListUserBookings() error = %v", err)
	}
	if len(bookings) != 3 {
		t.Errorf("len = %d, want 3", len(bookings))
	}

	empty, err := svc.ListUserBookings(ctx, "user-unknown", 1, 10)
	if err != nil {
		t.Fatalf("ListUserBookings() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("len = %d, want 0", len(empty))
	}
}
