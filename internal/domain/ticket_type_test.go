package domain

import (
	"errors"
	"testing"
)

func TestTicketType_Available(t *testing.T) {
	tt := &TicketType{Quantity: 100, Sold: 37}
	if got := tt.Available(); got != 63 {
		t.Errorf("Available() = %d, want 63", got)
	}
}

func TestTicketType_HasCapacity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		sold     int
		qty      int
		want     bool
	}{
		{name: "plenty of room", quantity: 100, sold: 0, qty: 5, want: true},
		{name: "exactly the remainder", quantity: 100, sold: 95, qty: 5, want: true},
		{name: "one over the remainder", quantity: 100, sold: 96, qty: 5, want: false},
		{name: "sold out", quantity: 100, sold: 100, qty: 1, want: false},
		{name: "zero quantity rejected", quantity: 100, sold: 0, qty: 0, want: false},
		{name: "negative quantity rejected", quantity: 100, sold: 0, qty: -3, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := &TicketType{Quantity: tc.quantity, Sold: tc.sold}
			if got := tt.HasCapacity(tc.qty); got != tc.want {
				t.Errorf("HasCapacity(%d) = %v, want %v", tc.qty, got, tc.want)
			}
		})
	}
}

func TestTicketType_PriceFor(t *testing.T) {
	paid := &TicketType{Price: 25.50}
	if got := paid.PriceFor(4); got != 102.0 {
		t.Errorf("PriceFor(4) = %v, want 102", got)
	}

	// Free tiers price to zero even when a price is stored.
	free := &TicketType{Price: 25.50, IsFree: true}
	if got := free.PriceFor(4); got != 0 {
		t.Errorf("free PriceFor(4) = %v, want 0", got)
	}
}

func TestTicketType_Validate(t *testing.T) {
	valid := TicketType{
		EventID:  "event-001",
		Name:     "General Admission",
		Quantity: 100,
	}

	tests := []struct {
		name    string
		mutate  func(*TicketType)
		wantErr error
	}{
		{name: "valid ticket type", mutate: func(tt *TicketType) {}, wantErr: nil},
		{name: "missing event", mutate: func(tt *TicketType) { tt.EventID = "" }, wantErr: ErrInvalidEventID},
		{name: "blank name", mutate: func(tt *TicketType) { tt.Name = "   " }, wantErr: ErrInvalidName},
		{name: "zero capacity", mutate: func(tt *TicketType) { tt.Quantity = 0 }, wantErr: ErrInvalidCapacity},
		{name: "negative price", mutate: func(tt *TicketType) { tt.Price = -1 }, wantErr: ErrInvalidPrice},
		{name: "sold above quantity", mutate: func(tt *TicketType) { tt.Sold = 101 }, wantErr: ErrNegativeInventory},
		{name: "negative sold", mutate: func(tt *TicketType) { tt.Sold = -1 }, wantErr: ErrNegativeInventory},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tt := valid
			tc.mutate(&tt)
			err := tt.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsNotFoundError(ErrBookingNotFound) {
		t.Error("ErrBookingNotFound should classify as not found")
	}
	if !IsConflictError(ErrInsufficientInventory) {
		t.Error("ErrInsufficientInventory should classify as conflict")
	}
	if !IsConflictError(ErrUserLimitExceeded) {
		t.Error("ErrUserLimitExceeded should classify as conflict")
	}
	if !IsInternalError(ErrReferenceGenerationFailed) {
		t.Error("ErrReferenceGenerationFailed should classify as internal")
	}
	if IsConflictError(ErrBookingNotFound) {
		t.Error("ErrBookingNotFound should not classify as conflict")
	}
	if IsInternalError(ErrInvalidQuantity) {
		t.Error("ErrInvalidQuantity should not classify as internal")
	}
}
