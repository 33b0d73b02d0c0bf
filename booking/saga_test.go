package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxetravel/entity"
	"luxetravel/gateway"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []any
}

func (r *eventRecorder) Publish(_ context.Context, event any) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

func (r *eventRecorder) all() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

func testSession() entity.SessionState {
	expiry := time.Now().Add(time.Hour)
	return entity.SessionState{
		Bus: &entity.Credential{
			Service:   entity.ServiceBus,
			Token:     "bus-token",
			UserID:    7,
			Name:      "Jane Doe",
			Email:     "jane@example.com",
			ExpiresAt: expiry,
		},
		Food: &entity.Credential{
			Service:   entity.ServiceFood,
			Token:     "food-token",
			ExpiresAt: expiry,
		},
	}
}

func testDraft(lines ...entity.FoodLine) *entity.BookingDraft {
	return &entity.BookingDraft{
		ID: "draft-1",
		Route: entity.Route{
			BusID:         3,
			BusName:       "Luxe Prime",
			DepartureCity: "Jakarta",
			ArrivalCity:   "Bandung",
			DepartureTime: time.Date(2024, time.May, 3, 8, 0, 0, 0, time.UTC),
			Price:         150_000,
		},
		Seat:      "12A",
		FoodLines: lines,
	}
}

func TestSaga_Confirm_WithoutAddons(t *testing.T) {
	bus := &gateway.BusMock{}
	food := &gateway.FoodMock{}
	events := &eventRecorder{}
	saga := NewSaga(bus, food, events)

	draft := testDraft()
	result, err := saga.Confirm(context.Background(), draft, testSession())
	require.NoError(t, err)

	assert.Equal(t, "LUX-JDLPJB0305080", result.TicketCode)
	assert.Equal(t, int64(150_000), result.TotalPrice)
	assert.False(t, result.HasAddons)
	assert.True(t, draft.Confirmed)

	// A draft without food lines must never touch the food service.
	assert.Zero(t, food.CreatedOrderCount())

	require.Len(t, bus.CreatedTickets, 1)
	created := bus.CreatedTickets[0]
	assert.Equal(t, 7, created.UserID)
	assert.Equal(t, "LUX-JDLPJB0305080", created.TicketCode)
	assert.False(t, created.HasAddons)

	published := events.all()
	require.Len(t, published, 1)
	confirmed, ok := published[0].(entity.BookingConfirmed)
	require.True(t, ok)
	assert.Equal(t, draft.ID, confirmed.DraftID)
	assert.Equal(t, draft.TicketCode, confirmed.TicketCode)
}

func TestSaga_Confirm_WithAddons(t *testing.T) {
	bus := &gateway.BusMock{}
	food := &gateway.FoodMock{}
	events := &eventRecorder{}
	saga := NewSaga(bus, food, events)

	draft := testDraft(entity.FoodLine{FoodID: 1, FoodName: "Nasi Goreng", UnitPrice: 25_000, Quantity: 2})
	result, err := saga.Confirm(context.Background(), draft, testSession())
	require.NoError(t, err)

	assert.Equal(t, "LUX-JDLPJB0305081", result.TicketCode)
	assert.Equal(t, int64(200_000), result.TotalPrice)
	assert.True(t, result.HasAddons)

	require.Len(t, food.CreatedOrders, 1)
	order := food.CreatedOrders[0]
	assert.Equal(t, "LUX-JDLPJB0305081", order.TicketCode)
	assert.Equal(t, int64(50_000), order.TotalPrice)
}

func TestSaga_Confirm_TicketCreationFails(t *testing.T) {
	bus := &gateway.BusMock{CreateTicketErr: entity.ErrServiceUnavailable}
	food := &gateway.FoodMock{}
	events := &eventRecorder{}
	saga := NewSaga(bus, food, events)

	draft := testDraft(entity.FoodLine{FoodID: 1, UnitPrice: 10_000, Quantity: 1})
	_, err := saga.Confirm(context.Background(), draft, testSession())

	var ticketErr entity.TicketCreationError
	require.ErrorAs(t, err, &ticketErr)
	assert.ErrorIs(t, err, entity.ErrServiceUnavailable)

	// Nothing was created, so nothing is compensated.
	assert.Zero(t, bus.DeletedCodeCount())
	assert.Zero(t, food.CreatedOrderCount())
	assert.False(t, draft.Confirmed)
	assert.Empty(t, draft.TicketCode)
	assert.Empty(t, events.all())
}

func TestSaga_Confirm_AddonFailureCompensates(t *testing.T) {
	bus := &gateway.BusMock{}
	food := &gateway.FoodMock{CreateOrderErr: entity.ErrServiceUnavailable}
	events := &eventRecorder{}
	saga := NewSaga(bus, food, events)

	draft := testDraft(entity.FoodLine{FoodID: 1, UnitPrice: 10_000, Quantity: 1})
	_, err := saga.Confirm(context.Background(), draft, testSession())

	var addonErr entity.AddonCreationError
	require.ErrorAs(t, err, &addonErr)

	// Exactly one compensating delete, for the code that was created.
	require.Len(t, bus.DeletedCodes, 1)
	assert.Equal(t, "LUX-JDLPJB0305081", bus.DeletedCodes[0])

	assert.False(t, draft.Confirmed)
	assert.Empty(t, draft.TicketCode, "compensated draft must not retain the ticket code")

	published := events.all()
	require.Len(t, published, 1)
	compensated, ok := published[0].(entity.BookingCompensated)
	require.True(t, ok)
	assert.Equal(t, "LUX-JDLPJB0305081", compensated.TicketCode)
}

func TestSaga_Confirm_CompensationFailureOrphans(t *testing.T) {
	bus := &gateway.BusMock{DeleteTicketErr: entity.ErrServiceUnavailable}
	food := &gateway.FoodMock{CreateOrderErr: entity.ErrServiceUnavailable}
	events := &eventRecorder{}
	saga := NewSaga(bus, food, events)

	draft := testDraft(entity.FoodLine{FoodID: 1, UnitPrice: 10_000, Quantity: 1})
	_, err := saga.Confirm(context.Background(), draft, testSession())

	var orphanErr entity.OrphanedTicketError
	require.ErrorAs(t, err, &orphanErr)
	assert.Equal(t, "LUX-JDLPJB0305081", orphanErr.TicketCode)

	// The code stays on the draft so the residual ticket can be found again.
	assert.Equal(t, "LUX-JDLPJB0305081", draft.TicketCode)
	assert.False(t, draft.Confirmed)

	published := events.all()
	require.Len(t, published, 1)
	orphaned, ok := published[0].(entity.TicketOrphaned)
	require.True(t, ok)
	assert.Equal(t, "LUX-JDLPJB0305081", orphaned.TicketCode)
}

func TestSaga_Confirm_SecondCallWhileInFlight(t *testing.T) {
	block := make(chan struct{})
	bus := &gateway.BusMock{CreateTicketBlock: block}
	food := &gateway.FoodMock{}
	saga := NewSaga(bus, food, &eventRecorder{})

	draft := testDraft()
	session := testSession()

	firstDone := make(chan error, 1)
	go func() {
		_, err := saga.Confirm(context.Background(), draft, session)
		firstDone <- err
	}()

	// Wait for the first run to take the in-flight slot.
	require.Eventually(t, func() bool {
		saga.mu.Lock()
		defer saga.mu.Unlock()
		_, running := saga.inFlight[draft.ID]
		return running
	}, time.Second, time.Millisecond)

	_, err := saga.Confirm(context.Background(), draft, session)
	assert.ErrorIs(t, err, entity.ErrAlreadyInProgress)

	close(block)
	require.NoError(t, <-firstDone)

	// The rejected call must not have reached either service.
	assert.Equal(t, 1, bus.CreatedTicketCount())
	assert.Zero(t, bus.DeletedCodeCount())
}

func TestSaga_Confirm_Validation(t *testing.T) {
	saga := NewSaga(&gateway.BusMock{}, &gateway.FoodMock{}, &eventRecorder{})
	session := testSession()

	_, err := saga.Confirm(context.Background(), nil, session)
	assert.ErrorIs(t, err, entity.ErrValidationFailed)

	noSeat := testDraft()
	noSeat.Seat = ""
	_, err = saga.Confirm(context.Background(), noSeat, session)
	assert.ErrorIs(t, err, entity.ErrValidationFailed)

	_, err = saga.Confirm(context.Background(), testDraft(), entity.SessionState{})
	assert.ErrorIs(t, err, entity.ErrSessionExpired)

	withAddons := testDraft(entity.FoodLine{FoodID: 1, UnitPrice: 1_000, Quantity: 1})
	busOnly := entity.SessionState{Bus: session.Bus}
	_, err = saga.Confirm(context.Background(), withAddons, busOnly)
	assert.ErrorIs(t, err, entity.ErrSessionExpired)
}

func TestSaga_Confirm_ServerIssuedCodeWins(t *testing.T) {
	bus := &serverCodeBus{code: "LUX-SERVER0001"}
	saga := NewSaga(bus, &gateway.FoodMock{}, &eventRecorder{})

	draft := testDraft()
	result, err := saga.Confirm(context.Background(), draft, testSession())
	require.NoError(t, err)
	assert.Equal(t, "LUX-SERVER0001", result.TicketCode)
	assert.Equal(t, "LUX-SERVER0001", draft.TicketCode)
}

type serverCodeBus struct {
	gateway.BusMock
	code string
}

func (b *serverCodeBus) CreateTicket(ctx context.Context, token string, req entity.CreateTicketRequest) (entity.Ticket, error) {
	ticket, err := b.BusMock.CreateTicket(ctx, token, req)
	if err != nil {
		return entity.Ticket{}, err
	}
	ticket.TicketCode = b.code
	return ticket, nil
}
