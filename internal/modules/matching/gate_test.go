package matching

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"cabcab/internal/modules/driver"
	"cabcab/internal/modules/location"
	"cabcab/internal/modules/ride"
	"cabcab/internal/types"
)

type gateFixture struct {
	gate      *Gate
	rides     *ride.MemoryStore
	locations *location.MemoryStore
	drivers   *driver.MemoryStore
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	rides := ride.NewMemoryStore()
	locations := location.NewMemoryStore()
	drivers := driver.NewMemoryStore()
	return &gateFixture{
		gate:      NewGate(rides, locations, drivers, nil, nil),
		rides:     rides,
		locations: locations,
		drivers:   drivers,
	}
}

func (f *gateFixture) seedDriver(t *testing.T, verified, available bool) types.ID {
	t.Helper()
	id := types.NewID()
	f.drivers.Put(driver.Profile{ID: id, Verified: verified, Available: available})
	return id
}

func (f *gateFixture) seedOpenRide(t *testing.T, requestedAt time.Time) *ride.Ride {
	t.Helper()
	ctx := context.Background()
	pickup := &location.Location{ID: types.NewID(), Position: types.Point{Lat: 40.71, Lng: -74.0}, Street: "A St"}
	dropoff := &location.Location{ID: types.NewID(), Position: types.Point{Lat: 40.75, Lng: -73.98}, Street: "B Ave"}
	if err := f.locations.Create(ctx, pickup); err != nil {
		t.Fatalf("seed pickup: %v", err)
	}
	if err := f.locations.Create(ctx, dropoff); err != nil {
		t.Fatalf("seed dropoff: %v", err)
	}
	r := &ride.Ride{
		ID:                types.NewID(),
		RiderID:           types.NewID(),
		PickupLocationID:  pickup.ID,
		DropoffLocationID: dropoff.ID,
		Status:            ride.StatusRequested,
		EstimatedFare:     types.Cents(1264),
		RequestTime:       requestedAt,
	}
	if err := f.rides.Create(ctx, r); err != nil {
		t.Fatalf("seed ride: %v", err)
	}
	return r
}

func TestAccept(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	driverID := f.seedDriver(t, true, true)
	r := f.seedOpenRide(t, time.Now().UTC())

	got, err := f.gate.Accept(ctx, r.ID, driverID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if got.Status != ride.StatusDriverAssigned {
		t.Errorf("status = %s, want DRIVER_ASSIGNED", got.Status)
	}
	if got.DriverID == nil || *got.DriverID != driverID {
		t.Errorf("driver id = %v, want %s", got.DriverID, driverID)
	}

	events := f.rides.Events()
	if len(events) != 1 || events[0].ToStatus != ride.StatusDriverAssigned {
		t.Errorf("expected one DRIVER_ASSIGNED audit event, got %+v", events)
	}
}

func TestAcceptEligibility(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	r := f.seedOpenRide(t, time.Now().UTC())

	cases := []struct {
		name      string
		verified  bool
		available bool
	}{
		{"unverified", false, true},
		{"unavailable", true, false},
		{"neither", false, false},
	}
	for _, c := range cases {
		driverID := f.seedDriver(t, c.verified, c.available)
		_, err := f.gate.Accept(ctx, r.ID, driverID)
		if !errors.Is(err, ErrNotEligible) {
			t.Errorf("%s: err = %v, want ErrNotEligible", c.name, err)
		}
	}

	bannedID := types.NewID()
	f.drivers.Put(driver.Profile{ID: bannedID, Verified: true, Available: true, Banned: true})
	if _, err := f.gate.Accept(ctx, r.ID, bannedID); !errors.Is(err, ErrNotEligible) {
		t.Errorf("banned: err = %v, want ErrNotEligible", err)
	}

	got, _ := f.rides.Get(ctx, r.ID)
	if got.Status != ride.StatusRequested || got.DriverID != nil {
		t.Errorf("ride mutated by ineligible accepts: %+v", got)
	}

	_, err := f.gate.Accept(ctx, r.ID, types.NewID())
	if !errors.Is(err, driver.ErrNotFound) {
		t.Errorf("unknown driver err = %v, want driver.ErrNotFound", err)
	}
}

func TestAcceptAlreadyAssigned(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	first := f.seedDriver(t, true, true)
	second := f.seedDriver(t, true, true)
	r := f.seedOpenRide(t, time.Now().UTC())

	if _, err := f.gate.Accept(ctx, r.ID, first); err != nil {
		t.Fatalf("first Accept: %v", err)
	}
	_, err := f.gate.Accept(ctx, r.ID, second)
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("second Accept err = %v, want ErrAlreadyAssigned", err)
	}

	got, _ := f.rides.Get(ctx, r.ID)
	if got.DriverID == nil || *got.DriverID != first {
		t.Errorf("assignment changed by losing accept")
	}
}

func TestAcceptCancelledRide(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	driverID := f.seedDriver(t, true, true)
	r := f.seedOpenRide(t, time.Now().UTC())
	if ok, err := f.rides.Cancel(ctx, r.ID); err != nil || !ok {
		t.Fatalf("cancel seed ride: ok=%v err=%v", ok, err)
	}

	_, err := f.gate.Accept(ctx, r.ID, driverID)
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("err = %v, want ErrAlreadyAssigned", err)
	}
}

func TestAcceptConcurrentSingleWinner(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	r := f.seedOpenRide(t, time.Now().UTC())

	const contenders = 32
	driverIDs := make([]types.ID, contenders)
	for i := range driverIDs {
		driverIDs[i] = f.seedDriver(t, true, true)
	}

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.gate.Accept(ctx, r.ID, driverIDs[i])
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner types.ID
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
			winner = driverIDs[i]
		case errors.Is(err, ErrAlreadyAssigned):
		default:
			t.Fatalf("contender %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	got, _ := f.rides.Get(ctx, r.ID)
	if got.Status != ride.StatusDriverAssigned {
		t.Errorf("status = %s, want DRIVER_ASSIGNED", got.Status)
	}
	if got.DriverID == nil || *got.DriverID != winner {
		t.Errorf("assigned driver %v does not match the winning contender %s", got.DriverID, winner)
	}
}

type failingEventRides struct {
	*ride.MemoryStore
	err error
}

func (s *failingEventRides) AppendEvent(context.Context, *ride.Event) error {
	return s.err
}

// logCapture collects emitted records so tests can assert on warnings.
type logCapture struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *logCapture) Enabled(context.Context, slog.Level) bool { return true }

func (h *logCapture) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *logCapture) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *logCapture) WithGroup(string) slog.Handler      { return h }

func (h *logCapture) hasWarning(substr string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.Level == slog.LevelWarn && strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}

func TestAcceptLogsAuditAppendFailure(t *testing.T) {
	ctx := context.Background()
	rides := &failingEventRides{MemoryStore: ride.NewMemoryStore(), err: errors.New("events table unavailable")}
	locations := location.NewMemoryStore()
	drivers := driver.NewMemoryStore()
	capture := &logCapture{}
	gate := NewGate(rides, locations, drivers, nil, slog.New(capture))

	driverID := types.NewID()
	drivers.Put(driver.Profile{ID: driverID, Verified: true, Available: true})
	r := &ride.Ride{
		ID:            types.NewID(),
		RiderID:       types.NewID(),
		Status:        ride.StatusRequested,
		EstimatedFare: types.Cents(1264),
		RequestTime:   time.Now().UTC(),
	}
	if err := rides.Create(ctx, r); err != nil {
		t.Fatalf("seed ride: %v", err)
	}

	got, err := gate.Accept(ctx, r.ID, driverID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if got.Status != ride.StatusDriverAssigned || got.DriverID == nil || *got.DriverID != driverID {
		t.Errorf("assignment lost despite audit failure: %+v", got)
	}
	if !capture.hasWarning("audit event append failed") {
		t.Errorf("audit append failure was not logged")
	}
}

func TestListOpenRequestsOldestFirst(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	driverID := f.seedDriver(t, true, true)

	base := time.Now().UTC()
	var want []types.ID
	for i := 0; i < 4; i++ {
		r := f.seedOpenRide(t, base.Add(time.Duration(i)*time.Minute))
		want = append(want, r.ID)
	}
	assigned := f.seedOpenRide(t, base.Add(-time.Minute))
	if ok, _ := f.rides.AssignDriver(ctx, assigned.ID, driverID); !ok {
		t.Fatalf("could not assign seed ride")
	}

	open, err := f.gate.ListOpenRequests(ctx, driverID)
	if err != nil {
		t.Fatalf("ListOpenRequests: %v", err)
	}
	if len(open) != len(want) {
		t.Fatalf("got %d open rides, want %d", len(open), len(want))
	}
	for i, d := range open {
		if d.Ride.ID != want[i] {
			t.Errorf("position %d: got ride %s, want %s", i, d.Ride.ID, want[i])
		}
		if d.Pickup == nil || d.Dropoff == nil {
			t.Errorf("position %d: location detail missing", i)
		}
	}
}

func TestListOpenRequestsSkipsUnresolvable(t *testing.T) {
	f := newGateFixture(t)
	ctx := context.Background()
	driverID := f.seedDriver(t, true, true)

	keep := f.seedOpenRide(t, time.Now().UTC())
	broken := f.seedOpenRide(t, time.Now().UTC().Add(time.Second))
	f.locations.Delete(ctx, broken.PickupLocationID)

	open, err := f.gate.ListOpenRequests(ctx, driverID)
	if err != nil {
		t.Fatalf("ListOpenRequests: %v", err)
	}
	if len(open) != 1 || open[0].Ride.ID != keep.ID {
		ids := make([]string, 0, len(open))
		for _, d := range open {
			ids = append(ids, string(d.Ride.ID))
		}
		t.Fatalf("open rides = %v, want only %s", ids, keep.ID)
	}
}

func TestListOpenRequestsRequiresEligibility(t *testing.T) {
	f := newGateFixture(t)
	f.seedOpenRide(t, time.Now().UTC())
	driverID := f.seedDriver(t, true, false)

	_, err := f.gate.ListOpenRequests(context.Background(), driverID)
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("err = %v, want ErrNotEligible", err)
	}
}
