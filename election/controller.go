// Package election is the lifecycle controller of voting events and the only
// mutation surface of the core. It composes the accumulator, the token
// ledger and the ballot rules under one lock per event id, so every mutating
// operation is a single atomic read-modify-write against the event
// aggregate. Read-only operations run unsynchronized against the latest
// stored snapshot. No operation blocks on external I/O while holding the
// lock; invitation delivery happens after the core operation commits.
package election

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.vocdoni.io/dvote/log"

	"github.com/trustlevel/trustvote/ballot"
	"github.com/trustlevel/trustvote/directory"
	"github.com/trustlevel/trustvote/group"
	"github.com/trustlevel/trustvote/ledger"
	"github.com/trustlevel/trustvote/notify"
	"github.com/trustlevel/trustvote/storage"
	"github.com/trustlevel/trustvote/types"
	"github.com/trustlevel/trustvote/util"
)

var (
	// ErrEventNotFound is returned when the event id is unknown.
	ErrEventNotFound = fmt.Errorf("event not found")
	// ErrNameRequired is returned when an event is created without a name.
	ErrNameRequired = fmt.Errorf("event name is required")
	// ErrNotEnoughOptions is returned when fewer than two options are configured.
	ErrNotEnoughOptions = fmt.Errorf("at least two options are required")
	// ErrInvalidWindow is returned when the voting window ends before it starts.
	ErrInvalidWindow = fmt.Errorf("voting window ends before it starts")
	// ErrInvalidPowerMode is returned on an unknown voting-power mode.
	ErrInvalidPowerMode = fmt.Errorf("invalid voting-power mode")
	// ErrTokenWrongEvent is returned when a token is presented to an event
	// it was not issued for.
	ErrTokenWrongEvent = fmt.Errorf("token was issued for another event")
)

// Controller orchestrates the voting-event components. Events are fully
// independent; there is no cross-event locking or ordering.
type Controller struct {
	stg      *storage.Storage
	groups   *group.DB
	ledger   *ledger.Ledger
	dir      *directory.Directory
	notifier notify.Notifier
	now      func() time.Time

	locksMu sync.Mutex
	locks   map[uint64]*sync.Mutex
}

// New creates a new election controller. A nil clock defaults to time.Now;
// a nil notifier disables delivery (tokens are still issued).
func New(stg *storage.Storage, groups *group.DB, ldg *ledger.Ledger,
	dir *directory.Directory, notifier notify.Notifier, now func() time.Time,
) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		stg:      stg,
		groups:   groups,
		ledger:   ldg,
		dir:      dir,
		notifier: notifier,
		now:      now,
		locks:    map[uint64]*sync.Mutex{},
	}
}

// lockEvent acquires the per-event mutex and returns its release func.
func (c *Controller) lockEvent(id uint64) func() {
	c.locksMu.Lock()
	mu, ok := c.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[id] = mu
	}
	c.locksMu.Unlock()
	mu.Lock()
	return mu.Unlock
}

// CreateRequest carries the configuration of a new event. A nil Capacity
// field (zero) falls back to the default group capacity.
type CreateRequest struct {
	Name        string
	Options     []string
	PowerMode   types.PowerMode
	VotingPower int
	StartTime   *int64
	EndTime     *int64
	Capacity    int
}

// CreateEvent validates the request, generates the admin credential and the
// empty accumulator, and stores the event. Validation errors are rejected
// before any mutation.
func (c *Controller) CreateEvent(req CreateRequest) (*types.Event, error) {
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if len(req.Options) < 2 {
		return nil, ErrNotEnoughOptions
	}
	if req.PowerMode == "" {
		req.PowerMode = types.PowerModeSimple
	}
	if !req.PowerMode.Valid() {
		return nil, ErrInvalidPowerMode
	}
	if err := checkWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	capacity := req.Capacity
	if capacity == 0 {
		capacity = types.DefaultGroupCapacity
	}

	ev := &types.Event{
		ID:          util.RandomUint64(),
		Name:        req.Name,
		PowerMode:   req.PowerMode,
		VotingPower: req.VotingPower,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		AdminToken:  uuid.New().String(),
		Capacity:    capacity,
	}
	ballot.Configure(ev, req.Options)

	root, err := c.groups.Create(ev.ID, capacity)
	if err != nil {
		return nil, err
	}
	ev.GroupRoot = root
	if err := c.stg.SetEvent(ev); err != nil {
		return nil, err
	}
	log.Infow("event created", "event", ev.ID, "name", ev.Name, "mode", ev.PowerMode)
	return ev, nil
}

// Event returns the stored event aggregate.
func (c *Controller) Event(id uint64) (*types.Event, error) {
	ev, err := c.stg.Event(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

// UpdateRequest carries a partial event update. Nil fields keep the stored
// value.
type UpdateRequest struct {
	Options     []string
	PowerMode   *types.PowerMode
	VotingPower *int
	StartTime   *int64
	EndTime     *int64
}

// UpdateEvent replaces the configured options and window. Replacing options
// resets all vote counts to zero; updating a running event therefore
// discards the votes cast so far. The anti-replay set is kept.
func (c *Controller) UpdateEvent(id uint64, req UpdateRequest) (*types.Event, error) {
	defer c.lockEvent(id)()

	ev, err := c.Event(id)
	if err != nil {
		return nil, err
	}
	start, end := ev.StartTime, ev.EndTime
	if req.StartTime != nil {
		start = req.StartTime
	}
	if req.EndTime != nil {
		end = req.EndTime
	}
	if err := checkWindow(start, end); err != nil {
		return nil, err
	}
	if req.PowerMode != nil {
		if !req.PowerMode.Valid() {
			return nil, ErrInvalidPowerMode
		}
		ev.PowerMode = *req.PowerMode
	}
	if req.VotingPower != nil {
		ev.VotingPower = *req.VotingPower
	}
	if req.Options != nil {
		if len(req.Options) < 2 {
			return nil, ErrNotEnoughOptions
		}
		ballot.Configure(ev, req.Options)
	}
	ev.StartTime, ev.EndTime = start, end
	if err := c.stg.SetEvent(ev); err != nil {
		return nil, err
	}
	log.Infow("event updated", "event", ev.ID, "status", ev.Status(c.now()))
	return ev, nil
}

// DeleteEvent drops the event row, its tokens and its accumulator.
func (c *Controller) DeleteEvent(id uint64) error {
	defer c.lockEvent(id)()

	if _, err := c.Event(id); err != nil {
		return err
	}
	if err := c.stg.DeleteEvent(id); err != nil {
		return err
	}
	return c.groups.Delete(id)
}

// AdminAuth checks a presented credential against the event's admin
// capability token in constant time. No rate limiting, no rotation.
func (c *Controller) AdminAuth(id uint64, credential string) (bool, error) {
	ev, err := c.Event(id)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(ev.AdminToken), []byte(credential)) == 1, nil
}

func checkWindow(start, end *int64) error {
	if start != nil && end != nil && *end <= *start {
		return ErrInvalidWindow
	}
	return nil
}
