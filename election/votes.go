package election

import (
	"go.vocdoni.io/dvote/log"

	"github.com/trustlevel/trustvote/ballot"
	"github.com/trustlevel/trustvote/types"
)

// Cast submits one vote for the identity. The vote authorization is derived
// from the plaintext identity until a proof layer provides nullifiers; the
// ballot contract does not change when that substitution happens. The
// check-and-append against the anti-replay set runs under the event lock, so
// two concurrent submissions for the same identity cannot both pass.
func (c *Controller) Cast(id, identity uint64, option int) error {
	defer c.lockEvent(id)()

	ev, err := c.Event(id)
	if err != nil {
		return err
	}
	auth := types.AuthFromIdentity(identity)
	if err := ballot.Cast(ev, auth, option, c.now()); err != nil {
		return err
	}
	if err := c.stg.SetEvent(ev); err != nil {
		return err
	}
	log.Infow("vote accepted", "event", id, "option", option)
	return nil
}

// Results returns the options with their running tallies, ordered by option
// index. The surrounding application decides when to display them.
func (c *Controller) Results(id uint64) ([]types.Option, error) {
	ev, err := c.Event(id)
	if err != nil {
		return nil, err
	}
	return ballot.Results(ev), nil
}
