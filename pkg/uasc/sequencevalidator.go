package uasc

import "github.com/foundry-iiot/opcua/pkg/uaerr"

// SequenceValidator enforces the replay-defense rule of spec §4.4/§8
// invariant 5 for one security token: sequence numbers must strictly
// increase; at most one rollover (a single drop below the last-seen
// value) is tolerated per token, generalizing the accept/reject shape
// of backkem/matter's message.ReceptionState.CheckAndAccept from a
// sliding bitmap window down to this protocol's single
// last-value-plus-one-rollover rule.
type SequenceValidator struct {
	hasLast    bool
	last       uint32
	rolledOver bool
}

// NewSequenceValidator returns a validator with no prior history,
// ready for the first message on a freshly issued or renewed token.
func NewSequenceValidator() *SequenceValidator {
	return &SequenceValidator{}
}

// Validate checks recv against the validator's history, updating its
// state on acceptance. It returns a Sequencing-kind error on
// duplicate or double-rollover.
func (v *SequenceValidator) Validate(recv uint32) error {
	if !v.hasLast {
		v.hasLast = true
		v.last = recv
		return nil
	}

	switch {
	case recv > v.last:
		v.last = recv
		return nil
	case recv == v.last:
		return uaerr.SequencingErr("duplicate sequence number %d (replay)", recv)
	default: // recv < v.last
		if v.rolledOver {
			return uaerr.SequencingErr("sequence number %d rolled over a second time for this token", recv)
		}
		v.rolledOver = true
		v.last = recv
		return nil
	}
}
