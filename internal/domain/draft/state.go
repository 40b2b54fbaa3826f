package draft

import "fmt"

// Transitions of the submission workflow:
//
//	Empty/Composing -> Validating -> Submitting -> Submitted | Failed
//	Validating -> Composing     (validation rejected)
//	Submitting -> Composing     (order header not created)
//	Failed -> Submitting        (retry of failed items)
//	Failed -> Composing         (manual reopen)

// BeginValidation locks the draft while it is checked against the catalog.
func (d *Draft) BeginValidation() error {
	return d.transition(StateValidating, StateEmpty, StateComposing)
}

// RejectValidation unlocks a draft that failed validation.
func (d *Draft) RejectValidation() error {
	return d.transition(StateComposing, StateValidating)
}

// BeginSubmission moves a validated draft to submitting.
func (d *Draft) BeginSubmission() error {
	return d.transition(StateSubmitting, StateValidating)
}

// AbortSubmission unlocks a draft whose order header was not created.
func (d *Draft) AbortSubmission() error {
	return d.transition(StateComposing, StateSubmitting)
}

// BeginRetry resubmits the failed items of a failed draft.
func (d *Draft) BeginRetry() error {
	return d.transition(StateSubmitting, StateFailed)
}

// MarkSubmitted records that every order item was created.
func (d *Draft) MarkSubmitted() error {
	return d.transition(StateSubmitted, StateSubmitting)
}

// MarkFailed records that at least one order item was not created.
func (d *Draft) MarkFailed() error {
	return d.transition(StateFailed, StateSubmitting)
}

// Reopen returns a failed draft to composing for a manual retry.
func (d *Draft) Reopen() error {
	return d.transition(StateComposing, StateFailed)
}

func (d *Draft) transition(to State, from ...State) error {
	for _, s := range from {
		if d.state == s {
			d.state = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.state, to)
}
