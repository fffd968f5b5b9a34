package app

// Event is one outbound wire message the router must send after the
// Service call that produced it returns — never while any registry lock is
// still held (spec §5: "locks are never held across a send").
//
// Action is one of the outbound action names in internal/wire. Recipients
// holds session slot indices; a Service method may target one or both
// sides of a match.
type Event struct {
	Action     string
	Payload    any
	Recipients []int
}
