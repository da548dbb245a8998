package ifmon

import "net/netip"

// Op classifies an interface change event.
type Op uint8

const (
	// LinkUpdated reports a new or modified link.
	LinkUpdated Op = iota + 1

	// LinkRemoved reports a deleted link.
	LinkRemoved

	// AddrAdded reports an address assigned to a link.
	AddrAdded

	// AddrRemoved reports an address removed from a link.
	AddrRemoved
)

func (o Op) String() string {
	switch o {
	case LinkUpdated:
		return "link-updated"
	case LinkRemoved:
		return "link-removed"
	case AddrAdded:
		return "addr-added"
	case AddrRemoved:
		return "addr-removed"
	default:
		return "unknown"
	}
}

// Event is one normalized link or address change surfaced by the Monitor.
type Event struct {
	Op      Op
	IfIndex int

	// IfName is set when the kernel message carried the link attributes.
	IfName string

	// Addr is set for address events.
	Addr netip.Prefix

	// Up reports the administrative state for link events.
	Up bool
}
