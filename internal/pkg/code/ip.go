package code

// IP allocation codes — the Exhausted and Conflict kinds of §7 as they apply
// to the tunnel-address pool. Range 120000-120999.
const (
	ErrIPQueueExhausted int = iota + 120000
	ErrIPAlreadyInUse
	ErrIPNotIPv4
	ErrIPReserved
	ErrIPOutOfRange
)

func init() {
	register(ErrIPQueueExhausted, 409, "no free tunnel addresses remain")
	register(ErrIPAlreadyInUse, 409, "IP address already in use")
	register(ErrIPNotIPv4, 400, "IP address is not IPv4")
	register(ErrIPReserved, 400, "IP address is reserved (.0, .1, or .255)")
	register(ErrIPOutOfRange, 400, "IP address is out of the configured subnet")
}
