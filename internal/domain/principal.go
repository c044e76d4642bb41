package domain

// Principal is an authenticated caller identity (buyer, seller,
// administrator or release recipient), verified upstream of the core.
type Principal string

// Zero reports whether the principal is the unset sentinel.
func (p Principal) Zero() bool {
	return p == ""
}
