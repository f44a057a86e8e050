package code

// User/peer domain codes, covering the NotFound/Conflict/Validation kinds of §7.
// Range 110000-110999.
const (
	ErrUserNotFound int = iota + 110000
	ErrPeerNotFound
	ErrPeerNameTooLong
	ErrPeerNameConflict
	ErrUnknownPeerKind
	ErrUserAlreadyAccountBlocked
)

func init() {
	register(ErrUserNotFound, 404, "user not found")
	register(ErrPeerNotFound, 404, "peer not found")
	register(ErrPeerNameTooLong, 400, "peer name must be shorter than 16 characters")
	register(ErrPeerNameConflict, 409, "peer name already used by this user")
	register(ErrUnknownPeerKind, 400, "unknown peer kind")
	register(ErrUserAlreadyAccountBlocked, 200, "user already account-blocked")
}
