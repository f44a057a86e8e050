package code

// Config / bootstrap codes — the Fatal kind of §7 as it applies to startup.
// Range 150000-150999.
const (
	ErrConfigInvalid int = iota + 150000
	ErrStorageOpenFailed
	ErrInterfaceFileMissing
	ErrDurationLiteralInvalid
)

func init() {
	register(ErrConfigInvalid, 500, "invalid configuration")
	register(ErrStorageOpenFailed, 500, "failed to open the storage database")
	register(ErrInterfaceFileMissing, 500, "WireGuard interface config file could not be read")
	register(ErrDurationLiteralInvalid, 400, "malformed time-delta literal")
}
