package code

// Generic/ambient codes. Range 100000-100999.
const (
	ErrSuccess int = iota + 100000
	ErrUnknown
	ErrBind
	ErrValidation
	ErrDatabase
	ErrStoreNotInitialized
	ErrTokenInvalid
	ErrPermissionDenied
)

func init() {
	register(ErrSuccess, 200, "OK")
	register(ErrUnknown, 500, "unknown server error")
	register(ErrBind, 400, "error binding request body")
	register(ErrValidation, 400, "validation failed")
	register(ErrDatabase, 500, "database error")
	register(ErrStoreNotInitialized, 500, "store not initialized")
	register(ErrTokenInvalid, 401, "admin token invalid")
	register(ErrPermissionDenied, 403, "permission denied")
}
