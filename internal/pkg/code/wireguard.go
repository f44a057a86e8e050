package code

// WGHub and Keygen codes — BackendUnavailable and Fatal kinds of §7 as they
// apply to the WireGuard dataplane. Range 130000-130999.
const (
	ErrWGPeerAlreadyExists int = iota + 130000
	ErrWGPeerNotFound
	ErrWGServerConfigParseFailed
	ErrWGServerConfigWriteFailed
	ErrWGApplyFailed
	ErrWGLockAcquireFailed
	ErrWGKeygenFailed
	ErrWGPrivateKeyInvalid
	ErrWGPublicKeyInvalid
)

func init() {
	register(ErrWGPeerAlreadyExists, 409, "a peer with this public key already exists")
	register(ErrWGPeerNotFound, 404, "no peer with this public key in the interface config")
	register(ErrWGServerConfigParseFailed, 500, "failed to parse the WireGuard interface config")
	register(ErrWGServerConfigWriteFailed, 500, "failed to write the WireGuard interface config")
	register(ErrWGApplyFailed, 502, "failed to sync the WireGuard interface config to the running interface")
	register(ErrWGLockAcquireFailed, 500, "failed to acquire the WireGuard hub lock")
	register(ErrWGKeygenFailed, 502, "wg/awg key generation subprocess failed")
	register(ErrWGPrivateKeyInvalid, 400, "invalid WireGuard private key")
	register(ErrWGPublicKeyInvalid, 400, "invalid WireGuard public key")
}
