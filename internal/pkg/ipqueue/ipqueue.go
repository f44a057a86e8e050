// Package ipqueue implements §4.6's IPQueue: a thread-safe FIFO of free
// tunnel addresses, seeded at boot from the subnet minus reserved hosts minus
// whatever Storage already has on record.
package ipqueue

import (
	"net"
	"sync"

	"github.com/HappyLadySauce/errors"

	"github.com/heavensgate/vpncore/internal/pkg/code"
	customvalidator "github.com/heavensgate/vpncore/pkg/utils/validator"
)

// Queue is a thread-safe FIFO of available IPv4 host addresses.
type Queue struct {
	mu    sync.Mutex
	avail []string
}

// New builds a Queue by enumerating every host address in cidr, excluding the
// network/broadcast-style reserved hosts (.0, .1, .255, matching §3) and any
// address already present in used.
func New(cidr string, used []string) (*Queue, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, errors.WithCode(code.ErrConfigInvalid, "parsing wireguard subnet %q: %v", cidr, err)
	}
	if ip.To4() == nil {
		return nil, errors.WithCode(code.ErrIPNotIPv4, "subnet %q is not IPv4", cidr)
	}

	usedSet := make(map[string]struct{}, len(used))
	for _, u := range used {
		usedSet[u] = struct{}{}
	}

	q := &Queue{}
	for addr := cloneIP(ipnet.IP); ipnet.Contains(addr); incIP(addr) {
		host := addr.To4()[3]
		if customvalidator.IsReservedWireguardHost(int(host)) {
			continue
		}
		s := addr.String()
		if _, taken := usedSet[s]; taken {
			continue
		}
		q.avail = append(q.avail, s)
	}
	return q, nil
}

// Acquire removes and returns the next available address, or returns
// ErrIPQueueExhausted when none remain.
func (q *Queue) Acquire() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.avail) == 0 {
		return "", errors.WithCode(code.ErrIPQueueExhausted, "no wireguard addresses available")
	}
	ip := q.avail[0]
	q.avail = q.avail[1:]
	return ip, nil
}

// Release returns an address to the pool, appended at the back to preserve
// FIFO ordering (matching the Python queue.Queue's put semantics).
func (q *Queue) Release(ip string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.avail = append(q.avail, ip)
}

// Available reports the number of addresses still free.
func (q *Queue) Available() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.avail)
}

func cloneIP(ip net.IP) net.IP {
	dup := make(net.IP, len(ip))
	copy(dup, ip)
	return dup
}

func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			break
		}
	}
}
