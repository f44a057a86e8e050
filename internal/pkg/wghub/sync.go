package wghub

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/HappyLadySauce/errors"
	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/pkg/code"
)

const syncTimeout = 10 * time.Second

// SyncConfig reconciles the running interface with the file contents without
// dropping connections: `wg-quick strip <path> | wg syncconf <iface> -` (or
// the awg equivalents when isAmnezia), run as a single shell pipeline under a
// bounded timeout. This is the literal reading of §4.2's "conceptually
// wg-quick strip + wg syncconf" rather than a unit restart, which would drop
// live connections.
func (h *Hub) SyncConfig(ctx context.Context) error {
	stripTool, syncTool := "wg-quick", "wg"
	if h.isAmnezia {
		stripTool, syncTool = "awg-quick", "awg"
	}

	cctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	pipeline := fmt.Sprintf("%s strip %s | %s syncconf %s -", stripTool, h.path, syncTool, h.iface)
	cmd := exec.CommandContext(cctx, "sh", "-c", pipeline)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		klog.Errorf("wghub sync failed: %v, stderr=%s", err, stderr.String())
		return errors.WithCode(code.ErrWGApplyFailed, "syncing interface %s: %v", h.iface, err)
	}

	klog.V(2).InfoS("wghub interface synced", "interface", h.iface)
	return nil
}
