package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// CoreOptions is the [core] section of §6: the observer timers and the
// debug/logging toggles that drive ambient behavior rather than the
// rotation mechanics of LogOptions.
type CoreOptions struct {
	PeerActiveTime               time.Duration `json:"peer-active-time" mapstructure:"peer-active-time"`
	ConnectionListenTimer        time.Duration `json:"connection-listen-timer" mapstructure:"connection-listen-timer"`
	ConnectionConnectedOnlyTimer time.Duration `json:"connection-connected-only-listen-timer" mapstructure:"connection-connected-only-listen-timer"`
	ConnectionUpdateTimer        time.Duration `json:"connection-update-timer" mapstructure:"connection-update-timer"`
	LogsPath                     string        `json:"logs-path" mapstructure:"logs-path"`
	Debug                        bool          `json:"debug" mapstructure:"debug"`
}

func NewCoreOptions() *CoreOptions {
	return &CoreOptions{
		PeerActiveTime:               6 * time.Hour,
		ConnectionListenTimer:        120 * time.Second,
		ConnectionConnectedOnlyTimer: 60 * time.Second,
		ConnectionUpdateTimer:        360 * time.Second,
	}
}

func (o *CoreOptions) Validate() []error {
	var errs []error
	if o.PeerActiveTime <= 0 {
		errs = append(errs, fmt.Errorf("core.peer_active_time must be greater than 0"))
	}
	if o.ConnectionListenTimer <= 0 {
		errs = append(errs, fmt.Errorf("core.connection_listen_timer must be greater than 0"))
	}
	if o.ConnectionConnectedOnlyTimer <= 0 {
		errs = append(errs, fmt.Errorf("core.connection_connected_only_listen_timer must be greater than 0"))
	}
	if o.ConnectionUpdateTimer <= 0 {
		errs = append(errs, fmt.Errorf("core.connection_update_timer must be greater than 0"))
	}
	return errs
}

func (o *CoreOptions) AddFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&o.PeerActiveTime, "core.peer-active-time", o.PeerActiveTime, "How long a connected peer's access timer extends on each successful liveness probe")
	fs.DurationVar(&o.ConnectionListenTimer, "core.connection-listen-timer", o.ConnectionListenTimer, "Interval between full connection-observer sweeps")
	fs.DurationVar(&o.ConnectionConnectedOnlyTimer, "core.connection-connected-only-listen-timer", o.ConnectionConnectedOnlyTimer, "Interval between connected-only connection-observer sweeps")
	fs.DurationVar(&o.ConnectionUpdateTimer, "core.connection-update-timer", o.ConnectionUpdateTimer, "Interval between roster refreshes from storage")
	fs.StringVar(&o.LogsPath, "core.logs-path", o.LogsPath, "Directory the front-end writes its own logs to (consumed only, not written by the core)")
	fs.BoolVar(&o.Debug, "core.debug", o.Debug, "Enable debug-level logging")
}
