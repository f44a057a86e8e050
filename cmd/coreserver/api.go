package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
	"k8s.io/component-base/cli/flag"
	"k8s.io/component-base/logs"
	"k8s.io/klog/v2"

	"github.com/heavensgate/vpncore/internal/boot"
	"github.com/heavensgate/vpncore/internal/controller/admin"
	"github.com/heavensgate/vpncore/internal/pkg/authz"
)

const basename = "vpncore"

// NewCoreServerCommand builds the cobra root command: flags/config in,
// Boot assembled, admin HTTP surface and observer loops run until ctx is
// cancelled. There is no package-level router or store here — everything
// flows through the *boot.Boot this command constructs.
func NewCoreServerCommand(ctx context.Context) *cobra.Command {
	opts := newServerOptions()
	cmd := &cobra.Command{
		Use:   basename,
		Short: "vpncore is the access-control-plane core for a WireGuard/Xray VPN fleet",
		Long:  "vpncore assembles Storage, IPQueue, WGHub, XrayWorker and PeerOps behind an administrative HTTP surface and two background observers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := viper.Unmarshal(opts); err != nil {
				return err
			}

			logs.InitLogs()
			defer logs.FlushLogs()

			if opts.Log.LogFile != "" {
				klog.SetOutput(&lumberjack.Logger{
					Filename:   opts.Log.LogFile,
					MaxSize:    opts.Log.MaxSize,
					MaxBackups: opts.Log.MaxBackups,
					MaxAge:     opts.Log.MaxAge,
					Compress:   opts.Log.Compress,
				})
			}

			if errs := opts.Validate(); len(errs) != 0 {
				for _, err := range errs {
					fmt.Fprintln(os.Stderr, "Error:", err)
				}
				os.Exit(1)
			}

			return run(ctx, opts)
		},
	}

	nfs := opts.AddFlags(cmd.Flags())
	flag.SetUsageAndHelpFunc(cmd, *nfs, 80)

	cmd.AddCommand(newPasswdCommand())
	cmd.AddCommand(newKeygenCommand())

	return cmd
}

func run(ctx context.Context, opts *serverOptions) error {
	cfg := opts.config()

	b, err := boot.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	defer b.Close()

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return fmt.Errorf("building authz enforcer: %w", err)
	}

	router, err := admin.NewRouter(b, enforcer)
	if err != nil {
		return fmt.Errorf("building admin router: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Admin.BindAddress, cfg.Admin.BindPort)
	klog.V(1).InfoS("Listening and serving the administrative HTTP surface", "address", addr)
	go func() {
		if err := router.Run(addr); err != nil {
			klog.Fatalf("admin http surface exited: %v", err)
		}
	}()

	return b.Run(ctx)
}
