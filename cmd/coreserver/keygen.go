package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heavensgate/vpncore/internal/pkg/keygen"
)

// newKeygenCommand exercises keygen.KeyTool standalone, for operators
// pre-generating key material outside of the peer-creation flow.
func newKeygenCommand() *cobra.Command {
	var amnezia bool
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a WireGuard/Amnezia private key, its public key, and a preshared key",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			tool := keygen.NewCLIKeyTool()

			priv, err := tool.GeneratePrivateKey(ctx, amnezia)
			if err != nil {
				return err
			}
			pub, err := tool.DerivePublicKey(ctx, amnezia, priv)
			if err != nil {
				return err
			}
			psk, err := tool.GeneratePresharedKey(ctx, amnezia)
			if err != nil {
				return err
			}

			fmt.Println("PrivateKey =", priv)
			fmt.Println("PublicKey =", pub)
			fmt.Println("PresharedKey =", psk)
			return nil
		},
	}
	cmd.Flags().BoolVar(&amnezia, "amnezia", false, "use the awg toolchain instead of wg")
	return cmd
}
