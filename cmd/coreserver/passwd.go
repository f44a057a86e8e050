package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heavensgate/vpncore/pkg/utils/passwd"
)

// newPasswdCommand prints a salt/hash pair for the operator to paste into
// the [Admin] config section — there is no live account-management flow,
// only this offline bootstrap step.
func newPasswdCommand() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "passwd [password]",
		Short: "Generate a salt and bcrypt hash for the admin.password-hash config key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				generated, err := passwd.GenerateRandomPassword(length)
				if err != nil {
					return err
				}
				password = generated
				fmt.Println("Generated password:", password)
			}

			salt, err := passwd.GenerateSalt()
			if err != nil {
				return err
			}
			hash, err := passwd.HashPassword(password, salt)
			if err != nil {
				return err
			}

			fmt.Println("salt =", salt)
			fmt.Println("password-hash =", hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "length", 20, "length of the generated password when none is given")
	return cmd
}
