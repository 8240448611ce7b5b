package cmd

import (
	"errors"
	"fmt"

	"github.com/shardsquad/shardstats/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// hashPasswordCmd prints a bcrypt hash for the access-hash setting.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash to use as access-hash",
	Long: `Hash a password so it can be stored in access-hash.

The password is taken from the argument, or from --password / SHARDSTATS_PASSWORD.

Examples:
  shardstats hash-password 's3cret'
  SHARDSTATS_PASSWORD='s3cret' shardstats hash-password`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := viper.GetString("password")
		if len(args) == 1 {
			password = args[0]
		}
		if password == "" {
			return errors.New("a password is required")
		}
		hash, err := contract.HashPassword(password)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return err
	},
}
