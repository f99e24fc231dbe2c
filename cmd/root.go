package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/swiftline-carrier/driver-notify/internal/config"
)

// NewRootCmd builds the driver-notify command tree around cfg.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:   "driver-notify",
		Short: "Swiftline driver welcome email dispatcher",
		Long: `driver-notify listens for newly created driver documents and sends each
driver a welcome email with login instructions.`,
		SilenceUsage: true,
	}

	root.AddCommand(NewServeCmd(cfg))
	root.AddCommand(NewSendCmd(cfg))
	root.AddCommand(NewVersionCmd())
	return root
}

// Execute loads configuration and runs the root command.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
