package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-translate/internal/di"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

func newTestConnectionCommand(container *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection [provider-key]",
		Short: "Verify provider credentials and connectivity",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override := ""
			if len(args) == 1 {
				override = args[0]
			}

			p := container.Registry().Resolve(override, container.Config.Provider)
			if p == nil {
				return fmt.Errorf("no provider registered for key %q", override)
			}

			tester, ok := p.(interfaces.ProviderTester)
			if !ok {
				return fmt.Errorf("provider %q does not support connection tests", p.Key())
			}
			if err := tester.Test(cmd.Context()); err != nil {
				return fmt.Errorf("provider %q test failed: %w", p.Key(), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "provider %s ok\n", p.Key())
			return nil
		},
	}
}
