// Command chinook serves and queries the chinook music catalog over GraphQL.
//
//	chinook serve --config chinook.yaml
//	chinook query '{ album(id: 1) { title tracks { name } } }'
//	chinook check
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "chinook:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "chinook",
		Short:         "GraphQL lookups over the chinook music catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	root.AddCommand(
		newServeCmd(&configPath),
		newQueryCmd(&configPath),
		newCheckCmd(&configPath),
	)
	return root
}
