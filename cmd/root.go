package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/gedis/cmd/key"
	"github.com/ValentinKolb/gedis/cmd/server"
	"github.com/ValentinKolb/gedis/cmd/util"
	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/session"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "gedis",
		Short: "redis and redis cluster client",
		Long: fmt.Sprintf(`gedis (v%s)

A client for Redis servers and Redis Cluster with type aware key
operations, cluster wide fan-out and a bounded audit log of every
command sent.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gedis",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gedis v%s\n", Version)
		},
	}

	// testCmd checks a connection without keeping it
	testCmd = &cobra.Command{
		Use:   "test",
		Short: "Test a connection (connect and PING)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := util.BindCommandFlags(cmd); err != nil {
				return err
			}
			clientCfg := util.GetClientConfig()
			if err := common.InitLoggers(clientCfg); err != nil {
				return err
			}
			cfg, err := util.GetSessionConfig()
			if err != nil {
				return err
			}
			if err := session.NewRegistry(clientCfg, nil).Test(util.Context(cmd), cfg); err != nil {
				return err
			}
			fmt.Printf("connection to %s ok\n", cfg.Addr())
			return nil
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	RootCmd.AddCommand(key.KeyCommands)
	RootCmd.AddCommand(server.ServerCommands)
	RootCmd.AddCommand(testCmd)
	RootCmd.AddCommand(versionCmd)

	util.SetupSessionFlags(testCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
