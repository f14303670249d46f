package server

import (
	"github.com/ValentinKolb/gedis/cmd/util"
	"github.com/spf13/cobra"
)

var (
	sess *util.Session

	// ServerCommands represents the server command group
	ServerCommands = &cobra.Command{
		Use:                "server",
		Short:              "Server level operations and raw commands",
		PersistentPreRunE:  openSession,
		PersistentPostRunE: closeSession,
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	util.SetupSessionFlags(ServerCommands)

	ServerCommands.AddCommand(pingCmd)
	ServerCommands.AddCommand(infoCmd)
	ServerCommands.AddCommand(execCmd)
	ServerCommands.AddCommand(auditCmd)
}

func openSession(cmd *cobra.Command, _ []string) (err error) {
	sess, err = util.OpenSession(cmd)
	return err
}

func closeSession(*cobra.Command, []string) error {
	return sess.Close()
}
