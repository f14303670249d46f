package key

import (
	"github.com/ValentinKolb/gedis/cmd/util"
	"github.com/spf13/cobra"
)

var (
	sess *util.Session

	// KeyCommands represents the key command group
	KeyCommands = &cobra.Command{
		Use:                "key",
		Short:              "Inspect and modify keys",
		PersistentPreRunE:  openSession,
		PersistentPostRunE: closeSession,
	}
)

func init() {
	cobra.OnInitialize(util.InitClientConfig)

	util.SetupSessionFlags(KeyCommands)

	KeyCommands.AddCommand(typeCmd)
	KeyCommands.AddCommand(infoCmd)
	KeyCommands.AddCommand(getCmd)
	KeyCommands.AddCommand(setCmd)
	KeyCommands.AddCommand(delCmd)
	KeyCommands.AddCommand(delValueCmd)
	KeyCommands.AddCommand(delMatchCmd)
	KeyCommands.AddCommand(renameCmd)
	KeyCommands.AddCommand(ttlCmd)
	KeyCommands.AddCommand(listCmd)
	KeyCommands.AddCommand(flushCmd)

	setCmd.Flags().Float64("score", 0, util.WrapString("Score of a sorted set member"))
	setCmd.Flags().String("field", "", util.WrapString("Field of a hash entry"))
	setCmd.Flags().String("old-field", "", util.WrapString("Hash field to remove after the write, renames a field"))
	setCmd.Flags().String("id", "", util.WrapString("ID of a stream entry, empty lets the server assign one"))

	ttlCmd.Flags().Bool("persist", false, util.WrapString("Remove the ttl of the key, same as seconds -1"))
}

// openSession connects to the configured server
func openSession(cmd *cobra.Command, _ []string) (err error) {
	sess, err = util.OpenSession(cmd)
	return err
}

func closeSession(*cobra.Command, []string) error {
	return sess.Close()
}
