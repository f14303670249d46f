package key

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/gedis/cmd/util"
	"github.com/ValentinKolb/gedis/lib/keys"
	"github.com/spf13/cobra"
)

var (
	typeCmd = &cobra.Command{
		Use:   "type [key]",
		Short: "Prints the type of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := sess.Dispatcher.KeyType(util.Context(cmd), sess.ID, util.GetDB(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(typ)
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info [key]",
		Short: "Prints type, ttl and size of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := sess.Dispatcher.KeySummary(util.Context(cmd), sess.ID, util.GetDB(), args[0])
			if err != nil {
				return err
			}
			return util.PrintJSON(summary)
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Prints the full content of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := sess.Dispatcher.KeyDetail(util.Context(cmd), sess.ID, util.GetDB(), args[0])
			if err != nil {
				return err
			}
			return util.PrintJSON(detail)
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [type] [key] [value]",
		Short: "Adds a value to a key, keeping its ttl",
		Long: util.WrapString(`Adds a value to a key. Strings are overwritten, lists get the value
appended, sets and sorted sets get a member added, hashes get a field set and streams
get an entry added (the value is a JSON object). The remaining ttl of the key is kept.`),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, _ := cmd.Flags().GetFloat64("score")
			field, _ := cmd.Flags().GetString("field")
			oldField, _ := cmd.Flags().GetString("old-field")
			id, _ := cmd.Flags().GetString("id")

			req := keys.WriteRequest{
				Type:     keys.KeyType(args[0]),
				Key:      args[1],
				Value:    args[2],
				Score:    score,
				Field:    field,
				OldField: oldField,
				ID:       id,
			}
			if err := sess.Dispatcher.SetKey(util.Context(cmd), sess.ID, util.GetDB(), req); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.Dispatcher.DeleteKey(util.Context(cmd), sess.ID, util.GetDB(), args[0]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	delValueCmd = &cobra.Command{
		Use:   "del-value [key] [value]",
		Short: "Removes one element (list value, member, field or stream id) from a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.Dispatcher.DeleteValue(util.Context(cmd), sess.ID, util.GetDB(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	delMatchCmd = &cobra.Command{
		Use:   "del-match [pattern]",
		Short: "Deletes every key matching a glob pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := sess.Dispatcher.DeleteKeysByPattern(util.Context(cmd), sess.ID, util.GetDB(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d keys\n", n)
			return nil
		},
	}
	renameCmd = &cobra.Command{
		Use:   "rename [key] [new-key]",
		Short: "Renames a key, fails if the new key exists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.Dispatcher.RenameKey(util.Context(cmd), sess.ID, util.GetDB(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("rename successfully")
			return nil
		},
	}
	ttlCmd = &cobra.Command{
		Use:   "ttl [key] [seconds]",
		Short: "Sets the ttl of a key, --persist (or -- -1) removes it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := ttlArg(cmd, args)
			if err != nil {
				return err
			}
			if err := sess.Dispatcher.SetTTL(util.Context(cmd), sess.ID, util.GetDB(), args[0], ttl); err != nil {
				return err
			}
			fmt.Println("ttl set successfully")
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list [pattern]",
		Short: "Lists keys, optionally filtered by a glob pattern",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}
			found, err := sess.Dispatcher.MatchKeys(util.Context(cmd), sess.ID, util.GetDB(), pattern)
			if err != nil {
				return err
			}
			for _, k := range found {
				fmt.Println(k)
			}
			return nil
		},
	}
	flushCmd = &cobra.Command{
		Use:   "flush",
		Short: "Removes every key of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sess.Dispatcher.ClearDatabase(util.Context(cmd), sess.ID, util.GetDB()); err != nil {
				return err
			}
			fmt.Println("flush successfully")
			return nil
		},
	}
)

// ttlArg returns the ttl given either as --persist or as second argument
func ttlArg(cmd *cobra.Command, args []string) (int64, error) {
	persist, _ := cmd.Flags().GetBool("persist")
	switch {
	case persist && len(args) == 2:
		return 0, fmt.Errorf("--persist and seconds are mutually exclusive")
	case persist:
		return -1, nil
	case len(args) != 2:
		return 0, fmt.Errorf("seconds or --persist is required")
	}
	ttl, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("seconds must be a number: %w", err)
	}
	return ttl, nil
}
