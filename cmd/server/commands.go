package server

import (
	"fmt"
	"sort"

	"github.com/ValentinKolb/gedis/cmd/util"
	"github.com/spf13/cobra"
)

var (
	pingCmd = &cobra.Command{
		Use:   "ping",
		Short: "Checks that the server answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sess.Dispatcher.Ping(util.Context(cmd), sess.ID); err != nil {
				return err
			}
			fmt.Println("PONG")
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info [field...]",
		Short: "Prints the server info, optionally only the given fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := sess.Dispatcher.ServerInfo(util.Context(cmd), sess.ID)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return util.PrintJSON(info)
			}

			if info.Fields != nil {
				printFields("", info.Fields, args)
			}
			nodes := make([]string, 0, len(info.Nodes))
			for addr := range info.Nodes {
				nodes = append(nodes, addr)
			}
			sort.Strings(nodes)
			for _, addr := range nodes {
				printFields(addr+" ", info.Nodes[addr], args)
			}
			return nil
		},
	}
	execCmd = &cobra.Command{
		Use:   "exec [command] [args...]",
		Short: "Sends a raw command and prints the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := sess.Dispatcher.RunRaw(util.Context(cmd), sess.ID, util.GetDB(), args)
			if err != nil {
				return err
			}
			return util.PrintJSON(reply)
		},
	}
	auditCmd = &cobra.Command{
		Use:   "audit [command] [args...]",
		Short: "Sends a raw command and prints the audit log entries it produced",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess.Audit.Clear()
			if _, err := sess.Dispatcher.RunRaw(util.Context(cmd), sess.ID, util.GetDB(), args); err != nil {
				return err
			}
			for _, entry := range sess.Audit.Snapshot() {
				fmt.Println(entry)
			}
			return nil
		},
	}
)

func printFields(prefix string, fields map[string]string, names []string) {
	for _, name := range names {
		if v, ok := fields[name]; ok {
			fmt.Printf("%s%s:%s\n", prefix, name, v)
		}
	}
}
