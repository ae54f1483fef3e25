package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新数据库表结构",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := openDatabase(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "database migrated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
