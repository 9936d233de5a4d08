package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configDefault string

var rootCmd = &cobra.Command{
	Use:   "fast-note-service",
	Short: "Fast Note Service",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command; c is the embedded default config
// Execute 执行根命令，c 为内嵌的默认配置
func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
