package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// menuCmd represents the menu command
var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Inspect the menu tree",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'menu' requires a subcommand (tree)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

// menuTreeCmd represents the menu tree command
var menuTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the menu tree",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		if err := showMenuTree(output); err != nil {
			fail("Failed to show menu tree: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(menuCmd)
	menuCmd.AddCommand(menuTreeCmd)
	menuTreeCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showMenuTree(output string) error {
	_, _, b, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	tree, err := b.MenuTree(ctx)
	if err != nil {
		return err
	}
	if output == "json" {
		out, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Print(menuTree(tree))
	return nil
}
