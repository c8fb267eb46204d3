package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cpanmap/pkg/config"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cpanmap configuration",
	}
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configCheckCommand())
	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Wrote default configuration")
			printFile(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if used := config.Used(c.v); used != "" {
				printDetail(cmd.ErrOrStderr(), "from %s", used)
			}
			return config.Encode(cmd.OutOrStdout(), c.cfg)
		},
	}
}

func (c *CLI) configCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [path]",
		Short: "Check a configuration file for unknown keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			unknown, err := config.Check(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(unknown) == 0 {
				printSuccess(out, "%s is valid", path)
				return nil
			}
			for _, key := range unknown {
				printWarning(out, "unknown key %s", key)
			}
			return nil
		},
	}
}
