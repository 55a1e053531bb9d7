package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	appVersion string
)

// Execute creates the root command tree and runs it.
func Execute(version, commit, date string) error {
	appVersion = version
	rootCmd := newRootCmd(version, commit, date)
	return rootCmd.Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Terminal admin console for the task platform",
		Long: `Adminctl: manage a task/referral-reward platform from the terminal.

Adminctl talks to the platform's admin REST API: it lists and mutates users,
tasks, withdrawals, referrals, level upgrades, and admin accounts, watches
live dashboard counters over WebSocket, and ships an embedded stub backend
plus an MCP server for AI agents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./adminctl.yaml)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for session state (default: ~/.adminctl)")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	cobra.OnInitialize(initConfig)

	// Add subcommands
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newUsersCmd())
	cmd.AddCommand(newTasksCmd())
	cmd.AddCommand(newWithdrawalsCmd())
	cmd.AddCommand(newReferralsCmd())
	cmd.AddCommand(newUpgradesCmd())
	cmd.AddCommand(newAdminsCmd())
	cmd.AddCommand(newEmailsCmd())
	cmd.AddCommand(newNotifyCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newStubCmd())
	cmd.AddCommand(newOpenAPICmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("adminctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.adminctl")
	}

	viper.SetEnvPrefix("ADMINCTL")
	viper.AutomaticEnv()
	viper.ReadInConfig() // Ignore error - config file is optional
}
