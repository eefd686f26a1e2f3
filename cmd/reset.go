package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner progress",
	Long:  "Clear completed challenges, points and hearts. The active course and subscription are kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		heartsOnly, _ := cmd.Flags().GetBool("hearts-only")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		userID := e.cfg.User.ID
		if heartsOnly {
			if err := e.store.ResetHearts(cmd.Context(), userID); err != nil {
				return err
			}
			e.logger.Info("hearts reset", "user", userID)
			fmt.Fprintln(cmd.OutOrStdout(), "Hearts refilled.")
			return nil
		}

		if err := e.store.Reset(cmd.Context(), userID); err != nil {
			return err
		}
		e.logger.Info("progress reset", "user", userID)
		fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
		return nil
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Turn unlimited hearts on or off",
	RunE: func(cmd *cobra.Command, args []string) error {
		on, _ := cmd.Flags().GetBool("on")
		off, _ := cmd.Flags().GetBool("off")
		if on == off {
			return fmt.Errorf("pass exactly one of --on or --off")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.SetSubscription(cmd.Context(), e.cfg.User.ID, on); err != nil {
			return err
		}
		if on {
			fmt.Fprintln(cmd.OutOrStdout(), "Unlimited hearts enabled.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Unlimited hearts disabled.")
		}
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("hearts-only", false, "Only restore hearts to full")
	subscribeCmd.Flags().Bool("on", false, "Enable unlimited hearts")
	subscribeCmd.Flags().Bool("off", false, "Disable unlimited hearts")
}
