package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/selfupdate"
)

const updateTimeout = 2 * time.Minute

var (
	updateCheckOnly bool
	updatePin       string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update lingo to the latest release",
	Long: `Download the latest lingo release, verify it against the published
checksums and replace the running binary. Use --check to only report whether
a newer release exists, or --release to install a specific tag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		ctx, cancel := context.WithTimeout(cmd.Context(), updateTimeout)
		defer cancel()

		checker := selfupdate.NewChecker(selfupdate.WithTimeout(updateTimeout))

		if updateCheckOnly {
			res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
			if err != nil {
				return fmt.Errorf("check for updates: %w", err)
			}
			if !res.UpdateAvailable {
				fmt.Fprintf(out, "lingo %s is up to date.\n", version)
				return nil
			}
			fmt.Fprintf(out, "lingo %s is available (you have %s).\n%s\n", res.LatestVersion, version, res.ReleaseURL)
			return nil
		}

		err := checker.Update(ctx, &selfupdate.UpdateInput{
			CurrentVersion: version,
			TargetVersion:  updatePin,
		}, func(p selfupdate.UpdateProgress) {
			fmt.Fprintln(out, p.Message)
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, selfupdate.ErrDevBuild):
			fmt.Fprintln(out, "This is a development build; install a release to enable updates.")
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Fprintf(out, "lingo %s is already the latest release.\n", version)
			return nil
		case errors.Is(err, os.ErrPermission):
			return fmt.Errorf("%w\n\nThe binary is not writable by you; try: sudo lingo update", err)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "only report whether a newer release exists")
	updateCmd.Flags().StringVar(&updatePin, "release", "", "install this release tag instead of the latest")
}
