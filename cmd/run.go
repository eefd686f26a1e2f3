package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/app"
	"github.com/abhisek/lingo/internal/selfupdate"
)

var playCmd = &cobra.Command{
	Use:   "play [lesson-id]",
	Short: "Jump straight into a lesson",
	Long:  "Start a lesson without going through the home screen. Without an ID the active lesson of the current course is played.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id int
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid lesson ID %q", args[0])
			}
			id = n
		}
		return runApp(cmd, true, id)
	},
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, play bool, lessonID int) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	deps := e.deps()
	deps.Explainer = e.explainer(cmd.Context())

	opts := app.Options{
		Deps:     deps,
		Version:  version,
		Play:     play,
		LessonID: lessonID,
	}
	if version != devVersion {
		opts.Checker = selfupdate.NewChecker(selfupdate.WithTimeout(5 * time.Second))
	}

	e.logger.Info("starting", "version", version, "user", deps.UserID, "play", play, "lesson_id", lessonID)
	return app.Run(opts)
}
