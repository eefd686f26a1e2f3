package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/catalog"
	"github.com/abhisek/lingo/internal/store"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the available courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		list, err := e.store.Courses(ctx)
		if err != nil {
			return err
		}
		up, err := e.store.UserProgress(ctx, e.cfg.User.ID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(list) == 0 {
			fmt.Fprintln(out, "No courses. Add one with `lingo import <file>`.")
			return nil
		}
		fmt.Fprintf(out, "%-4s  %-24s  %s\n", "ID", "Title", "")
		for _, c := range list {
			mark := ""
			if c.ID == up.ActiveCourseID {
				mark = "active"
			}
			fmt.Fprintf(out, "%-4d  %-24s  %s\n", c.ID, c.Title, mark)
		}
		return nil
	},
}

var coursesSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Make a course the active course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid course ID %q", args[0])
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.store.SelectCourse(cmd.Context(), e.cfg.User.ID, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no course with ID %d", id)
			}
			return err
		}
		c, err := e.store.Course(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Now learning %s.\n", c.Title)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a course from a YAML file",
	Long:  "Import a course from a YAML file. A course with the same title is replaced, which drops progress in it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		course, err := catalog.Parse(f)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		id, err := e.store.ImportCourse(cmd.Context(), course)
		if err != nil {
			return err
		}
		e.logger.Info("imported course", "course_id", id, "title", course.Title, "challenges", course.ChallengeCount())
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (ID %d, %d challenges).\n", course.Title, id, course.ChallengeCount())
		return nil
	},
}

func init() {
	coursesCmd.AddCommand(coursesSelectCmd)
}
