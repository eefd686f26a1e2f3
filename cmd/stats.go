package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/lesson"
	"github.com/abhisek/lingo/internal/store"
)

const recentSessions = 5

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		userID := e.cfg.User.ID
		up, err := e.store.UserProgress(ctx, userID)
		if err != nil {
			return err
		}
		completed, err := e.store.CompletedChallenges(ctx, userID)
		if err != nil {
			return err
		}
		answers, correct, err := e.store.AnswerStats(ctx, userID)
		if err != nil {
			return err
		}
		sessions, err := e.store.RecentSessions(ctx, userID, recentSessions)
		if err != nil {
			return err
		}

		course, next := "none", ""
		if up.ActiveCourseID != 0 {
			if c, err := e.store.Course(ctx, up.ActiveCourseID); err == nil {
				course = c.Title
			}
			units, err := e.store.Units(ctx, userID, up.ActiveCourseID)
			if err != nil {
				return err
			}
			next = nextLesson(units)
		}
		hearts := fmt.Sprintf("%d/%d", up.Hearts, lesson.MaxHearts)
		if up.SubscriptionActive {
			hearts = "unlimited"
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Learner:     %s\n", userID)
		fmt.Fprintf(out, "Course:      %s\n", course)
		if next != "" {
			fmt.Fprintf(out, "Next lesson: %s\n", next)
		}
		fmt.Fprintf(out, "Hearts:      %s\n", hearts)
		fmt.Fprintf(out, "Points:      %d\n", up.Points)
		fmt.Fprintf(out, "Completed:   %d challenges\n", completed)
		if answers > 0 {
			fmt.Fprintf(out, "Accuracy:    %.0f%% of %d answers\n", float64(correct)/float64(answers)*100, answers)
		}

		if len(sessions) == 0 {
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Recent lessons")
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, s := range sessions {
			title, err := e.store.LessonTitle(ctx, s.LessonID)
			if err != nil {
				title = fmt.Sprintf("Lesson %d", s.LessonID)
			}
			fmt.Fprintf(out, "%-16s  %-20s  %d/%d  %s\n",
				s.Timestamp.Local().Format("2006-01-02 15:04"), title,
				s.ChallengesCorrect, s.ChallengesTotal, s.Action)
		}
		return nil
	},
}

// nextLesson describes the first unfinished lesson of a course map, or
// returns "" when the course is done.
func nextLesson(units []store.Unit) string {
	for _, u := range units {
		for _, l := range u.Lessons {
			if !l.Done() {
				return fmt.Sprintf("%s (%d/%d)", l.Title, l.Completed, l.Total)
			}
		}
	}
	return ""
}
