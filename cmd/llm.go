package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/lingo/internal/explain"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the AI tutor configuration and usage",
}

// checkSample is a fixed wrong answer sent by `llm check`.
var checkSample = explain.Input{
	Course:   "Spanish",
	Question: "el hombre",
	Options:  []string{"the man", "the woman", "the boy"},
	Correct:  "the man",
	Chosen:   "the woman",
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configured provider with a sample explanation",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		p, ok, err := e.provider(ctx)
		if !ok {
			return fmt.Errorf("no LLM provider configured (set LINGO_LLM_PROVIDER or an *_API_KEY variable)")
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Model: %s\n", p.ModelID())

		start := time.Now()
		svc := explain.NewService(p, explain.DefaultConfig())
		ex, err := svc.Explain(ctx, checkSample)
		if err != nil {
			return fmt.Errorf("provider check failed: %w", err)
		}
		fmt.Fprintf(out, "OK in %s\n\n%s\n", time.Since(start).Round(time.Millisecond), ex.Text)
		if ex.Tip != "" {
			fmt.Fprintf(out, "Tip: %s\n", ex.Tip)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		stats, err := e.store.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintln(out, "Usage by Purpose")
		fmt.Fprintln(out, strings.Repeat("─", 72))
		fmt.Fprintf(out, "%-16s  %6s  %6s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
		fmt.Fprintln(out, strings.Repeat("─", 72))

		var totalCalls, totalIn, totalOut int
		for _, st := range stats {
			fmt.Fprintf(out, "%-16s  %6d  %6d  %10d  %10d  %8d\n",
				st.Purpose, st.Calls, st.Failures, st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
			totalCalls += st.Calls
			totalIn += st.InputTokens
			totalOut += st.OutputTokens
		}

		fmt.Fprintln(out, strings.Repeat("─", 72))
		fmt.Fprintf(out, "%-16s  %6d  %6s  %10d  %10d\n", "TOTAL", totalCalls, "", totalIn, totalOut)
		return nil
	},
}

func init() {
	llmCmd.AddCommand(llmCheckCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
