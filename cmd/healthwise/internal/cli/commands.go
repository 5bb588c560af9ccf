package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/ai"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/app"
	"github.com/vcscsvcscs/healthwise/apps/backend/internal/service"
	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/model"
)

func (c *CLI) addAssistantCommands(rootCmd *cobra.Command) {
	analyzeCmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Show what the analyzer extracts from text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				return c.printJSON(a.Analyzer.Analyze(strings.Join(args, " ")))
			})
		},
	}

	var (
		symptoms   []string
		conditions []string
		severity   string
	)
	recommendCmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank remedies for symptoms and conditions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var band *model.SeverityBand
			if severity != "" {
				b := model.SeverityBand(severity)
				switch b {
				case model.SeverityMild, model.SeverityModerate, model.SeveritySevere:
				default:
					return fmt.Errorf("unknown severity %q", severity)
				}
				band = &b
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				recs := a.Remedies.Recommend(symptoms, conditions, band)
				if len(recs) == 0 {
					fmt.Fprintln(c.Out, "No matching remedies.")
					return nil
				}
				for i, r := range recs {
					fmt.Fprintf(c.Out, "%d. %s [%.2f] %s\n", i+1, r.Remedy.Name, r.RelevanceScore, r.Reasoning)
				}
				return nil
			})
		},
	}
	recommendCmd.Flags().StringSliceVarP(&symptoms, "symptom", "s", nil, "Symptom to match (repeatable)")
	recommendCmd.Flags().StringSliceVarP(&conditions, "condition", "c", nil, "Condition to match (repeatable)")
	recommendCmd.Flags().StringVar(&severity, "severity", "", "mild, moderate or severe")

	chatCmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send one message to the assistant and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				events, err := a.Conversation.SendStreaming(cmd.Context(), service.ChatTurnRequest{Content: strings.Join(args, " ")})
				if err != nil {
					return err
				}
				return c.printTurn(events)
			})
		},
	}

	rootCmd.AddCommand(analyzeCmd, recommendCmd, chatCmd)
}

func (c *CLI) printTurn(events <-chan service.TurnEvent) error {
	var last *service.TurnEvent
	for e := range events {
		if e.Done {
			last = &e
			continue
		}
		fmt.Fprint(c.Out, e.Delta)
	}
	fmt.Fprintln(c.Out)

	if last == nil {
		return errors.New("reply was interrupted")
	}
	if last.Err != nil {
		return last.Err
	}
	if g := last.Turn.Emergency; g.Level != service.EmergencyLevelNone {
		fmt.Fprintf(c.Out, "\n!! %s: %s\n", g.Title, g.Message)
	}
	if f := last.Turn.FollowUpMessage; f != nil {
		fmt.Fprintf(c.Out, "\n%s\n", f.Content)
	}
	return nil
}

func (c *CLI) addDataCommands(rootCmd *cobra.Command) {
	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export symptoms and chats as JSON",
		Long: `Export the symptom log and every chat session. Without a file argument
the document is written to standard output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				data, err := a.Exports.ExportJSON(cmd.Context())
				if err != nil {
					return err
				}
				if len(args) == 0 {
					_, err = c.Out.Write(append(data, '\n'))
					return err
				}
				if err := os.WriteFile(args[0], data, 0o600); err != nil {
					return fmt.Errorf("failed to write export: %w", err)
				}
				fmt.Fprintf(c.Out, "Exported to %s\n", args[0])
				return nil
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}
			return c.withApp(cmd.Context(), func(a *app.App) error {
				result := a.Exports.Import(cmd.Context(), raw)
				fmt.Fprintln(c.Out, result.Message)
				if !result.Success {
					return errors.New("import failed")
				}
				return nil
			})
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show what an export would contain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				stats, err := a.Exports.Stats(cmd.Context())
				if err != nil {
					return err
				}
				return c.printJSON(stats)
			})
		},
	}

	rootCmd.AddCommand(exportCmd, importCmd, statsCmd)
}

func (c *CLI) addCheckCommand(rootCmd *cobra.Command) {
	var timeout time.Duration
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check storage and the AI endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.Store.Ping(cmd.Context()); err != nil {
					return fmt.Errorf("storage: %w", err)
				}
				fmt.Fprintln(c.Out, "storage: ok")

				if a.Blobs == nil {
					fmt.Fprintln(c.Out, "blob storage: not configured")
				} else {
					fmt.Fprintln(c.Out, "blob storage: configured")
				}

				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()
				switch err := a.Gateway.Validate(ctx); {
				case errors.Is(err, ai.ErrNotConfigured):
					fmt.Fprintf(c.Out, "ai: not configured, mode %s\n", a.Responses.Mode())
				case err != nil:
					return fmt.Errorf("ai: %w", err)
				default:
					fmt.Fprintf(c.Out, "ai: ok, model %s\n", a.Gateway.ModelName())
				}
				return nil
			})
		},
	}
	checkCmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "AI validation timeout")

	rootCmd.AddCommand(checkCmd)
}

func (c *CLI) printJSON(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
