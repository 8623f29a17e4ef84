package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pavelanni/promptlab/internal/catalog"
	"github.com/pavelanni/promptlab/internal/llm"
	"github.com/pavelanni/promptlab/internal/model"
	"github.com/pavelanni/promptlab/internal/practice"
	"github.com/pavelanni/promptlab/internal/prompts"
	"github.com/pavelanni/promptlab/internal/quality"
)

// promptArg joins the positional args, or reads stdin when there are none.
func promptArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAnalysis(w io.Writer, a model.QualityAnalysis) {
	fmt.Fprintf(w, "Overall: %s/10 (%s)\n", quality.FormatScore(a.OverallScore), a.Tier)
	fmt.Fprintf(w, "  specificity:       %s\n", quality.FormatScore(a.Scores.Specificity))
	fmt.Fprintf(w, "  context:           %s\n", quality.FormatScore(a.Scores.Context))
	fmt.Fprintf(w, "  clarity:           %s\n", quality.FormatScore(a.Scores.Clarity))
	fmt.Fprintf(w, "  educational value: %s\n", quality.FormatScore(a.Scores.EducationalValue))
	for _, s := range a.Suggestions {
		fmt.Fprintf(w, "- %s\n", s)
	}
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score [prompt]",
		Short: "Score a prompt (reads stdin when no prompt is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)
			v := viperForCmd(cmd)
			p, err := promptArg(cmd, args)
			if err != nil {
				return err
			}
			a := quality.Analyze(p)
			out := cmd.OutOrStdout()
			switch {
			case v.GetBool("json"):
				return writeJSON(out, a)
			case v.GetBool("quick"):
				_, err := fmt.Fprintln(out, quality.QuickAssessment(a))
				return err
			}
			printAnalysis(out, a)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the analysis as JSON")
	cmd.Flags().Bool("quick", false, "Print the one-line quick assessment")
	addLogFlags(cmd)
	return cmd
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble a prompt from builder fields",
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(cmd)
			v := viperForCmd(cmd)
			profile := v.GetString("profile")
			if !prompts.IsValidProfile(profile) {
				return fmt.Errorf("%w: %q", prompts.ErrUnknownProfile, profile)
			}
			if v.GetBool("options") {
				return writeJSON(cmd.OutOrStdout(), prompts.OptionsFor(prompts.Profile(profile)))
			}
			in := prompts.Input{
				GradeLevel:          v.GetString("grade"),
				Subject:             v.GetString("subject"),
				LearningGoal:        v.GetString("goal"),
				AIRole:              v.GetString("role"),
				InteractionStyle:    v.GetString("style"),
				Topic:               v.GetString("topic"),
				Background:          v.GetString("background"),
				ResponseFormats:     v.GetStringSlice("format"),
				LearningStyles:      v.GetStringSlice("learning-style"),
				FeedbackPreferences: v.GetStringSlice("feedback"),
				DetailLevel:         v.GetString("detail"),
				TaskType:            v.GetString("task"),
				FollowUp:            v.GetBool("follow-up"),
				CommonMistakes:      v.GetBool("common-mistakes"),
				ExamFocus:           v.GetBool("exam-focus"),
				CareerConnections:   v.GetBool("careers"),
				PrerequisiteCheck:   v.GetBool("prerequisites"),
			}
			if err := prompts.Validate(in); err != nil {
				return err
			}
			text, err := prompts.Build(prompts.Profile(profile), in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	f := cmd.Flags()
	f.String("profile", string(prompts.ProfileAdvanced), "Builder profile (advanced, basic)")
	f.String("topic", "", "Topic to learn about (required)")
	f.String("subject", "", "Subject")
	f.String("grade", "", "Grade level")
	f.String("goal", "", "Learning goal (advanced)")
	f.String("role", "", "AI role (advanced)")
	f.String("style", "", "Interaction style (advanced)")
	f.String("background", "", "Extra context")
	f.StringSlice("format", nil, "Response formats (repeatable)")
	f.StringSlice("learning-style", nil, "Learning styles (advanced, repeatable)")
	f.StringSlice("feedback", nil, "Feedback preferences (advanced, repeatable)")
	f.String("detail", "", "Detail level")
	f.String("task", "", "Task type (basic)")
	f.Bool("follow-up", false, "Ask for follow-up questions")
	f.Bool("common-mistakes", false, "Ask about common mistakes")
	f.Bool("exam-focus", false, "Focus on exam preparation")
	f.Bool("careers", false, "Connect the topic to careers")
	f.Bool("prerequisites", false, "Check prerequisites first")
	f.Bool("options", false, "Print the profile's selectable options as JSON instead")
	addLogFlags(cmd)
	return cmd
}

func tryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "try [prompt]",
		Short: "Run a prompt through the test console from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)
			v := viperForCmd(cmd)
			p, err := promptArg(cmd, args)
			if err != nil {
				return err
			}
			req := practice.Request{
				Prompt:      p,
				Mode:        model.Mode(v.GetString("mode")),
				SubjectHint: v.GetString("subject"),
				Provider:    v.GetString("provider"),
				Model:       v.GetString("model"),
			}
			gw := newGateway(v)
			if prov, ok := gw.Provider(req.Provider); ok && req.Model == "" {
				req.Model = prov.DefaultModel()
			}
			res, err := practice.NewRunner(newSimulator(v), gw).Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if v.GetBool("json") {
				return writeJSON(out, res)
			}
			if res.Response != nil {
				fmt.Fprintln(out, *res.Response)
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "[%s | %s | %.2fs]\n", res.Provider, res.Model, res.ResponseTime)
			if res.Analysis != nil {
				printAnalysis(out, *res.Analysis)
			}
			if res.Response != nil && llm.IsError(*res.Response) {
				return errors.New("live call failed")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.String("mode", string(model.ModeSimulate), "Mode (simulate, analyze, quick, llm)")
	f.String("subject", "", "Subject hint for simulated responses")
	f.String("provider", "ollama", "Provider ID for llm mode")
	f.String("model", "", "Model for llm mode (provider default when empty)")
	f.Bool("json", false, "Print the result as JSON")
	addProviderFlags(cmd)
	addLogFlags(cmd)
	return cmd
}

type catalogDump struct {
	Subjects   map[string][]model.PromptTemplate `yaml:"subjects" json:"subjects"`
	Techniques []model.Technique                 `yaml:"techniques" json:"techniques"`
	Tips       []model.Tip                       `yaml:"tips" json:"tips"`
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog [subject]",
		Short: "List subjects, or print one subject's templates",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd)
			v := viperForCmd(cmd)
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if v.GetBool("dump") {
				dump := catalogDump{
					Subjects:   make(map[string][]model.PromptTemplate),
					Techniques: cat.Techniques(),
					Tips:       cat.Tips(),
				}
				for _, s := range cat.Subjects() {
					dump.Subjects[s] = cat.Templates(s)
				}
				if v.GetString("format") == "json" {
					return writeJSON(out, dump)
				}
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(dump)
			}

			if len(args) == 0 {
				for _, s := range cat.Subjects() {
					fmt.Fprintf(out, "%s (%d templates)\n", s, len(cat.Templates(s)))
				}
				return nil
			}
			templates := cat.Templates(args[0])
			if templates == nil {
				return fmt.Errorf("unknown subject %q", args[0])
			}
			for _, t := range templates {
				fmt.Fprintf(out, "## %s\n%s\n", t.Category, t.Text)
				if ph := catalog.Placeholders(t.Text); len(ph) > 0 {
					fmt.Fprintf(out, "placeholders: %s\n", strings.Join(ph, ", "))
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().Bool("dump", false, "Print the whole catalog")
	cmd.Flags().String("format", "yaml", "Dump format (yaml, json)")
	addLogFlags(cmd)
	return cmd
}
