package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vkprofiler/pkg/collector"
	errs "vkprofiler/pkg/errors"
	"vkprofiler/pkg/profile"
	"vkprofiler/pkg/textstat"
	"vkprofiler/pkg/ui"
	"vkprofiler/pkg/ui/tui"
	"vkprofiler/pkg/vk"
)

var (
	// Compare command flags
	references   []string
	accessToken  string
	tokenName    string
	maxRetries   int
	maxFeatures  int
	topN         int
	useTUI       bool
	jsonOutput   bool
	reportFormat string
)

var compareCmd = &cobra.Command{
	Use:   "compare <new-user>",
	Short: "Score a VK user against a set of reference users",
	Long: `Collect the wall posts and group subscriptions of every reference user,
build a TF-IDF reference profile from them, then collect the new user and
report its text and group similarity to the profile.

Users that cannot be resolved are skipped. The run fails when the reference
users have no usable wall text, or when the new user has none.`,
	Example: `  # Compare one user against three references
  vkprofiler compare durov --reference id1,id2,id3

  # Interactive progress and a JSON report
  vkprofiler compare durov -r id1 -r id2 --tui --json

  # Markdown report for sharing
  vkprofiler compare durov -r id1,id2 --format markdown > report.md

  # Use a specific stored token
  vkprofiler compare durov -r id1,id2 --token-name research`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringSliceVarP(&references, "reference", "r", nil, "reference users (screen names or ids), comma separated or repeated")
	compareCmd.Flags().StringVar(&accessToken, "access-token", "", "VK access token (overrides stored tokens)")
	compareCmd.Flags().StringVar(&tokenName, "token-name", "", "use a specific stored token")
	compareCmd.Flags().IntVar(&maxRetries, "max-retries", 0, "attempts per API request (default from config)")
	compareCmd.Flags().IntVar(&maxFeatures, "max-features", 0, "vocabulary size cap (default from config)")
	compareCmd.Flags().IntVar(&topN, "top", 10, "number of top terms and groups to report")
	compareCmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI with live progress")
	compareCmd.Flags().StringVarP(&reportFormat, "format", "f", ui.FormatText, "report format: text, json or markdown")
	compareCmd.Flags().BoolVar(&jsonOutput, "json", false, "shorthand for --format json")
	_ = compareCmd.MarkFlagRequired("reference")
}

// comparison is the outcome of one run
type comparison struct {
	profile *profile.ReferenceProfile
	result  profile.ComparisonResult
}

func runCompare(cmd *cobra.Command, args []string) error {
	if jsonOutput {
		reportFormat = ui.FormatJSON
	}
	format, err := ui.ParseFormat(reportFormat)
	if err != nil {
		return err
	}
	reportFormat = format

	candidate := vk.SanitizeScreenName(args[0])
	refs, err := screenNames(references)
	if err != nil {
		return err
	}
	if !vk.IsValidScreenName(candidate) {
		return fmt.Errorf("invalid screen name: %q", args[0])
	}

	flags := make(map[string]interface{})
	if accessToken != "" {
		flags["access-token"] = accessToken
	}
	if maxRetries > 0 {
		flags["max-retries"] = maxRetries
	}
	if maxFeatures > 0 {
		flags["max-features"] = maxFeatures
	}
	// the TUI owns the terminal and keeps its own activity log
	if useTUI && logLevel == "" {
		flags["log-level"] = "disabled"
	}

	s, err := newSession(flags, tokenName)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	col := collector.New(s.client, s.cfg.Collector, s.cfg.RateLimit.PageDelay, s.log)
	opts := []profile.Option{
		profile.WithMaxFeatures(s.cfg.Profile.MaxFeatures),
		profile.WithStopWords(textstat.StopWordList(s.cfg.Profile.StopWords)),
	}

	s.log.InfoWithFields("Comparison starting", map[string]interface{}{
		"candidate":  candidate,
		"references": len(refs),
	})

	var out comparison
	if useTUI {
		out, err = compareWithTUI(ctx, cancel, col, refs, candidate, opts)
	} else {
		out, err = compareWithProgress(ctx, col, refs, candidate, opts)
	}
	if err != nil {
		s.log.WithError(err).Error("Comparison failed")
		return err
	}

	s.log.InfoWithFields("Comparison finished", map[string]interface{}{
		"text_similarity":  out.result.TextSimilarity,
		"group_similarity": out.result.GroupSimilarity,
	})

	report := ui.NewReport(candidate, refs, out.profile, out.result, topN)
	if reportFormat == ui.FormatText {
		fmt.Println()
	}
	return report.Write(os.Stdout, reportFormat)
}

func compareWithProgress(ctx context.Context, col *collector.Collector, refs []string, candidate string, opts []profile.Option) (comparison, error) {
	var w io.Writer = os.Stderr
	if quiet {
		w = io.Discard
	}
	phase := func(format string, args ...interface{}) {
		fmt.Fprintln(w, ui.Magenta(fmt.Sprintf(format, args...)))
	}

	progress := ui.NewProgress(w, len(refs)+1, ui.ColorEnabled())
	col.Observe(progress.Observe)

	out, err := compareUsers(ctx, col, refs, candidate, opts, phase)
	progress.Complete()
	return out, err
}

// compareWithTUI draws the TUI on this goroutine while the work runs on
// another. Quitting the TUI cancels ctx.
func compareWithTUI(ctx context.Context, cancel context.CancelFunc, col *collector.Collector, refs []string, candidate string, opts []profile.Option) (comparison, error) {
	users := append(append([]string{}, refs...), candidate)
	terminal := tui.New(users, cancel)
	col.Observe(terminal.Observe)

	var (
		out  comparison
		err  error
		done = make(chan struct{})
	)
	go func() {
		defer close(done)
		out, err = compareUsers(ctx, col, refs, candidate, opts, terminal.Phase)
		if err != nil {
			terminal.Log("ERROR", "%v", err)
		}
		terminal.Finish(err)
	}()

	if runErr := terminal.Run(); runErr != nil {
		cancel()
		<-done
		return comparison{}, fmt.Errorf("terminal UI failed: %w", runErr)
	}
	<-done
	return out, err
}

// compareUsers collects the references, builds the profile, then collects
// and scores the candidate
func compareUsers(ctx context.Context, col *collector.Collector, refs []string, candidate string, opts []profile.Option, phase func(format string, args ...interface{})) (comparison, error) {
	phase("Collecting %d reference users", len(refs))
	records := col.CollectAll(ctx, refs)
	if err := ctx.Err(); err != nil {
		return comparison{}, fmt.Errorf("interrupted: %w", err)
	}

	phase("Building reference profile from %d users", len(records))
	p, err := profile.Build(records, opts...)
	if err != nil {
		if errors.Is(err, errs.ErrEmptyCorpus) {
			return comparison{}, fmt.Errorf("reference users have no wall text to build a profile from: %w", err)
		}
		return comparison{}, err
	}

	phase("Collecting %s", candidate)
	user, err := col.Collect(ctx, candidate)
	if err != nil {
		return comparison{}, fmt.Errorf("failed to collect %s: %w", candidate, err)
	}
	// a cancelled collection keeps whatever it had, which would skew the score
	if err := ctx.Err(); err != nil {
		return comparison{}, fmt.Errorf("interrupted: %w", err)
	}

	result, err := profile.CompareUser(*user, p)
	if err != nil {
		if errors.Is(err, errs.ErrEmptyInput) {
			return comparison{}, fmt.Errorf("%s has no wall text to compare: %w", candidate, err)
		}
		return comparison{}, err
	}

	return comparison{profile: p, result: result}, nil
}

// screenNames normalizes and validates user arguments, dropping duplicates
func screenNames(raw []string) ([]string, error) {
	seen := make(map[string]bool)
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		name := vk.SanitizeScreenName(r)
		if name == "" {
			continue
		}
		if !vk.IsValidScreenName(name) {
			return nil, fmt.Errorf("invalid screen name: %q", strings.TrimSpace(r))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, errors.New("at least one reference user is required")
	}
	return names, nil
}
