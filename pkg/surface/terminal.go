package surface

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/improve"
	"github.com/readyscore/readyscore/pkg/recommend"
	"github.com/readyscore/readyscore/pkg/scoring"
)

// TerminalRenderer renders results as colored tables. Color is disabled when
// NO_COLOR is set or the output is not a terminal.
type TerminalRenderer struct{}

var (
	boldText = color.New(color.Bold)
	dimText  = color.New(color.FgHiBlack)

	highColor   = color.New(color.FgRed, color.Bold)
	mediumColor = color.New(color.FgYellow)
	lowColor    = color.New(color.FgCyan)
)

func ratingColor(r scoring.Rating) *color.Color {
	switch r {
	case scoring.RatingProductionReady:
		return color.New(color.FgGreen, color.Bold)
	case scoring.RatingNearlyReady:
		return color.New(color.FgGreen)
	case scoring.RatingNeedsWork:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func priorityLabel(p recommend.Priority) string {
	label := fmt.Sprintf("[%s]", strings.ToUpper(string(p)))
	switch p {
	case recommend.PriorityHigh:
		return highColor.Sprint(label)
	case recommend.PriorityMedium:
		return mediumColor.Sprint(label)
	default:
		return lowColor.Sprint(label)
	}
}

func (r *TerminalRenderer) RenderEvaluation(w io.Writer, ev *evaluate.Evaluation) error {
	fmt.Fprintf(w, "%s\n\n", boldText.Sprintf("Production readiness: %s (%d/%d)",
		ratingColor(ev.Rating).Sprint(ev.Rating), ev.Score, scoring.MaxScore))

	if err := renderBreakdown(w, ev.Result()); err != nil {
		return err
	}
	fmt.Fprintln(w)

	for _, warn := range ev.Warnings {
		fmt.Fprintf(w, "%s %s\n", mediumColor.Sprint("warning:"), warn)
	}
	if len(ev.Warnings) > 0 {
		fmt.Fprintln(w)
	}

	renderRecommendations(w, ev.Recommendations, "No recommendations. Code is production ready.")
	return nil
}

func (r *TerminalRenderer) RenderSummary(w io.Writer, s *improve.Summary) error {
	fmt.Fprintf(w, "%s\n\n", boldText.Sprintf("Improvement: %d -> %d (%+d)",
		s.OriginalScore.TotalScore, s.FinalScore.TotalScore, s.Improvement()))

	fmt.Fprintf(w, "Rating:     %s -> %s\n",
		ratingColor(s.OriginalScore.Rating).Sprint(s.OriginalScore.Rating),
		ratingColor(s.FinalScore.Rating).Sprint(s.FinalScore.Rating))
	fmt.Fprintf(w, "Iterations: %d of %d\n", s.Iterations, s.RequestedIterations)
	fmt.Fprintf(w, "Stopped:    %s\n", s.StopReason)
	if s.Error != "" {
		fmt.Fprintf(w, "%s %s\n", highColor.Sprint("error:"), s.Error)
	}
	fmt.Fprintln(w)

	if err := renderHistory(w, s.History); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if err := renderBreakdown(w, s.FinalScore); err != nil {
		return err
	}
	fmt.Fprintln(w)

	renderRecommendations(w, s.FinalRecommendations(), "Code fully improved. No recommendations left.")
	return nil
}

func renderBreakdown(w io.Writer, result scoring.ScoreResult) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Category", "Points", "Max"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, row := range result.Ordered() {
		pts := strconv.Itoa(row.Points)
		if row.Points < row.Max {
			pts = mediumColor.Sprint(pts)
		}
		data = append(data, []string{row.Name, pts, strconv.Itoa(row.Max)})
	}
	data = append(data, []string{boldText.Sprint("Total"), boldText.Sprint(result.TotalScore), strconv.Itoa(scoring.MaxScore)})

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func renderHistory(w io.Writer, history []improve.Step) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Iteration", "Score", "Best", "Adopted", "Notes"})

	var data [][]string
	for _, step := range history {
		adopted := "yes"
		if !step.Adopted {
			adopted = dimText.Sprint("no")
		}
		data = append(data, []string{
			strconv.Itoa(step.Iteration),
			strconv.Itoa(step.Score),
			strconv.Itoa(step.BestScore),
			adopted,
			step.Reason,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func renderRecommendations(w io.Writer, recs []recommend.Recommendation, empty string) {
	if len(recs) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	counts := recommend.Counts(recs)
	fmt.Fprintf(w, "Recommendations: %d high, %d medium, %d low\n",
		counts[recommend.PriorityHigh], counts[recommend.PriorityMedium], counts[recommend.PriorityLow])
	for i, rec := range recs {
		lines := wrapText(rec.Text, 70)
		fmt.Fprintf(w, "  %d. %s %s\n", i+1, priorityLabel(rec.Priority), lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(w, "     %s\n", line)
		}
	}
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
