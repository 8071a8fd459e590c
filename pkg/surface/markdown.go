package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/readyscore/readyscore/pkg/evaluate"
	"github.com/readyscore/readyscore/pkg/improve"
	"github.com/readyscore/readyscore/pkg/metrics"
	"github.com/readyscore/readyscore/pkg/recommend"
	"github.com/readyscore/readyscore/pkg/scoring"
)

// MarkdownRenderer produces a documentation-style report. Language sets the
// fence tag for code blocks and defaults to python.
type MarkdownRenderer struct {
	Language string
}

func (r *MarkdownRenderer) lang() string {
	if r.Language == "" {
		return "python"
	}
	return r.Language
}

func (r *MarkdownRenderer) RenderEvaluation(w io.Writer, ev *evaluate.Evaluation) error {
	var b strings.Builder

	b.WriteString("# Code Evaluation Report\n\n")
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- **Score:** %d/%d\n", ev.Score, scoring.MaxScore)
	fmt.Fprintf(&b, "- **Rating:** %s\n", ev.Rating)
	for _, warn := range ev.Warnings {
		fmt.Fprintf(&b, "- **Warning:** %s\n", warn)
	}
	b.WriteString("\n")

	writeMetricsSection(&b, ev.Metrics)
	writeBreakdownSection(&b, ev.Result())
	writeRecommendationsSection(&b, ev.Recommendations)

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *MarkdownRenderer) RenderSummary(w io.Writer, s *improve.Summary) error {
	var b strings.Builder

	b.WriteString("# Generated Code Report\n\n")
	b.WriteString("## Overview\n\n")
	if s.Prompt != "" {
		fmt.Fprintf(&b, "- **Prompt:** %s\n", s.Prompt)
	}
	fmt.Fprintf(&b, "- **Final score:** %d/%d (%s)\n", s.FinalScore.TotalScore, scoring.MaxScore, s.FinalScore.Rating)
	fmt.Fprintf(&b, "- **Original score:** %d/%d (%s)\n", s.OriginalScore.TotalScore, scoring.MaxScore, s.OriginalScore.Rating)
	fmt.Fprintf(&b, "- **Improvement:** %+d points\n", s.Improvement())
	fmt.Fprintf(&b, "- **Iterations:** %d of %d (%s)\n", s.Iterations, s.RequestedIterations, s.StopReason)
	if s.Error != "" {
		fmt.Fprintf(&b, "- **Error:** %s\n", s.Error)
	}
	b.WriteString("\n")

	b.WriteString("## Refinement History\n\n")
	b.WriteString("| Iteration | Score | Rating | Notes |\n")
	b.WriteString("|-----------|-------|--------|-------|\n")
	for _, step := range s.History {
		notes := step.Reason
		if step.Iteration > 0 && !step.Adopted {
			notes += " (not adopted)"
		}
		fmt.Fprintf(&b, "| %d | %d | %s | %s |\n", step.Iteration, step.Score, step.Rating, escapeCell(notes))
	}
	b.WriteString("\n")

	writeMetricsSection(&b, s.FinalEvaluation)
	writeBreakdownSection(&b, s.FinalScore)
	writeRecommendationsSection(&b, s.FinalRecommendations())

	b.WriteString("## Generated Code\n\n")
	fmt.Fprintf(&b, "```%s\n%s\n```\n\n", r.lang(), strings.TrimRight(s.ImprovedCode, "\n"))

	b.WriteString("## Usage Notes\n\n")
	b.WriteString("- Review the code before deploying it.\n")
	b.WriteString("- Address any remaining recommendations listed above.\n")
	b.WriteString("- Run the included tests, or add tests if none exist.\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMetricsSection(b *strings.Builder, rec *metrics.Record) {
	if rec == nil {
		return
	}
	b.WriteString("## Metrics\n\n")
	fmt.Fprintf(b, "- **Syntax valid:** %s\n", yesNo(rec.SyntaxOK))
	fmt.Fprintf(b, "- **Functions:** %d\n", rec.Functions)
	fmt.Fprintf(b, "- **Average complexity:** %.2f\n", rec.AvgComplexity)
	fmt.Fprintf(b, "- **Docstrings:** %s\n", yesNo(rec.HasDocstrings))

	if m := rec.Maintainability; m != nil {
		b.WriteString("\n### Maintainability\n\n")
		if m.Error != "" {
			fmt.Fprintf(b, "- Unavailable: %s\n", m.Error)
		} else {
			fmt.Fprintf(b, "- **Index:** %.1f", m.MaintainabilityIndex)
			if m.Rating != "" {
				fmt.Fprintf(b, " (%s)", m.Rating)
			}
			b.WriteString("\n")
			fmt.Fprintf(b, "- **Halstead volume:** %.1f\n", m.HalsteadVolume)
			fmt.Fprintf(b, "- **Logical lines:** %d\n", m.LLOC)
		}
	}

	if s := rec.Security; s != nil {
		b.WriteString("\n### Security\n\n")
		if s.Error != "" {
			fmt.Fprintf(b, "- Scan unavailable: %s\n", s.Error)
		} else {
			fmt.Fprintf(b, "- **Issues:** %d (%d high severity)\n", s.SecurityIssues, s.HighSeverity)
			for _, issue := range s.Issues {
				if issue.Line > 0 {
					fmt.Fprintf(b, "  - [%s] line %d: %s\n", issue.Severity, issue.Line, issue.Text)
				} else {
					fmt.Fprintf(b, "  - [%s] %s\n", issue.Severity, issue.Text)
				}
			}
		}
	}

	if e := rec.ErrorHandling; e != nil {
		b.WriteString("\n### Error Handling\n\n")
		fmt.Fprintf(b, "- **Try/except blocks:** %s (%d handlers, %d bare)\n", yesNo(e.HasTryExcept), e.ExceptionCount, e.BareExceptCount)
		fmt.Fprintf(b, "- **Logging:** %s\n", yesNo(e.HasLogging))
		fmt.Fprintf(b, "- **Input validation:** %s\n", yesNo(e.HasValidation))
	}

	if t := rec.TestCoverage; t != nil {
		b.WriteString("\n### Tests\n\n")
		fmt.Fprintf(b, "- **Tests present:** %s (%d functions, %d assertions)\n", yesNo(t.HasTests), t.TestFunctions, t.AssertionCount)
		if len(t.TestFrameworks) > 0 {
			fmt.Fprintf(b, "- **Frameworks:** %s\n", strings.Join(t.TestFrameworks, ", "))
		}
	}

	if sp := rec.SolidPrinciples; sp != nil {
		b.WriteString("\n### Design\n\n")
		fmt.Fprintf(b, "- **SRP score:** %.0f/100\n", sp.SRPScore)
		fmt.Fprintf(b, "- **Classes:** %d (%.1f methods per class)\n", sp.ClassCount, sp.AvgMethodsPerClass)
		if len(sp.GodClasses) > 0 {
			fmt.Fprintf(b, "- **God classes:** %s\n", strings.Join(sp.GodClasses, ", "))
		}
		if len(sp.LongMethods) > 0 {
			fmt.Fprintf(b, "- **Long methods:** %s\n", strings.Join(sp.LongMethods, ", "))
		}
	}
	b.WriteString("\n")
}

func writeBreakdownSection(b *strings.Builder, result scoring.ScoreResult) {
	b.WriteString("## Score Breakdown\n\n")
	for _, row := range result.Ordered() {
		pct := 0.0
		if row.Max > 0 {
			pct = float64(row.Points) / float64(row.Max) * 100
		}
		fmt.Fprintf(b, "- **%s:** %d/%d (%.0f%%)\n", row.Name, row.Points, row.Max, pct)
	}
	b.WriteString("\n")
}

func writeRecommendationsSection(b *strings.Builder, recs []recommend.Recommendation) {
	b.WriteString("## Recommendations\n\n")
	if len(recs) == 0 {
		b.WriteString("No major recommendations. The code meets production-ready standards.\n\n")
		return
	}
	for i, rec := range recs {
		fmt.Fprintf(b, "%d. **%s** %s\n", i+1, strings.ToUpper(string(rec.Priority)), rec.Text)
	}
	b.WriteString("\n")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
