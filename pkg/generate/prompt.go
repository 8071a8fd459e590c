package generate

import (
	"fmt"
	"strings"
)

type languageProfile struct {
	expert    string
	practices string
}

var profiles = map[string]languageProfile{
	"python":     {"Python", "type hints, docstrings, try-except error handling, logging, input validation and unit tests with assertions"},
	"java":       {"Java", "JavaDoc, proper exception handling, JUnit tests and SOLID principles"},
	"c":          {"C", "careful memory management, error checking, header guards and documentation"},
	"cpp":        {"C++", "RAII, smart pointers, const correctness and modern C++ features"},
	"javascript": {"JavaScript", "async/await, error handling, JSDoc comments and modern ES6+ syntax"},
	"typescript": {"TypeScript", "strict types, interfaces, proper error handling and async/await"},
	"go":         {"Go", "explicit error returns, doc comments, table-driven tests and structured logging"},
}

func profileFor(lang string) languageProfile {
	if p, ok := profiles[lang]; ok {
		return p
	}
	return languageProfile{expert: lang, practices: "documentation, error handling, input validation, logging and tests"}
}

func generateSystemPrompt(lang string) string {
	p := profileFor(lang)
	return fmt.Sprintf(`You are an expert %[1]s developer who writes production-ready code with:
- Clean, modular architecture following SOLID principles
- Comprehensive error handling with meaningful exceptions
- Detailed documentation for all functions and classes
- Unit tests with assertions
- Logging for debugging
- Input validation
- Security best practices (no hardcoded credentials, SQL injection prevention, etc.)
- Idiomatic %[1]s: %[2]s

Return ONLY the %[1]s code without markdown formatting or explanations.`, p.expert, p.practices)
}

func rewriteSystemPrompt(lang string) string {
	p := profileFor(lang)
	return fmt.Sprintf(`You are an expert %[1]s developer focused on code quality. Given code with specific issues identified by tests and analysis, produce improved code that addresses ALL identified problems while maintaining functionality. Apply each recommendation precisely and completely. Return ONLY the complete improved %[1]s code without explanations.`, p.expert)
}

// BuildRewritePrompt assembles the user message for one improvement step.
func BuildRewritePrompt(original, code string, recommendations []string, lang string) string {
	p := profileFor(lang)
	if strings.TrimSpace(original) == "" {
		original = "Improve this code"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TASK: Improve the following %s code based on quality analysis results.\n\n", p.expert)
	fmt.Fprintf(&b, "ORIGINAL REQUIREMENT:\n%s\n\n", original)
	fmt.Fprintf(&b, "CURRENT CODE:\n%s\n\n", code)

	b.WriteString("SPECIFIC RECOMMENDATIONS TO APPLY:\n")
	for i, rec := range recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}

	fmt.Fprintf(&b, "\nINSTRUCTIONS FOR IMPROVED CODE:\n")
	fmt.Fprintf(&b, "You MUST address ALL %d recommendations listed above. For each recommendation:\n", len(recommendations))
	b.WriteString("- Apply the specific fix mentioned\n")
	b.WriteString("- Maintain all original functionality\n")
	b.WriteString("- Ensure no breaking changes\n\n")
	fmt.Fprintf(&b, "Return ONLY the complete improved %s code without explanations or markdown formatting.\n", p.expert)

	return b.String()
}
