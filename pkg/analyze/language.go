package analyze

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/readyscore/readyscore/pkg/metrics"
)

// Languages recognized by DetectLanguage.
const (
	LanguagePython     = "python"
	LanguageJava       = "java"
	LanguageC          = "c"
	LanguageCPP        = "cpp"
	LanguageJavaScript = "javascript"
	LanguageTypeScript = "typescript"
	LanguageGo         = "go"
	LanguageRust       = "rust"
	LanguageCSharp     = "csharp"
	LanguageRuby       = "ruby"
	LanguagePHP        = "php"
	LanguageUnknown    = "unknown"
)

// extension order matters: ".h" is claimed by C before C++.
var languageExtensions = []struct {
	lang string
	exts []string
}{
	{LanguagePython, []string{".py"}},
	{LanguageJava, []string{".java"}},
	{LanguageC, []string{".c", ".h"}},
	{LanguageCPP, []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"}},
	{LanguageJavaScript, []string{".js", ".jsx"}},
	{LanguageTypeScript, []string{".ts", ".tsx"}},
	{LanguageGo, []string{".go"}},
	{LanguageRust, []string{".rs"}},
	{LanguageCSharp, []string{".cs"}},
	{LanguageRuby, []string{".rb"}},
	{LanguagePHP, []string{".php"}},
}

var (
	rePython     = regexp.MustCompile(`(?m)^(def|class|import|from)\s+`)
	reJava       = regexp.MustCompile(`(?m)^(public|private|protected)\s+(class|interface|enum)`)
	reInclude    = regexp.MustCompile(`#include\s+<`)
	reJavaScript = regexp.MustCompile(`(?m)^(function|const|let|var|class)\s+`)
	reGo         = regexp.MustCompile(`(?m)^package\s+main|^func\s+`)
	reRust       = regexp.MustCompile(`(?m)^(fn|pub|struct|impl)\s+`)
	reCSharp     = regexp.MustCompile(`(?m)^namespace\s+|using\s+System`)
)

// DetectLanguage guesses the language of code, preferring the filename
// extension when one is given.
func DetectLanguage(code, filename string) string {
	if filename != "" {
		ext := strings.ToLower(filepath.Ext(filename))
		for _, le := range languageExtensions {
			for _, e := range le.exts {
				if e == ext {
					return le.lang
				}
			}
		}
	}

	switch {
	case rePython.MatchString(code):
		return LanguagePython
	case reJava.MatchString(code):
		return LanguageJava
	case reInclude.MatchString(code):
		if strings.Contains(code, "namespace") || strings.Contains(code, "class") {
			return LanguageCPP
		}
		return LanguageC
	case reJavaScript.MatchString(code):
		if strings.Contains(code, "interface") || strings.Contains(code, ": string") || strings.Contains(code, ": number") {
			return LanguageTypeScript
		}
		return LanguageJavaScript
	case reGo.MatchString(code):
		return LanguageGo
	case reRust.MatchString(code):
		return LanguageRust
	case reCSharp.MatchString(code):
		return LanguageCSharp
	}
	return LanguageUnknown
}

// Router dispatches to a per-language analyzer, falling back to Default.
type Router struct {
	ByLanguage map[string]Analyzer
	Default    Analyzer
}

// Analyze implements Analyzer.
func (r *Router) Analyze(ctx context.Context, code string) (*metrics.Record, error) {
	lang := DetectLanguage(code, "")
	if a, ok := r.ByLanguage[lang]; ok {
		return a.Analyze(ctx, code)
	}
	if r.Default == nil {
		return nil, fmt.Errorf("no analyzer configured for language %q", lang)
	}
	return r.Default.Analyze(ctx, code)
}
