package service

import (
	"regexp"
	"strings"
)

// filePatterns recognize questions that target one specific file. The
// rules run in order, most specific phrasing first, ending with a bare
// file reference for common source extensions.
var filePatterns = []*regexp.Regexp{
	regexp.MustCompile(`explain\s+(?:the\s+)?(?:code\s+in\s+)?["']?(\w+\.\w+)["']?`),
	regexp.MustCompile(`what\s+(?:does|is)\s+["']?(\w+\.\w+)["']?`),
	regexp.MustCompile(`describe\s+["']?(\w+\.\w+)["']?`),
	regexp.MustCompile(`analyze\s+["']?(\w+\.\w+)["']?`),
	regexp.MustCompile(`show\s+(?:me\s+)?["']?(\w+\.\w+)["']?`),
	regexp.MustCompile(`about\s+["']?(\w+\.\w+)["']?`),
	regexp.MustCompile(`in\s+["']?(\w+\.\w+)["']?`),
	regexp.MustCompile(`["']?(\w+\.(?:py|js|ts|java|go|rs|rb|cpp|c|html|css))["']?`),
}

// ExtractFileName returns the file name a question is asking about, or
// an empty string when the question is not file-specific.
func ExtractFileName(question string) string {
	lowered := strings.ToLower(question)
	for _, pattern := range filePatterns {
		if match := pattern.FindStringSubmatch(lowered); match != nil {
			return match[1]
		}
	}
	return ""
}
