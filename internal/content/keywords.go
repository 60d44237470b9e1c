package content

import (
	"regexp"
	"strings"
)

type keywordCategory struct {
	name    string
	pattern *regexp.Regexp
}

func category(name string, keywords ...string) keywordCategory {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return keywordCategory{
		name:    name,
		pattern: regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(quoted, "|") + `)(?:[^\p{L}\p{N}]|$)`),
	}
}

// keywordCategories maps body keywords to the category they imply.
var keywordCategories = []keywordCategory{
	category("Go", "golang", "goroutine", "goroutines"),
	category("JavaScript", "javascript", "typescript", "node.js", "nodejs"),
	category("React", "react", "next.js", "nextjs", "jsx"),
	category("DevOps", "docker", "kubernetes", "ci/cd", "terraform", "deployment"),
	category("Databases", "postgres", "postgresql", "sql", "database", "redis"),
	category("Web Development", "html", "css", "frontend", "backend", "api"),
	category("Testing", "testing", "unit test", "tdd"),
	category("Security", "security", "oauth", "encryption", "authentication"),
	category("AI", "machine learning", "llm", "neural network", "artificial intelligence"),
	category("Career", "career", "interview", "mentorship"),
}

// ExtractCategories returns the categories whose keywords appear in body as
// whole words, ignoring case, in table order.
func ExtractCategories(body string) []string {
	var out []string
	for _, kc := range keywordCategories {
		if kc.pattern.MatchString(body) {
			out = append(out, kc.name)
		}
	}
	return out
}
