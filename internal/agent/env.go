package agent

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildTaskWithEnvironment prefixes the task with the site the agent starts
// on, so the model prefers staying there over opening search engines.
func BuildTaskWithEnvironment(rawTask, startURL string) string {
	u, err := url.Parse(startURL)
	if err != nil || u.Host == "" {
		return rawTask
	}

	host := strings.ToLower(u.Host)
	path := strings.TrimRight(u.Path, "/")

	var pathNote string
	if path != "" {
		pathNote = fmt.Sprintf(`
Starting section: %s.
Prefer staying in pages whose URL starts with this path unless the task needs another section.`,
			path,
		)
	}

	return fmt.Sprintf(
		`You are working on the site %s.
Start page: %s.%s

Do not open external search engines; use the site's own search and filters.
User task: %s`,
		host, startURL, pathNote, rawTask,
	)
}
