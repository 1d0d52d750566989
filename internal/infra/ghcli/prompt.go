package ghcli

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// SelectPullRequest shows an interactive picker over open pull requests and
// returns the chosen number.
func SelectPullRequest(prs []PullRequest) (int, error) {
	if len(prs) == 0 {
		return 0, fmt.Errorf("no open pull requests found")
	}

	items := make([]string, len(prs))
	for i, pr := range prs {
		items[i] = pickerItem(pr)
	}

	prompt := promptui.Select{
		Label: "Select PR",
		Items: items,
		Size:  12,
		Searcher: func(input string, index int) bool {
			return strings.Contains(strings.ToLower(items[index]), input)
		},
		StartInSearchMode: true,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("prompt failed: %w", err)
	}
	return prs[idx].Number, nil
}

// pickerItem renders one selection row.
func pickerItem(pr PullRequest) string {
	title := pr.Title
	if len(title) > 60 {
		title = title[:57] + "..."
	}
	state := ""
	if pr.Draft {
		state = " (Draft)"
	}
	return fmt.Sprintf("#%-6d %-60s %s%s", pr.Number, title, pr.Author, state)
}
