package bot

import (
	"fmt"
	"strings"

	"karma/models"
)

const permissionDeniedMessage = "Only managers and administrators may move more than one point in this chat."

func formatApplied(change models.AppliedChange) string {
	return fmt.Sprintf("**%s** %s, now at **%d**", change.TargetName, FormatDelta(change.Delta), change.NewScore)
}

// formatResult renders a processing outcome for the chat. An empty
// string means there is nothing worth saying.
func formatResult(result *models.ProcessResult) string {
	var lines []string

	for _, change := range result.Applied {
		lines = append(lines, formatApplied(change))
	}
	if len(result.NotFound) > 0 {
		lines = append(lines, fmt.Sprintf("No account here for: %s", strings.Join(result.NotFound, ", ")))
	}
	if result.SelfTarget != nil {
		lines = append(lines, "You cannot change your own score.")
	}
	if result.PermissionDenied {
		lines = append(lines, permissionDeniedMessage)
	}
	if len(result.Failed) > 0 {
		lines = append(lines, fmt.Sprintf("Could not record changes for: %s", strings.Join(result.Failed, ", ")))
	}

	return strings.Join(lines, "\n")
}

// formatHistory renders an account's ledger, separating entries from
// before the chat's last reset
func formatHistory(history *models.AccountHistory) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** — score **%d**\n", history.Account.Username, history.Account.Score)

	if len(history.Recent) == 0 && len(history.Older) == 0 {
		sb.WriteString("No recorded changes yet.")
		return sb.String()
	}

	for _, entry := range history.Recent {
		writeEntry(&sb, entry)
	}
	if len(history.Older) > 0 {
		sb.WriteString("— before last reset —\n")
		for _, entry := range history.Older {
			writeEntry(&sb, entry)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func writeEntry(sb *strings.Builder, entry *models.LedgerEntry) {
	fmt.Fprintf(sb, "%s  %s by %s", entry.CreatedAt.Format("2006-01-02 15:04"), FormatDelta(entry.Delta), entry.ActorName)
	if entry.Note != "" {
		fmt.Fprintf(sb, " — %s", entry.Note)
	}
	sb.WriteString("\n")
}

// formatRanking renders the chat's top accounts
func formatRanking(accounts []*models.Account) string {
	if len(accounts) == 0 {
		return "Nobody has a score here yet."
	}
	var sb strings.Builder
	sb.WriteString("**Top scores**\n")
	for i, account := range accounts {
		fmt.Fprintf(&sb, "%d. %s — %d\n", i+1, account.Username, account.Score)
	}
	return strings.TrimRight(sb.String(), "\n")
}
