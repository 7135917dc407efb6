package service

import "fmt"

// Cache key builders. Account and manager entries are scoped to the
// actor or target, policy entries to the chat alone.

func accountKey(chatID int64, username string) string {
	return fmt.Sprintf("account:%d:%s", chatID, username)
}

func policyKey(chatID int64) string {
	return fmt.Sprintf("policy:%d", chatID)
}

func managerKey(chatID, externalUserID int64) string {
	return fmt.Sprintf("manager:%d:%d", chatID, externalUserID)
}
