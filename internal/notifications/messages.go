package notifications

import "fmt"

// Notification texts. Each takes the acting user's display name.

func NewFollowerMessage(worshiperName string) string {
	return fmt.Sprintf("%s started following you", worshiperName)
}

func NewPostMessage(leaderName string) string {
	return fmt.Sprintf("%s shared new spiritual content", leaderName)
}

func NewMessageMessage(senderName string) string {
	return fmt.Sprintf("%s sent you a message", senderName)
}

func QuestionAnsweredMessage(leaderName string) string {
	return fmt.Sprintf("%s answered your question", leaderName)
}

func NewCommentMessage(commenterName string) string {
	return fmt.Sprintf("%s commented on your post", commenterName)
}
