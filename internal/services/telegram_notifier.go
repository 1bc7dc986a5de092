package services

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"taskhub/internal/models"
	"taskhub/internal/repositories"
)

// TelegramSender is the part of *tgbotapi.BotAPI the notifier uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes outbox rows to the recipient's linked Telegram chat.
type TelegramNotifier struct {
	bot   TelegramSender
	users repositories.UserRepository
}

func NewTelegramNotifier(bot TelegramSender, users repositories.UserRepository) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, users: users}
}

var notificationTitles = map[models.NotificationType]string{
	models.NotificationDueDate:    "⏰ Task due soon",
	models.NotificationSharedTask: "🤝 Task shared with you",
	models.NotificationComment:    "💬 New comment",
}

func formatTelegram(n models.Notification) string {
	title, ok := notificationTitles[n.Type]
	if !ok {
		title = "Notification"
	}
	return fmt.Sprintf("<b>%s</b>\n%s", title, tgbotapi.EscapeText(tgbotapi.ModeHTML, n.Message))
}

func (t *TelegramNotifier) Notify(ctx context.Context, notifications ...models.Notification) {
	if t == nil || t.bot == nil {
		return
	}
	for _, n := range notifications {
		user, err := t.users.GetByID(ctx, n.UserID)
		if err != nil {
			log.Printf("[tg][notify][err] user=%d lookup: %v", n.UserID, err)
			continue
		}
		if user.TelegramChatID == nil || *user.TelegramChatID == 0 {
			continue
		}

		msg := tgbotapi.NewMessage(*user.TelegramChatID, formatTelegram(n))
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			log.Printf("[tg][notify][err] user=%d notification=%d: %v", n.UserID, n.ID, err)
			continue
		}
		log.Printf("[tg][notify][ok] user=%d notification=%d type=%s", n.UserID, n.ID, n.Type)
	}
}
