package services

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"complaintdesk/internal/models"
)

// AlertService — best-effort уведомления дежурному админу. Ошибки доставки
// логируются и никогда не влияют на исход запроса.
type AlertService interface {
	AccountLocked(user *models.User)
	ComplaintFiled(c *models.Complaint)
}

type telegramAlertService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramAlertService(botToken string, adminChatID int64) (AlertService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	log.Printf("[alerts] telegram bot authorized as @%s", bot.Self.UserName)
	return &telegramAlertService{bot: bot, chatID: adminChatID}, nil
}

func (s *telegramAlertService) AccountLocked(user *models.User) {
	text := fmt.Sprintf("🔒 Account locked: <b>%s</b> (id=%d) — attempt counter exhausted", user.Email, user.ID)
	s.send(text)
}

func (s *telegramAlertService) ComplaintFiled(c *models.Complaint) {
	text := fmt.Sprintf("📝 New complaint #%d: <b>%s</b> [%s] by user %d",
		c.ID, c.Title, strings.Join(c.Categories, ", "), c.CreatedBy)
	s.send(text)
}

func (s *telegramAlertService) send(text string) {
	if s == nil || s.bot == nil || s.chatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("[alerts][send][err] %v", err)
	}
}
