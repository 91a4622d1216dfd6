package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chatzilla-server/push-service/internal/models"
	"chatzilla-server/push-service/internal/service"
)

const testAppID = "test-app-id"

func TestBuildIndividualNotification(t *testing.T) {
	defaults := service.DefaultStrings()

	t.Run("Sender name and content used when present", func(t *testing.T) {
		msg := models.Message{SenderID: "u1", ReceiverID: "u2", Content: "hi", SenderName: "Ana"}

		req := service.BuildIndividualNotification(testAppID, defaults, msg, []string{"tok2"})

		assert.Equal(t, testAppID, req.AppID)
		assert.Equal(t, []string{"tok2"}, req.SubscriptionIDs)
		assert.Equal(t, "Ana", req.Title)
		assert.Equal(t, "hi", req.Body)
	})

	t.Run("Defaults applied when optional fields absent", func(t *testing.T) {
		msg := models.Message{SenderID: "u1", ReceiverID: "u2"}

		req := service.BuildIndividualNotification(testAppID, defaults, msg, []string{"tok2"})

		assert.Equal(t, "New Message", req.Title)
		assert.Equal(t, "You have a new message.", req.Body)
	})
}

func TestBuildGroupNotification(t *testing.T) {
	defaults := service.DefaultStrings()

	t.Run("Title combines group name and sender name", func(t *testing.T) {
		group := &models.Group{ID: "g1", Name: "Runners", Members: []string{"u1", "u2"}}
		msg := models.Message{SenderID: "u1", Content: "let's go", SenderName: "Ana"}

		req := service.BuildGroupNotification(testAppID, defaults, group, msg, []string{"t2"})

		assert.Equal(t, "[Runners] Ana", req.Title)
		assert.Equal(t, "let's go", req.Body)
	})

	t.Run("Defaults applied for unnamed group and anonymous sender", func(t *testing.T) {
		group := &models.Group{ID: "g1", Members: []string{"u1", "u2"}}
		msg := models.Message{SenderID: "u1"}

		req := service.BuildGroupNotification(testAppID, defaults, group, msg, []string{"t2"})

		assert.Equal(t, "[Group] Someone", req.Title)
		assert.Equal(t, "New message in group.", req.Body)
	})

	t.Run("Fixture defaults can be substituted", func(t *testing.T) {
		fixtures := service.Defaults{
			GroupName:   "Команда",
			GroupSender: "Кто-то",
			GroupBody:   "тело по умолчанию",
		}
		group := &models.Group{ID: "g1", Members: []string{"u1", "u2"}}
		msg := models.Message{SenderID: "u1"}

		req := service.BuildGroupNotification(testAppID, fixtures, group, msg, []string{"t2"})

		assert.Equal(t, "[Команда] Кто-то", req.Title)
		assert.Equal(t, "тело по умолчанию", req.Body)
	})
}
