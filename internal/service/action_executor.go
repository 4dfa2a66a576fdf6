// internal/service/action_executor.go
package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/chatdesk-backend/internal/model"
	"github.com/unclebandit/chatdesk-backend/internal/repository"
)

// WebhookPublisher hands (url, payload) to an external delivery mechanism
// with its own retry policy.
type WebhookPublisher interface {
	PublishWebhookEvent(url string, payload map[string]any) error
}

// TeamEmailer hands team notification emails to an external mailer.
type TeamEmailer interface {
	SendEmailToTeam(teamID, conversationID int, message string) error
}

// AutomationActionExecutor interprets an ordered action list against one
// conversation. Two passes: planActions groups attachment+caption pairs,
// then each step executes with its own failure isolation — one failing
// action never aborts the rest of the list.
type AutomationActionExecutor struct {
	ConversationRepo repository.ConversationRepositoryInterface
	MessageRepo      repository.MessageRepositoryInterface
	Webhooks         WebhookPublisher
	TeamEmails       TeamEmailer
	Log              *zap.Logger
}

func (e *AutomationActionExecutor) Execute(actions []model.RuleAction, conversation *model.Conversation, channel model.ChannelKind, rule *model.AutomationRule) {
	// blob ids already sent within this execution; a later action
	// referencing the same blob must not re-send it
	sentBlobs := map[int]bool{}

	for _, step := range planActions(actions) {
		if err := e.executeStep(step, conversation, channel, rule, sentBlobs); err != nil {
			e.Log.Error("automation action failed",
				zap.Int("rule_id", rule.ID),
				zap.Int("conversation_id", conversation.ID),
				zap.Error(err))
		}
	}
}

func (e *AutomationActionExecutor) executeStep(step plannedStep, conversation *model.Conversation, channel model.ChannelKind, rule *model.AutomationRule, sentBlobs map[int]bool) error {
	if step.Kind == stepAttachmentSend {
		return e.sendAttachments(step, conversation, channel, rule, sentBlobs)
	}

	action := step.Action
	params := action.ActionParams

	switch action.ActionName {
	case "send_message":
		if channel.Restricted() {
			return nil
		}
		content := firstStringParam(params)
		if content == "" {
			return nil
		}
		return e.createMessage(conversation, rule, content, false, nil)

	case "send_private_note":
		if channel.Restricted() {
			return nil
		}
		content := firstStringParam(params)
		if content == "" {
			return nil
		}
		return e.createMessage(conversation, rule, content, true, nil)

	case "assign_agent":
		agentID, ok := firstIDParam(params)
		if !ok {
			return nil
		}
		return e.ConversationRepo.AssignAgent(conversation.ID, agentID)

	case "assign_team":
		teamID, ok := firstIDParam(params)
		if !ok {
			return nil
		}
		return e.ConversationRepo.AssignTeam(conversation.ID, teamID)

	case "add_label_to_conversation":
		labels := stringParams(params)
		if len(labels) == 0 {
			return nil
		}
		return e.ConversationRepo.AddLabels(conversation.ID, labels)

	case "remove_label_from_conversation":
		labels := stringParams(params)
		if len(labels) == 0 {
			return nil
		}
		return e.ConversationRepo.RemoveLabels(conversation.ID, labels)

	case "mute_conversation":
		return e.ConversationRepo.MuteConversation(conversation.ID)

	case "snooze_conversation":
		return e.ConversationRepo.SnoozeConversation(conversation.ID, snoozedUntil(firstStringParam(params)))

	case "resolve_conversation":
		return e.ConversationRepo.ResolveConversation(conversation.ID)

	case "reopen_conversation":
		return e.ConversationRepo.ReopenConversation(conversation.ID)

	case "change_priority":
		priority := firstStringParam(params)
		if priority == "" {
			return nil
		}
		return e.ConversationRepo.ChangePriority(conversation.ID, priority)

	case "send_webhook_event":
		url := firstStringParam(params)
		if url == "" {
			return nil
		}
		return e.Webhooks.PublishWebhookEvent(url, e.webhookPayload(conversation, rule))

	case "send_email_to_team":
		if len(params) == 0 {
			return nil
		}
		obj, ok := params[0].(map[string]any)
		if !ok {
			e.Log.Warn("invalid send_email_to_team params", zap.Int("rule_id", rule.ID))
			return nil
		}
		teamID, okID := asInt(obj["team_id"])
		message, _ := obj["message"].(string)
		if !okID || message == "" {
			e.Log.Warn("invalid send_email_to_team params", zap.Int("rule_id", rule.ID))
			return nil
		}
		return e.TeamEmails.SendEmailToTeam(teamID, conversation.ID, message)

	default:
		// unknown action names are logged and skipped, never fatal
		e.Log.Warn("unknown automation action",
			zap.String("action_name", action.ActionName),
			zap.Int("rule_id", rule.ID))
		return nil
	}
}

func (e *AutomationActionExecutor) sendAttachments(step plannedStep, conversation *model.Conversation, channel model.ChannelKind, rule *model.AutomationRule, sentBlobs map[int]bool) error {
	if channel.Restricted() {
		return nil
	}

	blobIDs := []int{}
	for _, id := range step.BlobIDs {
		if sentBlobs[id] {
			continue
		}
		blobIDs = append(blobIDs, id)
	}
	if len(blobIDs) == 0 {
		return nil
	}

	if err := e.createMessage(conversation, rule, step.Caption, false, blobIDs); err != nil {
		return err
	}
	for _, id := range blobIDs {
		sentBlobs[id] = true
	}
	return nil
}

func (e *AutomationActionExecutor) createMessage(conversation *model.Conversation, rule *model.AutomationRule, content string, private bool, blobIDs []int) error {
	attrs := map[string]any{
		"automation_rule_id": rule.ID,
	}
	if len(blobIDs) > 0 {
		attrs["blob_ids"] = blobIDs
	}
	message := &model.Message{
		ConversationID:    conversation.ID,
		AccountID:         conversation.AccountID,
		InboxID:           conversation.InboxID,
		MessageType:       model.MessageTypeOutgoing,
		Private:           private,
		Content:           content,
		ContentAttributes: attrs,
	}
	if err := e.MessageRepo.Create(message); err != nil {
		return fmt.Errorf("automation message: %w", err)
	}
	return nil
}

func (e *AutomationActionExecutor) webhookPayload(conversation *model.Conversation, rule *model.AutomationRule) map[string]any {
	return map[string]any{
		"event":           "automation_event." + rule.EventName,
		"conversation_id": conversation.ID,
		"account_id":      conversation.AccountID,
		"inbox_id":        conversation.InboxID,
		"status":          conversation.Status,
	}
}

// snoozedUntil maps a snooze duration key to its wakeup time; unknown keys
// snooze indefinitely.
func snoozedUntil(key string) *time.Time {
	now := time.Now()
	var until time.Time
	switch key {
	case "an_hour_from_now":
		until = now.Add(time.Hour)
	case "until_tomorrow":
		until = now.AddDate(0, 0, 1)
	case "until_next_week":
		until = now.AddDate(0, 0, 7)
	default:
		return nil
	}
	return &until
}
