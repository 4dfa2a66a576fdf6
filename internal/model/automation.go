// internal/model/automation.go
package model

// RuleAction is one configured step in an automation rule's response to a
// triggering event. ActionParams is heterogeneous: strings, numbers, or
// objects, depending on the action name. Ordering matters — a send_attachment
// immediately followed by a send_message is executed as a captioned
// attachment.
type RuleAction struct {
	ActionName   string `json:"action_name"`
	ActionParams []any  `json:"action_params"`
}

type AutomationRule struct {
	ID        int          `db:"id" json:"id"`
	AccountID int          `db:"account_id" json:"account_id"`
	Name      string       `db:"name" json:"name"`
	EventName string       `db:"event_name" json:"event_name"`
	Actions   []RuleAction `db:"actions" json:"actions"`
}
