// internal/model/channel.go
package model

// ChannelKind is the closed set of channel backends an inbox can run on.
// The dispatch pipeline matches on it exhaustively; anything that parses to
// ChannelUnknown is a configuration error, not a silent skip.
type ChannelKind int

const (
	ChannelUnknown ChannelKind = iota
	ChannelAPI
	ChannelWhatsApp
	ChannelSMS
	ChannelTwilioSMS
	ChannelTwitter
)

// ParseChannelKind maps the persisted channel string to its kind.
func ParseChannelKind(s string) ChannelKind {
	switch s {
	case "api":
		return ChannelAPI
	case "whatsapp":
		return ChannelWhatsApp
	case "sms":
		return ChannelSMS
	case "twilio_sms":
		return ChannelTwilioSMS
	case "twitter":
		return ChannelTwitter
	}
	return ChannelUnknown
}

func (k ChannelKind) String() string {
	switch k {
	case ChannelAPI:
		return "api"
	case ChannelWhatsApp:
		return "whatsapp"
	case ChannelSMS:
		return "sms"
	case ChannelTwilioSMS:
		return "twilio_sms"
	case ChannelTwitter:
		return "twitter"
	}
	return "unknown"
}

// PhoneBased reports whether contacts are addressed by phone number on this
// channel. Phone-based channels require a non-blank phone number to bind.
func (k ChannelKind) PhoneBased() bool {
	switch k {
	case ChannelWhatsApp, ChannelSMS, ChannelTwilioSMS:
		return true
	}
	return false
}

// Restricted reports whether message-producing automation actions are
// suppressed on this channel. Tweet-backed conversations cannot take
// outbound automation messages.
func (k ChannelKind) Restricted() bool {
	return k == ChannelTwitter
}
