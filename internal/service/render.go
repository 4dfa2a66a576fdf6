// internal/service/render.go
package service

import (
	"strings"

	"github.com/unclebandit/chatdesk-backend/internal/model"
)

// RenderTemplate substitutes {placeholder} tokens in a message body.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

func contactFields(contact *model.Contact) map[string]string {
	return map[string]string{
		"name":         contact.Name,
		"email":        contact.Email,
		"phone_number": contact.PhoneNumber,
	}
}
