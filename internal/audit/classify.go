// Package audit records administrative actions to a durable append-only log
// with an in-memory mirror for display.
package audit

import (
	"regexp"
)

// Action is the coarse category attached to each audit record.
type Action string

// Known action categories. Call sites should pass an explicit category; the
// keyword classifier exists only for untagged legacy descriptions.
const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionLogin   Action = "login"
	ActionLogout  Action = "logout"
	ActionToken   Action = "token"
	ActionPayment Action = "payment"
	ActionProject Action = "project"
	ActionClient  Action = "client"
	ActionError   Action = "error"
	ActionInfo    Action = "info"
)

// classifierRules is the ordered keyword cascade; first match wins. The
// recorded descriptions are Spanish, so Spanish stems come first with their
// English counterparts alongside.
var classifierRules = []struct {
	action Action
	re     *regexp.Regexp
}{
	{ActionCreate, regexp.MustCompile(`(?i)cread|nuevo|nueva|creat`)},
	{ActionUpdate, regexp.MustCompile(`(?i)actualiz|updat`)},
	{ActionDelete, regexp.MustCompile(`(?i)elimin|borrad|delet`)},
	{ActionLogin, regexp.MustCompile(`(?i)inicio de sesi[oó]n|sesi[oó]n iniciada|login`)},
	{ActionLogout, regexp.MustCompile(`(?i)cierre de sesi[oó]n|logout`)},
	{ActionToken, regexp.MustCompile(`(?i)token|enlace`)},
	{ActionPayment, regexp.MustCompile(`(?i)pago|payment`)},
	{ActionProject, regexp.MustCompile(`(?i)proyecto|project`)},
	{ActionClient, regexp.MustCompile(`(?i)cliente|client`)},
	{ActionError, regexp.MustCompile(`(?i)error|fallid`)},
}

// Classify infers a coarse action category from a free-text description.
// Pure function; rule order is part of the contract.
func Classify(description string) Action {
	for _, rule := range classifierRules {
		if rule.re.MatchString(description) {
			return rule.action
		}
	}
	return ActionInfo
}
