package entities

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Message is a one-shot status line shown to the user after an action.
type Message struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

func Errorf(format string, args ...any) Message {
	return newMessage(SeverityError, format, args...)
}

func Warningf(format string, args ...any) Message {
	return newMessage(SeverityWarning, format, args...)
}

func Infof(format string, args ...any) Message {
	return newMessage(SeverityInfo, format, args...)
}

func Successf(format string, args ...any) Message {
	return newMessage(SeveritySuccess, format, args...)
}

func newMessage(severity Severity, format string, args ...any) Message {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	return Message{Severity: severity, Text: text}
}
