package telegram

import (
	"strings"
)

// Callback action constants.
const (
	actionReport = "report"
	actionDelete = "delete"
	actionClear  = "clear"
	actionDemo   = "demo"
)

// Confirmation sub-actions.
const (
	confirmYes = "yes"
	confirmNo  = "no"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// param returns the i-th parameter or "".
func (cd callbackData) param(i int) string {
	if i < len(cd.Params) {
		return cd.Params[i]
	}
	return ""
}

func buildReportCallback(mode string) string {
	return callbackData{Action: actionReport, Params: []string{mode}}.encode()
}

// buildDeleteCallback carries the student id rather than the list number.
func buildDeleteCallback(answer, studentID string) string {
	return callbackData{Action: actionDelete, Params: []string{answer, studentID}}.encode()
}

func buildClearCallback(answer string) string {
	return callbackData{Action: actionClear, Params: []string{answer}}.encode()
}

func buildDemoCallback(answer string) string {
	return callbackData{Action: actionDemo, Params: []string{answer}}.encode()
}
