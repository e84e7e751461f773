package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ShareTarget is an external messaging app that accepts text through a URL scheme.
type ShareTarget string

const (
	ShareWhatsApp ShareTarget = "whatsapp"
	ShareTelegram ShareTarget = "telegram"
)

var ErrUnknownShareTarget = errors.New("unknown share target")

// ShareURL builds the deep link that opens target with text prefilled.
func ShareURL(target ShareTarget, text string) (string, error) {
	encoded := encodeURIComponent(text)

	switch ShareTarget(strings.ToLower(string(target))) {
	case ShareWhatsApp:
		return "whatsapp://send?text=" + encoded, nil
	case ShareTelegram:
		return "tg://msg?text=" + encoded, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownShareTarget, target)
	}
}

// encodeURIComponent escapes spaces as %20 rather than '+', which the messaging apps
// would otherwise show literally.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
