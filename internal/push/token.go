// Package push delivers batched notifications through the Expo push gateway
package push

import "strings"

// IsExpoPushToken reports whether token matches the Expo push token syntax
// (ExponentPushToken[...] or ExpoPushToken[...]). Pure syntax check; it says
// nothing about whether the token is still valid at the gateway.
func IsExpoPushToken(token string) bool {
	var inner string
	switch {
	case strings.HasPrefix(token, "ExponentPushToken["):
		inner = token[len("ExponentPushToken["):]
	case strings.HasPrefix(token, "ExpoPushToken["):
		inner = token[len("ExpoPushToken["):]
	default:
		return false
	}
	return strings.HasSuffix(inner, "]") && len(inner) > 1
}
