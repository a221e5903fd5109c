// Package action defines the closed vocabulary of automation actions.
//
// The model speaks one dialect (open_app, search_google, ...) and the
// controllers speak another (open_application, web_search, ...). This
// package owns the canonical names and the translation between the two,
// so the router can never receive an action string it does not know.
package action

import "strings"

// Chat is the conversational fallback action. It is the only action that
// is never routed to a controller.
const Chat = "chat"

// modelActions is the closed set of action names the model is allowed to
// emit in its JSON reply.
var modelActions = map[string]struct{}{
	"open_app":         {},
	"close_app":        {},
	"open_website":     {},
	"search_google":    {},
	"open_youtube":     {},
	"volume":           {},
	"screenshot":       {},
	"system":           {},
	"file_open":        {},
	"folder_open":      {},
	"type_text":        {},
	"hotkey":           {},
	"get_system_info":  {},
	"create_folder":    {},
	"clipboard_copy":   {},
	"clipboard_paste":  {},
	"set_volume":       {},
	"set_brightness":   {},
	"get_ip_info":      {},
	"get_network_info": {},
	"ping":             {},
	"list_processes":   {},
	"media_play":       {},
	"media_pause":      {},
	"media_next":       {},
	"media_prev":       {},
	Chat:               {},
}

// mapping translates model-facing action names to controller-facing names.
// Identity entries are listed so the value set doubles as the canonical
// vocabulary for those actions.
var mapping = map[string]string{
	"open_app":        "open_application",
	"close_app":       "close_application",
	"open_website":    "open_url",
	"search_google":   "web_search",
	"get_system_info": "get_system_info",
	"system":          "system",
	"screenshot":      "screenshot",
	"volume":          "volume",
}

// mapped holds the value set of mapping for O(1) validation.
var mapped = func() map[string]struct{} {
	m := make(map[string]struct{}, len(mapping))
	for _, v := range mapping {
		m[v] = struct{}{}
	}
	return m
}()

// Normalize lowercases and trims name, translates it to its canonical
// controller-facing form, and reports whether the result is part of the
// known vocabulary. Unknown names return ("", false); callers are expected
// to degrade to Chat.
func Normalize(name string) (string, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	if canonical, ok := mapping[n]; ok {
		return canonical, true
	}
	if _, ok := modelActions[n]; ok {
		return n, true
	}
	if _, ok := mapped[n]; ok {
		return n, true
	}
	return "", false
}

// Known reports whether name (canonical or model-facing) is part of the
// vocabulary at all.
func Known(name string) bool {
	_, ok := Normalize(name)
	return ok
}
