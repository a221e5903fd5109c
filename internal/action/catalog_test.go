package action

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"open_app", "open_application", true},
		{"close_app", "close_application", true},
		{"open_website", "open_url", true},
		{"search_google", "web_search", true},
		{"OPEN_APP", "open_application", true},
		{"  screenshot  ", "screenshot", true},
		{"volume", "volume", true},
		{"system", "system", true},
		{"get_system_info", "get_system_info", true},
		{"open_application", "open_application", true},
		{"web_search", "web_search", true},
		{"clipboard_copy", "clipboard_copy", true},
		{"chat", "chat", true},
		{"", "", false},
		{"rm_rf_everything", "", false},
		{"does_not_exist", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	if !Known("open_app") || !Known("open_application") {
		t.Error("expected both dialects of open_app to be known")
	}
	if Known("frobnicate") {
		t.Error("unexpected action accepted")
	}
}
