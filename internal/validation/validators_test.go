package validation

import "testing"

func TestValidatePagePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple path", "/chat", false},
		{"nested path", "/exercises/breathing", false},
		{"root", "/", false},
		{"empty", "", true},
		{"no leading slash", "chat", true},
		{"contains space", "/my page", true},
		{"contains tab", "/page\tname", true},
		{"contains newline", "/page\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePagePath(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePagePath(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestPagePathTag(t *testing.T) {
	t.Parallel()

	type payload struct {
		Page string `validate:"page_path"`
	}

	if err := Validate.Struct(&payload{Page: "/chat"}); err != nil {
		t.Errorf("valid page failed validation: %v", err)
	}
	if err := Validate.Struct(&payload{Page: "chat"}); err == nil {
		t.Error("invalid page passed validation")
	}
}
