package llm

import (
	"testing"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientOptions{}); err == nil {
		t.Fatalf("expected error when API key is missing")
	}
}

func TestNewClientDefaultsBaseURL(t *testing.T) {
	t.Parallel()

	client, err := NewClient(ClientOptions{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if client.BaseURL() != openAIBaseURL {
		t.Fatalf("expected default base URL %q, got %q", openAIBaseURL, client.BaseURL())
	}
}

func TestStripJSONFences(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    string
		expected string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  \n```json\n{\"a\":1}\n```  ", "{\"a\":1}"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := stripJSONFences(tc.input); got != tc.expected {
			t.Errorf("stripJSONFences(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}
