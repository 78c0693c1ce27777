package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sagkhr23/linkdin-auto-reply/internal/thread"
)

func headline(s string) *string { return &s }

func TestHeadlineKeywordsWinRegardlessOfText(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	for _, keyword := range DefaultKeywords().Headline {
		for _, variant := range []string{keyword, strings.ToUpper(keyword), "  Lead " + strings.ToUpper(keyword[:1]) + keyword[1:] + " at Acme  "} {
			msg := thread.Message{Text: "Let's grab coffee sometime", SenderHeadline: headline(variant)}
			decision := c.Classify(msg)
			if !decision.Recruiter {
				t.Fatalf("headline %q: expected recruiter", variant)
			}
			if decision.Stage != StageHeadline {
				t.Fatalf("headline %q: expected headline stage, got %q", variant, decision.Stage)
			}
		}
	}
}

func TestTextKeywordsWithoutHeadline(t *testing.T) {
	t.Parallel()

	c := New(nil, nil)
	for _, keyword := range DefaultKeywords().Text {
		msg := thread.Message{Text: "Hello! " + strings.ToUpper(keyword) + " inside."}
		decision := c.Classify(msg)
		if !decision.Recruiter {
			t.Fatalf("text keyword %q: expected recruiter", keyword)
		}
		if decision.Stage != StageText {
			t.Fatalf("text keyword %q: expected text stage, got %q", keyword, decision.Stage)
		}
	}
}

func TestClassifyScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		msg      thread.Message
		expected bool
		stage    string
	}{
		{
			name:     "talent headline",
			msg:      thread.Message{Text: "Hi, are you open to new roles?", SenderHeadline: headline("Senior Talent Acquisition Partner")},
			expected: true,
			stage:    StageHeadline,
		},
		{
			name:     "no headline and no keyword",
			msg:      thread.Message{Text: "Let's grab coffee sometime"},
			expected: false,
			stage:    StageText,
		},
		{
			// A present headline without a match stops classification; the
			// recruiter-sounding text is never inspected.
			name:     "non matching headline does not fall through",
			msg:      thread.Message{Text: "We have an opening for a backend role, what's your notice period?", SenderHeadline: headline("Software Engineer")},
			expected: false,
			stage:    StageHeadline,
		},
		{
			name:     "negation is still a match",
			msg:      thread.Message{Text: "we are not hiring right now"},
			expected: true,
			stage:    StageText,
		},
		{
			name:     "blank headline is treated as absent",
			msg:      thread.Message{Text: "please share your resume", SenderHeadline: headline("   ")},
			expected: true,
			stage:    StageText,
		},
	}

	c := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decision := c.Classify(tt.msg)
			if decision.Recruiter != tt.expected {
				t.Fatalf("expected recruiter=%v, got %+v", tt.expected, decision)
			}
			if decision.Stage != tt.stage {
				t.Fatalf("expected stage %q, got %q", tt.stage, decision.Stage)
			}
			if c.IsRecruiter(tt.msg) != tt.expected {
				t.Fatalf("IsRecruiter disagrees with Classify")
			}
		})
	}
}

func TestFallthroughOverride(t *testing.T) {
	t.Parallel()

	set := DefaultKeywords()
	set.Fallthrough = true
	c := New(set, nil)

	msg := thread.Message{Text: "We have an opening for a backend role", SenderHeadline: headline("Software Engineer")}
	decision := c.Classify(msg)
	if !decision.Recruiter || decision.Stage != StageText {
		t.Fatalf("expected text stage match with fallthrough, got %+v", decision)
	}
}

func TestParseKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{name: "valid", data: "version: 1\nheadline: [' Sourcer ']\ntext: [Gig]\n"},
		{name: "wrong version", data: "version: 2\nheadline: [x]\n", wantErr: true},
		{name: "empty", data: "version: 1\nheadline: ['  ']\n", wantErr: true},
		{name: "malformed", data: "version: [", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			set, err := ParseKeywords([]byte(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if set.Headline[0] != "sourcer" || set.Text[0] != "gig" {
				t.Fatalf("keywords not normalized: %+v", set)
			}
		})
	}
}

func TestLoadKeywords(t *testing.T) {
	t.Parallel()

	set, err := LoadKeywords("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Headline) != 5 || len(set.Text) != 13 {
		t.Fatalf("unexpected default keyword counts: %d headline, %d text", len(set.Headline), len(set.Text))
	}

	path := filepath.Join(t.TempDir(), "keywords.yaml")
	if err := os.WriteFile(path, []byte("version: 1\nheadline: [sourcer]\n"), 0o600); err != nil {
		t.Fatalf("write keywords: %v", err)
	}

	custom, err := LoadKeywords(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !New(custom, nil).IsRecruiter(thread.Message{Text: "hi", SenderHeadline: headline("Tech Sourcer")}) {
		t.Fatalf("expected custom headline keyword to match")
	}

	if _, err := LoadKeywords(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
