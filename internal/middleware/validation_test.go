package middleware

import (
	"strings"
	"testing"
)

func TestValidateArticleID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  uint64
		wantErr bool
	}{
		{"valid", "1", 1, false},
		{"large", "18446744073709551615", 18446744073709551615, false},
		{"trims whitespace", "  7  ", 7, false},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"empty", "", 0, true},
		{"not a number", "abc", 0, true},
		{"float", "1.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateArticleID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.wantID {
				t.Errorf("got %d, want %d", got, tt.wantID)
			}
		})
	}
}

func TestValidateAccount(t *testing.T) {
	valid := "0x" + strings.Repeat("ab", 20)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid lowercase", valid, valid, false},
		{"uppercase normalized", "0x" + strings.Repeat("AB", 20), valid, false},
		{"trims whitespace", "  " + valid + "  ", valid, false},
		{"empty", "", "", true},
		{"missing prefix", strings.Repeat("ab", 20), "", true},
		{"too short", "0xabc", "", true},
		{"too long", valid + "ff", "", true},
		{"non-hex body", "0x" + strings.Repeat("zz", 20), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateAccount(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "My first article", "My first article", false},
		{"trims whitespace", "  hello  ", "hello", false},
		{"empty", "", "", true},
		{"only whitespace", "   ", "", true},
		{"exactly max", strings.Repeat("a", 200), strings.Repeat("a", 200), false},
		{"too long", strings.Repeat("a", 201), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateTitle(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateContentHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"ipfs cid v0", "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", false},
		{"ipfs cid v1", "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", false},
		{"local id", "local-0a1b2c", false},
		{"empty", "", true},
		{"leading dash", "-abc", true},
		{"whitespace inside", "Qm abc", true},
		{"too long", strings.Repeat("a", 129), true},
		{"path traversal", "../etc/passwd", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errMsg := ValidateContentHash(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"article id", "/api/articles/42", "/api/articles/:id"},
		{"article subresource", "/api/articles/42/votes", "/api/articles/:id/votes"},
		{"content hash", "/api/content/QmAbc123", "/api/content/:hash"},
		{"static path untouched", "/api/stats", "/api/stats"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizePath(tt.path); got != tt.want {
				t.Errorf("sanitizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
