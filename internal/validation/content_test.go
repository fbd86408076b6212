package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		min     int
		max     int
		want    string
		wantErr bool
	}{
		{"trimmed", "  hello  ", 1, 10, "hello", false},
		{"empty", "", 1, 10, "", true},
		{"whitespace only", "   \n\t", 1, 10, "", true},
		{"below minimum", "why?", QuestionMinLength, QuestionMaxLength, "", true},
		{"exact minimum", "0123456789", QuestionMinLength, QuestionMaxLength, "0123456789", false},
		{"exact maximum", strings.Repeat("a", CommentMaxLength), CommentMinLength, CommentMaxLength, strings.Repeat("a", CommentMaxLength), false},
		{"over maximum", strings.Repeat("a", CommentMaxLength+1), CommentMinLength, CommentMaxLength, "", true},
		{"runes not bytes", strings.Repeat("é", 5), 1, 5, strings.Repeat("é", 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Text("content", tt.value, tt.min, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMediaURL(t *testing.T) {
	t.Parallel()

	ok := []string{"", "   ", "https://cdn.example.com/a.jpg", "http://example.com/v.mp4"}
	for _, raw := range ok {
		_, err := MediaURL(raw)
		assert.NoError(t, err, raw)
	}

	bad := []string{"ftp://example.com/a.jpg", "/relative/path.png", "https://", "javascript:alert(1)", "https://" + strings.Repeat("a", MediaURLMaxLength)}
	for _, raw := range bad {
		_, err := MediaURL(raw)
		assert.Error(t, err, raw)
	}
}
