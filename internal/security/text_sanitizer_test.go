package security

import (
	"strings"
	"testing"
)

// TestSanitize_StripsMarkup はタグが除去されテキストのみ残ることを検証する。
func TestSanitize_StripsMarkup(t *testing.T) {
	sanitizer := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "プレーンテキストはそのまま",
			input: "Implementar autenticação",
			want:  "Implementar autenticação",
		},
		{
			name:  "装飾タグは除去される",
			input: "<p>Revisar <strong>PR</strong></p>",
			want:  "Revisar PR",
		},
		{
			name:  "scriptは内容ごと除去される",
			input: `<script>alert("xss")</script>Corrigir bug`,
			want:  "Corrigir bug",
		},
		{
			name:  "イベント属性を持つ要素も除去される",
			input: `<img src=x onerror="alert(1)">Deploy`,
			want:  "Deploy",
		},
		{
			name:  "アンパサンドは保持される",
			input: "Tom & Jerry",
			want:  "Tom & Jerry",
		},
		{
			name:  "前後の空白は除去される",
			input: "  comentário  ",
			want:  "comentário",
		},
		{
			name:  "空文字列",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizer.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitize_NoTagsRemain は出力にタグの開始が残らないことを検証する。
func TestSanitize_NoTagsRemain(t *testing.T) {
	sanitizer := NewTextSanitizer()
	inputs := []string{
		`<iframe src="https://evil.example"></iframe>texto`,
		`<a href="javascript:alert(1)">link</a>`,
		`<style>body{}</style><b>bold</b>`,
	}
	for _, in := range inputs {
		if got := sanitizer.Sanitize(in); strings.Contains(got, "<") {
			t.Errorf("Sanitize(%q) = %q, contains markup", in, got)
		}
	}
}

// TestSanitize_Idempotent は同一入力に対して同一出力を返すことを検証する。
func TestSanitize_Idempotent(t *testing.T) {
	sanitizer := NewTextSanitizer()
	input := "<em>Prazo</em> amanhã"
	first := sanitizer.Sanitize(input)
	second := sanitizer.Sanitize(input)
	if first != second {
		t.Errorf("Sanitize is not deterministic: %q vs %q", first, second)
	}
}
