package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{
			name:  "strips artifacts and rules",
			input: "WALMART  [SUPER]CENTER\n*****\n  Total:  $48.60 |\n",
			want:  "WALMART SUPERCENTER\nTotal: $48.60",
		},
		{
			name:  "fixes standalone misreads only",
			input: "TOTAL 0 I l\nl0 Il",
			want:  "TOTAL O 1 1\nl0 Il",
		},
		{
			name:  "typographic punctuation",
			input: "Joe’s “Diner” — Main St – 5",
			want:  `Joe's "Diner" - Main St - 5`,
		},
		{
			name:  "drops symbol-only lines",
			input: "Coffee 4.50\n- -\n====\n...\nTaxi 12.00",
			want:  "Coffee 4.50\nTaxi 12.00",
		},
		{name: "only noise", input: "|||\n[]\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"WALMART SUPERCENTER\n... Subtotal 45.00\nTotal $48.60\n03/14/2024",
		"  I  l  0  \n\n\t---\n{brace} | pipe \\ slash",
		"Joe’s — Café\r\nTOTAL\t$5.00",
		"* * *\n+++\n___\n",
		"Coffee 4.50\nTaxi 12.00\n",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, Lines("  a \n\n b c\n  "))
	assert.Nil(t, Lines(""))
}
