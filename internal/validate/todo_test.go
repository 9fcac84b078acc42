package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "buy milk", want: "buy milk"},
		{name: "trimmed", in: "  buy milk  ", want: "buy milk"},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
		{name: "html tags", in: "  <b>x</b>  ", wantErr: true},
		{name: "lone angle bracket", in: "a > b", wantErr: true},
		{name: "max length", in: strings.Repeat("a", 200), want: strings.Repeat("a", 200)},
		{name: "too long", in: strings.Repeat("a", 201), wantErr: true},
		{name: "multibyte counted as characters", in: strings.Repeat("é", 150), want: strings.Repeat("é", 150)},
		{name: "multibyte max length", in: strings.Repeat("日", 200), want: strings.Repeat("日", 200)},
		{name: "multibyte too long", in: strings.Repeat("日", 201), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := Title(tt.in)
			if tt.wantErr {
				assert.NotEmpty(t, msg)
				return
			}
			assert.Empty(t, msg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescription(t *testing.T) {
	t.Run("normalizes whitespace to absent", func(t *testing.T) {
		for _, in := range []string{"", "   ", "\t\n"} {
			got, msg := Description(in)
			assert.Empty(t, msg)
			assert.Nil(t, got)
		}
	})

	t.Run("trims", func(t *testing.T) {
		got, msg := Description("  some details  ")
		require.Empty(t, msg)
		require.NotNil(t, got)
		assert.Equal(t, "some details", *got)
	})

	t.Run("rejects script tags case-insensitively", func(t *testing.T) {
		for _, in := range []string{
			"<script>alert(1)</script>",
			"<SCRIPT>alert(1)</SCRIPT>",
			"ok so far </ScRiPt>",
		} {
			_, msg := Description(in)
			assert.NotEmpty(t, msg, "input %q", in)
		}
	})

	t.Run("allows other markup", func(t *testing.T) {
		got, msg := Description("use <b> for bold")
		require.Empty(t, msg)
		require.NotNil(t, got)
		assert.Equal(t, "use <b> for bold", *got)
	})

	t.Run("too long", func(t *testing.T) {
		_, msg := Description(strings.Repeat("a", 1001))
		assert.NotEmpty(t, msg)
	})

	t.Run("multibyte counted as characters", func(t *testing.T) {
		got, msg := Description(strings.Repeat("é", 1000))
		require.Empty(t, msg)
		require.NotNil(t, got)

		_, msg = Description(strings.Repeat("é", 1001))
		assert.NotEmpty(t, msg)
	})
}
