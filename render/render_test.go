package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender_Float(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name     string
		value    float64
		expected string
	}{
		{
			name:     "small value",
			value:    1.5,
			expected: "1.50",
		},
		{
			name:     "thousands grouping",
			value:    1234567.891,
			expected: "1,234,567.89",
		},
		{
			name:     "zero",
			value:    0,
			expected: "0.00",
		},
		{
			name:     "negative",
			value:    -42.1,
			expected: "-42.10",
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, Float(testCase.value))
		})
	}
}

func TestRender_Number(t *testing.T) {
	t.Parallel()

	t.Run("valid number", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "5,000.00", Number("5000"))
	})

	t.Run("whitespace tolerated", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "120.50", Number(" 120.5 "))
	})

	t.Run("non-numeric falls back", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, NotAvailable, Number("garbage"))
	})

	t.Run("empty falls back", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, NotAvailable, Number(""))
	})
}

func TestRender_Percent(t *testing.T) {
	t.Parallel()

	t.Run("fraction rendered", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "99.80", Percent("0.998"))
	})

	t.Run("full completion", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "100.00", Percent("1"))
	})

	t.Run("non-numeric passed through", func(t *testing.T) {
		t.Parallel()

		// Parse failures are intentionally passed through unchanged,
		// not replaced with the NotAvailable marker
		assert.Equal(t, "n/a%", Percent("n/a%"))
	})
}

func TestRender_EscapeMarkup(t *testing.T) {
	t.Parallel()

	t.Run("reserved characters escaped", func(t *testing.T) {
		t.Parallel()

		assert.Equal(
			t,
			`crypto\_guy \(pro\)\!`,
			EscapeMarkup("crypto_guy (pro)!"),
		)
	})

	t.Run("plain text untouched", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Abebe", EscapeMarkup("Abebe"))
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		original := "a_b*c[d]e(f)g~h`i>j#k+l-m=n|o{p}q.r!s"
		escaped := EscapeMarkup(original)

		// Removing the inserted backslashes restores the input
		restored := strings.ReplaceAll(escaped, `\`, "")
		assert.Equal(t, original, restored)
	})

	t.Run("every reserved character prefixed", func(t *testing.T) {
		t.Parallel()

		escaped := EscapeMarkup(markupReserved)

		assert.Len(t, escaped, 2*len(markupReserved))

		for i := 0; i < len(escaped); i += 2 {
			assert.Equal(t, byte('\\'), escaped[i])
		}
	})
}
