package phone

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		dialable   string
		valid      bool
		taggingKey string
	}{
		{name: "formatted US", input: "(555) 123-4567", dialable: "+15551234567", valid: true, taggingKey: "5551234567"},
		{name: "bare 10 digits", input: "5551234567", dialable: "+15551234567", valid: true, taggingKey: "5551234567"},
		{name: "explicit +1", input: "+1 555 123 4567", dialable: "+15551234567", valid: true, taggingKey: "15551234567"},
		{name: "philippines with code", input: "+63 917 123 4567", dialable: "+639171234567", valid: true, taggingKey: "639171234567"},
		{name: "philippines local", input: "09171234567", valid: false, taggingKey: "09171234567"},
		{name: "seven digits", input: "123-4567", valid: false, taggingKey: "1234567"},
		{name: "eleven starting with 9", input: "91234567890", valid: false, taggingKey: "91234567890"},
		{name: "uk number", input: "+44 20 7946 0958", valid: false, taggingKey: "442079460958"},
		{name: "empty", input: "", valid: false, taggingKey: ""},
		{name: "no digits", input: "call me", valid: false, taggingKey: ""},
		{name: "short 63 prefix", input: "63", dialable: "+63", valid: true, taggingKey: "63"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.dialable, got.Dialable)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.taggingKey, got.TaggingKey)
		})
	}
}

func randomDigits(r *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + r.Intn(10)))
	}
	return b.String()
}

func TestNormalizeProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		ten := randomDigits(r, 10)
		if !strings.HasPrefix(ten, "63") {
			assert.Equal(t, "+1"+ten, Normalize(ten).Dialable, ten)
		}

		ph := "63" + randomDigits(r, r.Intn(12))
		assert.Equal(t, "+"+ph, Normalize(ph).Dialable, ph)

		us := "1" + randomDigits(r, 10+r.Intn(4))
		assert.Equal(t, "+"+us, Normalize(us).Dialable, us)

		seven := randomDigits(r, 7)
		if !strings.HasPrefix(seven, "63") {
			n := Normalize(seven)
			assert.False(t, n.Valid, seven)
			assert.Equal(t, seven, n.TaggingKey)
		}

		raw := "+" + randomDigits(r, r.Intn(15)) + " (x) " + randomDigits(r, 3)
		key := Normalize(raw).TaggingKey
		assert.Equal(t, key, Normalize(key).TaggingKey, raw)
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "15551234567", Digits("+1 (555) 123-4567 ext."))
	assert.Equal(t, "", Digits(""))
}
