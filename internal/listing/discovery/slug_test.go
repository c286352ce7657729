package discovery

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSlugID(t *testing.T) {
	tests := []struct {
		slug   string
		wantID int64
		wantOK bool
	}{
		{"any-title-words-42", 42, true},
		{"completely-different-text-42", 42, true},
		{"42", 42, true},
		{"-42", 42, true},
		{"2019-kubota-l3901-tractor-1007", 1007, true},
		{"tractor-", 0, false},
		{"tractor-4x2", 0, false},
		{"tractor-+42", 0, false},
		{"tractor-0", 0, false},
		{"", 0, false},
		{"no-id-here", 0, false},
		{"overflow-99999999999999999999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			id, ok := ParseSlugID(tt.slug)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParseSlugID_IgnoresTitleText(t *testing.T) {
	a, okA := ParseSlugID("any-title-words-42")
	b, okB := ParseSlugID("completely-different-text-42")
	assert.True(t, okA)
	assert.True(t, okB)
	assert.Equal(t, a, b)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		id    int64
		want  string
	}{
		{"John Deere 5075E Tractor!", 42, "john-deere-5075e-tractor-42"},
		{"  Café   Espresso -- Machine ", 7, "cafe-espresso-machine-7"},
		{"Ölpumpe Hydraulik", 3, "olpumpe-hydraulik-3"},
		{"", 9, "9"},
		{"***", 10, "10"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Slugify(tt.title, tt.id)
			assert.Equal(t, tt.want, got)

			id, ok := ParseSlugID(got)
			assert.True(t, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestSlugify_Concurrent(t *testing.T) {
	const want = "cafe-unicode-tractor-deluxe-42"

	var wg sync.WaitGroup
	results := make(chan string, 64*200)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				results <- Slugify("Café Ünïcödé Tractör Deluxe", 42)
			}
		}()
	}
	wg.Wait()
	close(results)

	for got := range results {
		if !assert.Equal(t, want, got) {
			return
		}
	}
}
