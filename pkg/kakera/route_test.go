package kakera

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoute_ShareToken(t *testing.T) {
	r := ParseRoute("https://kakera.example/?share=share-abc123")
	assert.True(t, r.HasShare())
	assert.Equal(t, "share-abc123", r.ShareToken())
}

func TestParseRoute_NoToken(t *testing.T) {
	r := ParseRoute("https://kakera.example/")
	assert.False(t, r.HasShare())
	assert.Empty(t, r.ShareToken())
}

func TestParseRoute_Garbage(t *testing.T) {
	r := ParseRoute("://not a url")
	assert.False(t, r.HasShare())
	assert.Empty(t, r.String())
}

func TestStripShare(t *testing.T) {
	r := ParseRoute("https://kakera.example/app?share=share-abc123&lang=ja")

	stripped, display := r.StripShare()
	assert.False(t, stripped.HasShare())
	assert.Equal(t, "https://kakera.example/app?lang=ja", display)

	// The original route value is unchanged.
	assert.True(t, r.HasShare())
}
