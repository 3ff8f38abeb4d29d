package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := GenerateRandomCode(8)
		assert.Len(t, code, 8)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r))
		}
		seen[code] = true
	}
	// 50 draws from 36^8 colliding would mean the generator is broken
	assert.Greater(t, len(seen), 45)
}

func TestRandomAnonName(t *testing.T) {
	for i := 0; i < 20; i++ {
		name := RandomAnonName()
		var adjective bool
		for _, a := range anonAdjectives {
			if strings.HasPrefix(name, a) {
				adjective = true
			}
		}
		assert.True(t, adjective, "name %q should start with a known adjective", name)
	}
}

func TestRenderMarkdown(t *testing.T) {
	html := RenderMarkdown("**bold** and [a link](https://example.com)")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, `href="https://example.com"`)
}

func TestRenderMarkdownStripsScripts(t *testing.T) {
	html := RenderMarkdown(`hello <script>alert("x")</script> world`)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "hello")
}

func TestSanitizeHTML(t *testing.T) {
	assert.NotContains(t, SanitizeHTML(`<img src=x onerror="alert(1)">`), "onerror")
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestStringToInt(t *testing.T) {
	assert.Equal(t, 42, StringToInt("42"))
	assert.Equal(t, 0, StringToInt("not-a-number"))
}
