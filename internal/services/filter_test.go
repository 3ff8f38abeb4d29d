package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterBlocksConfiguredWords(t *testing.T) {
	f := NewFilter([]string{"badword", "Dark Magic"})

	clean, reason := f.Check("this contains badword in the middle")
	assert.False(t, clean)
	assert.NotEmpty(t, reason)

	clean, reason = f.Check("hello world")
	assert.True(t, clean)
	assert.Empty(t, reason)
}

func TestFilterIsCaseInsensitive(t *testing.T) {
	f := NewFilter([]string{"badword"})

	clean, _ := f.Check("BADWORD!")
	assert.False(t, clean)
}

func TestFilterMatchesWholeWordsOnly(t *testing.T) {
	f := NewFilter([]string{"ass"})

	clean, _ := f.Check("my class starts at noon")
	assert.True(t, clean, "substring of a longer word should pass")

	clean, _ = f.Check("what an ass")
	assert.False(t, clean)
}

func TestFilterMatchesPhrases(t *testing.T) {
	f := NewFilter([]string{"dark magic"})

	clean, _ := f.Check("we practice Dark Magic at midnight")
	assert.False(t, clean)

	clean, _ = f.Check("dark chocolate and magic tricks")
	assert.True(t, clean)
}

func TestFilterEmptyTextIsClean(t *testing.T) {
	f := NewFilter(nil)

	clean, _ := f.Check("")
	assert.True(t, clean)
}
