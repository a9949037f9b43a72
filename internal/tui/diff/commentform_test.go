package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/tinydiff/pkg/tuitest"
)

func TestCommentForm_Prefill(t *testing.T) {
	f, cmd := NewCommentForm("Edit comment", "  existing body \n", 60)
	assert.NotNil(t, cmd, "focusing starts the cursor blink")
	assert.Equal(t, "existing body", f.Value())

	out := tuitest.StripANSI(f.View())
	assert.Contains(t, out, "Edit comment")
	assert.Contains(t, out, "ctrl+s save")
}

func TestCommentForm_Typing(t *testing.T) {
	f, _ := NewCommentForm("New comment", "", 60)
	for _, msg := range tuitest.Type("nit: rename") {
		f, _ = f.Update(msg)
	}
	assert.Equal(t, "nit: rename", f.Value())
}

func TestCommentForm_MinWidth(t *testing.T) {
	f, _ := NewCommentForm("New comment", "", 4)
	assert.Equal(t, 20, f.width)

	f.SetWidth(80)
	assert.Equal(t, 80, f.width)
}
