package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRepo(ctx))
	assert.Empty(t, GetFile(ctx))

	ctx = WithRepo(ctx, "/src/project")
	assert.Equal(t, "/src/project", GetRepo(ctx))
	assert.Empty(t, GetFile(ctx))

	ctx = WithFile(ctx, "src/app.go")
	assert.Equal(t, "/src/project", GetRepo(ctx))
	assert.Equal(t, "src/app.go", GetFile(ctx))
}
