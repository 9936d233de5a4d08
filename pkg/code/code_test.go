package code

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWithDetailsDoesNotMutateShared(t *testing.T) {
	c1 := ErrorFolderNotFound.WithDetails("a")
	c2 := ErrorFolderNotFound.WithDetails("b")

	assert.Equal(t, []string{"a"}, c1.Details())
	assert.Equal(t, []string{"b"}, c2.Details())
	assert.False(t, ErrorFolderNotFound.HaveDetails())
	assert.Nil(t, ErrorFolderNotFound.Details())
}

func TestWithDataKeepsDetails(t *testing.T) {
	c := ErrorInvalidParams.WithDetails("x").WithData(42)
	assert.True(t, c.HaveData())
	assert.Equal(t, 42, c.Data())
	assert.Equal(t, []string{"x"}, c.Details())
	assert.False(t, ErrorInvalidParams.HaveData())
}

func TestIsMatchesClones(t *testing.T) {
	err := ErrorNoteNotFound.WithDetails("gone")
	assert.True(t, errors.Is(err, ErrorNoteNotFound))
	assert.False(t, errors.Is(err, ErrorFolderNotFound))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, errors.Is(wrapped, ErrorNoteNotFound))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"auth", ErrorUserAuthFailed, KindAuthentication},
		{"login", ErrorUserLoginFailed, KindAuthentication},
		{"validation", ErrorFolderNameInvalid, KindValidation},
		{"not found", ErrorFolderNotFound.WithDetails("x"), KindNotFound},
		{"conflict", ErrorFolderNameExist, KindConflict},
		{"cycle", ErrorFolderCycle, KindCycle},
		{"unavailable", ErrorStorageUnavailable, KindUnavailable},
		{"wrapped", pkgerrors.Wrap(ErrorFolderCycle, "move"), KindCycle},
		{"plain error", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Folder not found", ErrorFolderNotFound.Msg())
	assert.Equal(t, "文件夹不存在", ErrorFolderNotFound.MsgIn("zh-CN"))
	assert.Equal(t, "文件夹不存在", ErrorFolderNotFound.MsgIn("zh"))
	assert.Equal(t, "Folder not found", ErrorFolderNotFound.MsgIn("fr"))
	assert.Equal(t, "CycleError", KindCycle.String())
}
