package service

import (
	"context"
	"testing"

	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/internal/dto"
	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"

	"github.com/stretchr/testify/assert"
)

// Embedded nil interfaces panic on any call, so a passing test proves no
// repository method was reached.
type untouchedUserRepo struct{ domain.UserRepository }
type untouchedFolderRepo struct{ domain.FolderRepository }
type untouchedNoteRepo struct{ domain.NoteRepository }

func TestAnonymousFailsBeforeStorage(t *testing.T) {
	users := untouchedUserRepo{}
	folders := NewFolderService(users, untouchedFolderRepo{}, nil, nil)
	notes := NewNoteService(users, untouchedNoteRepo{}, nil, nil)
	account := NewUserService(users, app.NewTokenManager(app.TokenConfig{SecretKey: "k"}), nil, nil)

	ctx := context.Background()
	anon := app.Anonymous()

	calls := map[string]func() error{
		"folder.create": func() error {
			_, err := folders.Create(ctx, anon, &dto.FolderCreateRequest{Name: "x"})
			return err
		},
		"folder.default": func() error { _, err := folders.EnsureDefault(ctx, anon); return err },
		"folder.update": func() error {
			_, err := folders.Update(ctx, anon, &dto.FolderUpdateRequest{ID: "f", Name: ptr("y")})
			return err
		},
		// 非法输入同样先返回身份验证失败
		"folder.update.invalid-name": func() error {
			_, err := folders.Update(ctx, anon, &dto.FolderUpdateRequest{ID: "f", Name: ptr("")})
			return err
		},
		"folder.create.invalid-name": func() error {
			_, err := folders.Create(ctx, anon, &dto.FolderCreateRequest{Name: "   "})
			return err
		},
		"note.create.empty": func() error {
			_, err := notes.Create(ctx, anon, &dto.NoteCreateRequest{Content: ""})
			return err
		},
		"note.update.empty": func() error {
			_, err := notes.Update(ctx, anon, &dto.NoteUpdateRequest{ID: "n", Content: ptr(" ")})
			return err
		},
		"note.search.empty": func() error {
			_, _, err := notes.Search(ctx, anon, &dto.NoteSearchRequest{Query: " "}, pager(10))
			return err
		},
		"folder.move": func() error {
			_, err := folders.Move(ctx, anon, &dto.FolderMoveRequest{ID: "f"})
			return err
		},
		"folder.delete": func() error {
			_, err := folders.Delete(ctx, anon, &dto.FolderDeleteRequest{ID: "f"})
			return err
		},
		"folder.get": func() error {
			_, err := folders.Get(ctx, anon, &dto.FolderGetRequest{ID: "f"})
			return err
		},
		"folder.list": func() error { _, err := folders.List(ctx, anon, &dto.FolderListRequest{}); return err },
		"folder.tree": func() error { _, err := folders.Tree(ctx, anon); return err },
		"note.create": func() error {
			_, err := notes.Create(ctx, anon, &dto.NoteCreateRequest{Content: "hello"})
			return err
		},
		"note.update": func() error {
			_, err := notes.Update(ctx, anon, &dto.NoteUpdateRequest{ID: "n", Content: ptr("x")})
			return err
		},
		"note.move": func() error {
			_, err := notes.Move(ctx, anon, &dto.NoteMoveRequest{ID: "n"})
			return err
		},
		"note.pin": func() error {
			_, err := notes.TogglePin(ctx, anon, &dto.NotePinRequest{ID: "n"})
			return err
		},
		"note.delete": func() error { return notes.Delete(ctx, anon, &dto.NoteDeleteRequest{ID: "n"}) },
		"note.view": func() error {
			_, err := notes.View(ctx, anon, &dto.NoteGetRequest{ID: "n"})
			return err
		},
		"note.list": func() error {
			_, _, err := notes.List(ctx, anon, &dto.NoteListRequest{}, pager(10))
			return err
		},
		"note.search": func() error {
			_, _, err := notes.Search(ctx, anon, &dto.NoteSearchRequest{Query: "x"}, pager(10))
			return err
		},
		"user.info": func() error { _, err := account.GetInfo(ctx, anon); return err },
		"user.password": func() error {
			return account.ChangePassword(ctx, anon, &dto.UserChangePasswordRequest{OldPassword: "a", Password: "b"})
		},
		"user.deactivate": func() error { return account.Deactivate(ctx, anon) },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			assertCode(t, code.ErrorUserAuthFailed, err)
			assert.Equal(t, code.KindAuthentication, code.KindOf(err))
		})
	}
}

func TestDeactivatedUserIsRejected(t *testing.T) {
	env := newTestEnv(t)
	id := env.newUser(t)
	ctx := context.Background()

	env.mustFolder(t, id, "Work", nil)
	assert.NoError(t, env.account.Deactivate(ctx, id))

	_, err := env.folders.List(ctx, id, &dto.FolderListRequest{})
	assertCode(t, code.ErrorUserAuthFailed, err)
	_, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: "hi"})
	assertCode(t, code.ErrorUserAuthFailed, err)

	// 不存在的用户同样视为认证失败
	_, err = env.folders.Tree(ctx, app.Authenticated("no-such-user"))
	assertCode(t, code.ErrorUserAuthFailed, err)
}
