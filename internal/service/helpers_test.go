package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-service/internal/dao"
	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/internal/dto"
	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"
	"github.com/haierkeys/fast-note-service/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dao     *dao.Dao
	users   domain.UserRepository
	folders FolderService
	notes   NoteService
	account UserService
	tokens  app.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithQueue(t, nil)
}

// newTestEnvWithQueue builds the env with the given write queue settings, nil for defaults
func newTestEnvWithQueue(t *testing.T, wq *writequeue.Config) *testEnv {
	t.Helper()
	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type: dao.DialectSQLite,
		Path: filepath.Join(t.TempDir(), "service.db"),
	}, nil)
	require.NoError(t, err)

	d := dao.New(db, dao.WithWriteQueueManager(writequeue.New(wq, nil)))
	require.NoError(t, d.AutoMigrate())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.Close(ctx)
	})

	cfg := &ServiceConfig{User: UserServiceConfig{RegisterIsEnable: true}}
	users := dao.NewUserRepository(d)
	tokens := app.NewTokenManager(app.TokenConfig{SecretKey: "test-secret"})
	return &testEnv{
		dao:     d,
		users:   users,
		folders: NewFolderService(users, dao.NewFolderRepository(d), nil, cfg),
		notes:   NewNoteService(users, dao.NewNoteRepository(d), nil, cfg),
		account: NewUserService(users, tokens, nil, cfg),
		tokens:  tokens,
	}
}

var userSeq atomic.Int64

// newUser registers an active user and returns its identity
func (e *testEnv) newUser(t *testing.T) app.Identity {
	t.Helper()
	u, err := e.users.Create(context.Background(), &domain.User{
		Email:       fmt.Sprintf("user%d@example.com", userSeq.Add(1)),
		Password:    "digest",
		DisplayName: "tester",
		IsActive:    true,
	})
	require.NoError(t, err)
	return app.Authenticated(u.UID)
}

func (e *testEnv) mustFolder(t *testing.T, id app.Identity, name string, parentID *string) *dto.FolderDTO {
	t.Helper()
	f, err := e.folders.Create(context.Background(), id, &dto.FolderCreateRequest{Name: name, ParentID: parentID})
	require.NoError(t, err)
	return f
}

func (e *testEnv) mustNote(t *testing.T, id app.Identity, content string, folderID *string) *dto.NoteDTO {
	t.Helper()
	n, err := e.notes.Create(context.Background(), id, &dto.NoteCreateRequest{Content: content, FolderID: folderID})
	require.NoError(t, err)
	return n
}

func assertCode(t *testing.T, want *code.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, want, "got %v", err)
}

func ptr[T any](v T) *T {
	return &v
}

func pager(size int) *app.Pager {
	return &app.Pager{Page: 1, PageSize: size}
}
