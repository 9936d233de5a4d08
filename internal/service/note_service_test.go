package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/fast-note-service/internal/dto"
	"github.com/haierkeys/fast-note-service/pkg/code"
	"github.com/haierkeys/fast-note-service/pkg/util"
	"github.com/haierkeys/fast-note-service/pkg/writequeue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteService_Create(t *testing.T) {
	env := newTestEnv(t)
	id := env.newUser(t)
	ctx := context.Background()

	n, err := env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: "  Meeting notes. Discuss the roadmap  "})
	require.NoError(t, err)
	assert.Equal(t, "Meeting notes.", n.Title)
	assert.Equal(t, "Meeting notes. Discuss the roadmap", n.Content)
	assert.Equal(t, int64(5), n.WordCount)
	assert.False(t, n.IsPinned)
	assert.Nil(t, n.PinnedAt)
	assert.Nil(t, n.FolderID)

	n, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: "body", Title: ptr("  Explicit  "), IsPinned: true})
	require.NoError(t, err)
	assert.Equal(t, "Explicit", n.Title)
	assert.True(t, n.IsPinned)
	assert.NotNil(t, n.PinnedAt)

	// 空白标题视为未提供
	n, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: "fallback title", Title: ptr("   ")})
	require.NoError(t, err)
	assert.Equal(t, "fallback title", n.Title)

	long := strings.Repeat("word ", 30)
	n, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: long})
	require.NoError(t, err)
	assert.Equal(t, util.SynthesizeTitle(long), n.Title)
	assert.True(t, strings.HasSuffix(n.Title, "..."))
	assert.LessOrEqual(t, util.RuneLen(n.Title), 53)

	_, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: " \n\t "})
	assertCode(t, code.ErrorNoteContentEmpty, err)
	assert.Equal(t, code.KindValidation, code.KindOf(err))

	_, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: "x", Title: ptr(strings.Repeat("t", 201))})
	assertCode(t, code.ErrorNoteTitleInvalid, err)

	other := env.mustFolder(t, env.newUser(t), "Theirs", nil)
	_, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: "x", FolderID: &other.ID})
	assertCode(t, code.ErrorFolderNotFound, err)

	mine := env.mustFolder(t, id, "Mine", nil)
	n, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: "x", FolderID: &mine.ID})
	require.NoError(t, err)
	assert.Equal(t, mine.ID, *n.FolderID)
}

func TestNoteService_UpdateKeepsTitle(t *testing.T) {
	env := newTestEnv(t)
	id := env.newUser(t)
	ctx := context.Background()

	n := env.mustNote(t, id, "First line. More text", nil)
	require.Equal(t, "First line.", n.Title)

	u, err := env.notes.Update(ctx, id, &dto.NoteUpdateRequest{ID: n.ID, Content: ptr("Completely different content here")})
	require.NoError(t, err)
	assert.Equal(t, "First line.", u.Title)
	assert.Equal(t, "Completely different content here", u.Content)
	assert.Equal(t, int64(4), u.WordCount)

	u, err = env.notes.Update(ctx, id, &dto.NoteUpdateRequest{ID: n.ID, Title: ptr(" Renamed ")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.Title)
	assert.Equal(t, "Completely different content here", u.Content)

	_, err = env.notes.Update(ctx, id, &dto.NoteUpdateRequest{ID: n.ID, Title: ptr("  ")})
	assertCode(t, code.ErrorNoteTitleInvalid, err)
	_, err = env.notes.Update(ctx, id, &dto.NoteUpdateRequest{ID: n.ID, Content: ptr("")})
	assertCode(t, code.ErrorNoteContentEmpty, err)

	_, err = env.notes.Update(ctx, env.newUser(t), &dto.NoteUpdateRequest{ID: n.ID, Title: ptr("hijack")})
	assertCode(t, code.ErrorNoteNotFound, err)
}

func TestNoteService_TogglePin(t *testing.T) {
	env := newTestEnv(t)
	id := env.newUser(t)
	ctx := context.Background()
	n := env.mustNote(t, id, "pin me", nil)

	p, err := env.notes.TogglePin(ctx, id, &dto.NotePinRequest{ID: n.ID})
	require.NoError(t, err)
	assert.True(t, p.IsPinned)
	require.NotNil(t, p.PinnedAt)

	p, err = env.notes.TogglePin(ctx, id, &dto.NotePinRequest{ID: n.ID})
	require.NoError(t, err)
	assert.False(t, p.IsPinned)
	assert.Nil(t, p.PinnedAt)

	_, err = env.notes.TogglePin(ctx, id, &dto.NotePinRequest{ID: "missing"})
	assertCode(t, code.ErrorNoteNotFound, err)
}

func TestNoteService_ConcurrentViewsAreCounted(t *testing.T) {
	env := newTestEnv(t)
	id := env.newUser(t)
	ctx := context.Background()
	n := env.mustNote(t, id, "popular", nil)

	const viewers = 30
	var wg sync.WaitGroup
	for i := 0; i < viewers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.notes.View(ctx, id, &dto.NoteGetRequest{ID: n.ID})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := env.notes.View(ctx, id, &dto.NoteGetRequest{ID: n.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(viewers+1), got.ViewCount)

	_, err = env.notes.View(ctx, env.newUser(t), &dto.NoteGetRequest{ID: n.ID})
	assertCode(t, code.ErrorNoteNotFound, err)
}

func TestNoteService_Search(t *testing.T) {
	env := newTestEnv(t)
	alice := env.newUser(t)
	bob := env.newUser(t)
	ctx := context.Background()

	a1 := env.mustNote(t, alice, "Kubernetes deployment checklist", nil)
	env.mustNote(t, alice, "Weekend hiking plan", nil)
	env.mustNote(t, bob, "Kubernetes secrets for bob", nil)

	res, total, err := env.notes.Search(ctx, alice, &dto.NoteSearchRequest{Query: "  kubernetes "}, pager(10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, res, 1)
	assert.Equal(t, a1.ID, res[0].ID)

	res, total, err = env.notes.Search(ctx, bob, &dto.NoteSearchRequest{Query: "hiking"}, pager(10))
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, res)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, _, err = env.notes.Search(ctx, alice, &dto.NoteSearchRequest{Query: q}, pager(10))
		assertCode(t, code.ErrorSearchQueryEmpty, err)
	}

	// FTS 语法字符按普通文本处理
	_, _, err = env.notes.Search(ctx, alice, &dto.NoteSearchRequest{Query: `"unbalanced AND (`}, pager(10))
	assert.NoError(t, err)
}

func TestNoteService_MoveDeleteAndList(t *testing.T) {
	env := newTestEnv(t)
	id := env.newUser(t)
	ctx := context.Background()

	folder := env.mustFolder(t, id, "Inbox", nil)
	n1 := env.mustNote(t, id, "first", nil)
	n2 := env.mustNote(t, id, "second", nil)

	m, err := env.notes.Move(ctx, id, &dto.NoteMoveRequest{ID: n1.ID, FolderID: &folder.ID})
	require.NoError(t, err)
	assert.Equal(t, folder.ID, *m.FolderID)

	theirs := env.mustFolder(t, env.newUser(t), "Theirs", nil)
	_, err = env.notes.Move(ctx, id, &dto.NoteMoveRequest{ID: n1.ID, FolderID: &theirs.ID})
	assertCode(t, code.ErrorFolderNotFound, err)

	list, total, err := env.notes.List(ctx, id, &dto.NoteListRequest{FolderID: folder.ID}, pager(10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, n1.ID, list[0].ID)

	_, _, err = env.notes.List(ctx, id, &dto.NoteListRequest{FolderID: theirs.ID}, pager(10))
	assertCode(t, code.ErrorFolderNotFound, err)

	_, err = env.notes.TogglePin(ctx, id, &dto.NotePinRequest{ID: n2.ID})
	require.NoError(t, err)
	list, total, err = env.notes.List(ctx, id, &dto.NoteListRequest{}, pager(10))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, n2.ID, list[0].ID)

	list, _, err = env.notes.List(ctx, id, &dto.NoteListRequest{Unfiled: true}, pager(10))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, n2.ID, list[0].ID)

	m, err = env.notes.Move(ctx, id, &dto.NoteMoveRequest{ID: n1.ID})
	require.NoError(t, err)
	assert.Nil(t, m.FolderID)

	require.NoError(t, env.notes.Delete(ctx, id, &dto.NoteDeleteRequest{ID: n1.ID}))
	_, err = env.notes.View(ctx, id, &dto.NoteGetRequest{ID: n1.ID})
	assertCode(t, code.ErrorNoteNotFound, err)
	assertCode(t, code.ErrorNoteNotFound, env.notes.Delete(ctx, id, &dto.NoteDeleteRequest{ID: n1.ID}))
}

func TestNoteService_WriteTimeoutIsUnavailableAndNotCommitted(t *testing.T) {
	env := newTestEnvWithQueue(t, &writequeue.Config{WriteTimeout: 50 * time.Millisecond})
	id := env.newUser(t)
	uid, err := id.UID()
	require.NoError(t, err)
	ctx := context.Background()

	// 占住该用户的写队列，使后续写操作排队超时
	started := make(chan struct{})
	release := make(chan struct{})
	blocked := make(chan struct{})
	go func() {
		defer close(blocked)
		_ = env.dao.WriteQueue().Execute(ctx, uid, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	_, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: "queued too long"})
	close(release)
	<-blocked
	require.Error(t, err)
	assert.Equal(t, code.KindUnavailable, code.KindOf(err))
	assert.ErrorIs(t, err, code.ErrorStorageUnavailable)

	_, total, err := env.notes.List(ctx, id, &dto.NoteListRequest{}, pager(10))
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	// 可重试：队列空闲后同样的写入成功
	_, err = env.notes.Create(ctx, id, &dto.NoteCreateRequest{Content: "queued too long"})
	require.NoError(t, err)
	_, total, err = env.notes.List(ctx, id, &dto.NoteListRequest{}, pager(10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestNoteService_ExpiredContextIsUnavailable(t *testing.T) {
	env := newTestEnv(t)
	id := env.newUser(t)
	n := env.mustNote(t, id, "original content", nil)

	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()

	_, err := env.notes.Create(expired, id, &dto.NoteCreateRequest{Content: "never stored"})
	assert.Equal(t, code.KindUnavailable, code.KindOf(err))

	_, err = env.notes.Update(expired, id, &dto.NoteUpdateRequest{ID: n.ID, Content: ptr("changed")})
	assert.Equal(t, code.KindUnavailable, code.KindOf(err))

	_, err = env.folders.Create(expired, id, &dto.FolderCreateRequest{Name: "Never"})
	assert.Equal(t, code.KindUnavailable, code.KindOf(err))

	ctx := context.Background()
	list, total, err := env.notes.List(ctx, id, &dto.NoteListRequest{}, pager(10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "original content", list[0].Content)

	folders, err := env.folders.List(ctx, id, &dto.FolderListRequest{})
	require.NoError(t, err)
	assert.Empty(t, folders)
}
