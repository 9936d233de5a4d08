package service

import (
	"context"
	"strings"
	"time"

	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/internal/dto"
	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"
	"github.com/haierkeys/fast-note-service/pkg/logger"
	"github.com/haierkeys/fast-note-service/pkg/timex"
	"github.com/haierkeys/fast-note-service/pkg/util"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// NoteService 笔记业务服务接口
type NoteService interface {
	Create(ctx context.Context, id app.Identity, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)
	// Update 更新内容或标题；仅修改内容时不重新生成标题
	Update(ctx context.Context, id app.Identity, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error)
	Move(ctx context.Context, id app.Identity, params *dto.NoteMoveRequest) (*dto.NoteDTO, error)
	TogglePin(ctx context.Context, id app.Identity, params *dto.NotePinRequest) (*dto.NoteDTO, error)
	Delete(ctx context.Context, id app.Identity, params *dto.NoteDeleteRequest) error
	// View 增加浏览数并返回笔记
	View(ctx context.Context, id app.Identity, params *dto.NoteGetRequest) (*dto.NoteDTO, error)
	List(ctx context.Context, id app.Identity, params *dto.NoteListRequest, pager *app.Pager) ([]*dto.NoteDTO, int, error)
	Search(ctx context.Context, id app.Identity, params *dto.NoteSearchRequest, pager *app.Pager) ([]*dto.NoteDTO, int, error)
}

type noteService struct {
	guard    identityGuard
	noteRepo domain.NoteRepository
	logger   *zap.Logger
	config   *ServiceConfig
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(userRepo domain.UserRepository, noteRepo domain.NoteRepository, logger *zap.Logger, config *ServiceConfig) NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &noteService{
		guard:    identityGuard{users: userRepo},
		noteRepo: noteRepo,
		logger:   logger,
		config:   config,
	}
}

func (s *noteService) domainToDTO(n *domain.Note) *dto.NoteDTO {
	if n == nil {
		return nil
	}
	d := &dto.NoteDTO{}
	_ = copier.Copy(d, n)
	d.PinnedAt = timex.Ptr(n.PinnedAt)
	d.UpdatedAt = timex.Time(n.UpdatedAt)
	d.CreatedAt = timex.Time(n.CreatedAt)
	return d
}

func (s *noteService) domainsToDTO(ns []*domain.Note) []*dto.NoteDTO {
	res := make([]*dto.NoteDTO, 0, len(ns))
	for _, n := range ns {
		res = append(res, s.domainToDTO(n))
	}
	return res
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", code.ErrorNoteContentEmpty
	}
	return content, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if n := util.RuneLen(title); n == 0 || n > domain.NoteTitleMaxLength {
		return "", code.ErrorNoteTitleInvalid
	}
	return title, nil
}

// checkFolder 目标文件夹必须属于调用者
func checkFolder(ctx context.Context, r domain.NoteReader, uid string, folderID *string) error {
	if folderID == nil {
		return nil
	}
	ok, err := r.FolderExists(ctx, *folderID, uid)
	if err != nil {
		return err
	}
	if !ok {
		return code.ErrorFolderNotFound
	}
	return nil
}

func (s *noteService) Create(ctx context.Context, id app.Identity, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := validateContent(params.Content)
	if err != nil {
		return nil, err
	}

	var title string
	if params.Title != nil && strings.TrimSpace(*params.Title) != "" {
		if title, err = validateTitle(*params.Title); err != nil {
			return nil, err
		}
	} else {
		title = util.SynthesizeTitle(content)
	}
	folderID := optionalID(params.FolderID)

	note, err := s.noteRepo.Create(ctx, uid, func(r domain.NoteReader) (*domain.Note, error) {
		if err := checkFolder(ctx, r, uid, folderID); err != nil {
			return nil, err
		}
		n := &domain.Note{
			FolderID:  folderID,
			Title:     title,
			Content:   content,
			WordCount: int64(util.WordCount(content)),
		}
		if params.IsPinned {
			now := time.Now()
			n.IsPinned, n.PinnedAt = true, &now
		}
		return n, nil
	})
	if err != nil {
		return nil, noteError(err)
	}

	s.logger.Info("note created",
		zap.String(logger.FieldUID, uid),
		zap.String(logger.FieldNoteID, note.ID),
	)
	return s.domainToDTO(note), nil
}

func (s *noteService) Update(ctx context.Context, id app.Identity, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	var content, title string
	if params.Content != nil {
		if content, err = validateContent(*params.Content); err != nil {
			return nil, err
		}
	}
	if params.Title != nil {
		if title, err = validateTitle(*params.Title); err != nil {
			return nil, err
		}
	}

	note, err := s.noteRepo.Update(ctx, params.ID, uid, func(cur *domain.Note, _ domain.NoteReader) error {
		if params.Content != nil {
			cur.Content = content
			cur.WordCount = int64(util.WordCount(content))
		}
		if params.Title != nil {
			cur.Title = title
		}
		return nil
	})
	if err != nil {
		return nil, noteError(err)
	}
	return s.domainToDTO(note), nil
}

func (s *noteService) Move(ctx context.Context, id app.Identity, params *dto.NoteMoveRequest) (*dto.NoteDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	folderID := optionalID(params.FolderID)

	note, err := s.noteRepo.Update(ctx, params.ID, uid, func(cur *domain.Note, r domain.NoteReader) error {
		if err := checkFolder(ctx, r, uid, folderID); err != nil {
			return err
		}
		cur.FolderID = folderID
		return nil
	})
	if err != nil {
		return nil, noteError(err)
	}
	return s.domainToDTO(note), nil
}

func (s *noteService) TogglePin(ctx context.Context, id app.Identity, params *dto.NotePinRequest) (*dto.NoteDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	note, err := s.noteRepo.Update(ctx, params.ID, uid, func(cur *domain.Note, _ domain.NoteReader) error {
		if cur.IsPinned {
			cur.IsPinned, cur.PinnedAt = false, nil
		} else {
			now := time.Now()
			cur.IsPinned, cur.PinnedAt = true, &now
		}
		return nil
	})
	if err != nil {
		return nil, noteError(err)
	}
	return s.domainToDTO(note), nil
}

func (s *noteService) Delete(ctx context.Context, id app.Identity, params *dto.NoteDeleteRequest) error {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return err
	}
	if err := s.noteRepo.Delete(ctx, params.ID, uid); err != nil {
		return noteError(err)
	}
	s.logger.Info("note deleted",
		zap.String(logger.FieldUID, uid),
		zap.String(logger.FieldNoteID, params.ID),
	)
	return nil
}

func (s *noteService) View(ctx context.Context, id app.Identity, params *dto.NoteGetRequest) (*dto.NoteDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	note, err := s.noteRepo.IncrementViews(ctx, params.ID, uid)
	if err != nil {
		return nil, noteError(err)
	}
	return s.domainToDTO(note), nil
}

func (s *noteService) List(ctx context.Context, id app.Identity, params *dto.NoteListRequest, pager *app.Pager) ([]*dto.NoteDTO, int, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	filter := domain.NoteListFilter{
		Unfiled:    params.Unfiled,
		PinnedOnly: params.PinnedOnly,
		Limit:      pager.PageSize,
		Offset:     app.GetPageOffset(pager.Page, pager.PageSize),
	}
	if folderID := optionalID(&params.FolderID); folderID != nil {
		ok, err := s.noteRepo.FolderExists(ctx, *folderID, uid)
		if err != nil {
			return nil, 0, noteError(err)
		}
		if !ok {
			return nil, 0, code.ErrorFolderNotFound
		}
		filter.FolderID = folderID
	}

	notes, total, err := s.noteRepo.List(ctx, uid, filter)
	if err != nil {
		return nil, 0, noteError(err)
	}
	return s.domainsToDTO(notes), int(total), nil
}

func (s *noteService) Search(ctx context.Context, id app.Identity, params *dto.NoteSearchRequest, pager *app.Pager) ([]*dto.NoteDTO, int, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nil, 0, code.ErrorSearchQueryEmpty
	}

	notes, total, err := s.noteRepo.Search(ctx, uid, query, pager.PageSize, app.GetPageOffset(pager.Page, pager.PageSize))
	if err != nil {
		return nil, 0, noteError(err)
	}
	return s.domainsToDTO(notes), int(total), nil
}
