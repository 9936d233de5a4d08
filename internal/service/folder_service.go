package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/haierkeys/fast-note-service/internal/domain"
	"github.com/haierkeys/fast-note-service/internal/dto"
	"github.com/haierkeys/fast-note-service/pkg/app"
	"github.com/haierkeys/fast-note-service/pkg/code"
	"github.com/haierkeys/fast-note-service/pkg/logger"
	"github.com/haierkeys/fast-note-service/pkg/timex"
	"github.com/haierkeys/fast-note-service/pkg/util"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// FolderService 文件夹业务服务接口
type FolderService interface {
	Create(ctx context.Context, id app.Identity, params *dto.FolderCreateRequest) (*dto.FolderDTO, error)
	// EnsureDefault 返回默认文件夹，不存在时创建
	EnsureDefault(ctx context.Context, id app.Identity) (*dto.FolderDTO, error)
	Update(ctx context.Context, id app.Identity, params *dto.FolderUpdateRequest) (*dto.FolderDTO, error)
	Move(ctx context.Context, id app.Identity, params *dto.FolderMoveRequest) (*dto.FolderDTO, error)
	Delete(ctx context.Context, id app.Identity, params *dto.FolderDeleteRequest) (*dto.FolderDeleteDTO, error)
	Get(ctx context.Context, id app.Identity, params *dto.FolderGetRequest) (*dto.FolderDTO, error)
	List(ctx context.Context, id app.Identity, params *dto.FolderListRequest) ([]*dto.FolderDTO, error)
	Tree(ctx context.Context, id app.Identity) ([]*dto.FolderTreeNode, error)
}

type folderService struct {
	guard      identityGuard
	folderRepo domain.FolderRepository
	logger     *zap.Logger
	config     *ServiceConfig
	sf         singleflight.Group
}

// errDefaultExists stops EnsureDefault's insert when another writer created the default first
var errDefaultExists = errors.New("default folder exists")

// NewFolderService 创建 FolderService 实例
func NewFolderService(userRepo domain.UserRepository, folderRepo domain.FolderRepository, logger *zap.Logger, config *ServiceConfig) FolderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &folderService{
		guard:      identityGuard{users: userRepo},
		folderRepo: folderRepo,
		logger:     logger,
		config:     config,
	}
}

func (s *folderService) domainToDTO(f *domain.Folder) *dto.FolderDTO {
	if f == nil {
		return nil
	}
	d := &dto.FolderDTO{}
	_ = copier.Copy(d, f)
	d.UpdatedAt = timex.Time(f.UpdatedAt)
	d.CreatedAt = timex.Time(f.CreatedAt)
	return d
}

// validateFolderName 名称去除首尾空白后长度须为 1..100
func validateFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := util.RuneLen(name); n == 0 || n > domain.FolderNameMaxLength {
		return "", code.ErrorFolderNameInvalid
	}
	return name, nil
}

// optionalID treats nil and blank ids alike
func optionalID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}

// checkNameFree fails with ErrorFolderNameExist when a sibling other than selfID owns name
func checkNameFree(ctx context.Context, r domain.FolderReader, uid string, parentID *string, name, selfID string) error {
	existing, err := r.GetByName(ctx, uid, parentID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return code.ErrorFolderNameExist
	}
	return nil
}

// checkCycle walks from parent to the root, at most count(folders) steps, and
// fails with ErrorFolderCycle when folderID is met or the walk does not end.
// checkCycle 从新父级向上遍历，步数不超过文件夹总数
func checkCycle(ctx context.Context, r domain.FolderReader, uid, folderID string, parent *domain.Folder) error {
	total, err := r.Count(ctx, uid)
	if err != nil {
		return err
	}
	node := parent
	for steps := int64(0); ; steps++ {
		if node.ID == folderID {
			return code.ErrorFolderCycle
		}
		if node.ParentID == nil {
			return nil
		}
		if steps >= total {
			return code.ErrorFolderCycle
		}
		next, err := r.GetByID(ctx, *node.ParentID, uid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		node = next
	}
}

func (s *folderService) Create(ctx context.Context, id app.Identity, params *dto.FolderCreateRequest) (*dto.FolderDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := validateFolderName(params.Name)
	if err != nil {
		return nil, err
	}
	parentID := optionalID(params.ParentID)

	folder, err := s.folderRepo.Create(ctx, uid, func(r domain.FolderReader) (*domain.Folder, error) {
		if parentID != nil {
			if _, err := r.GetByID(ctx, *parentID, uid); err != nil {
				return nil, folderError(err)
			}
		}
		if err := checkNameFree(ctx, r, uid, parentID, name, ""); err != nil {
			return nil, err
		}

		f := &domain.Folder{
			ParentID:    parentID,
			Name:        name,
			Description: params.Description,
			Color:       params.Color,
			Icon:        params.Icon,
		}
		if params.Position != nil {
			f.Position = *params.Position
		} else {
			maxPos, err := r.MaxPosition(ctx, uid, parentID)
			if err != nil {
				return nil, err
			}
			f.Position = maxPos + 1
		}

		// 用户尚无默认文件夹时，新文件夹成为默认
		if _, err := r.GetDefault(ctx, uid); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			f.IsDefault = true
		}
		return f, nil
	})
	if err != nil {
		return nil, folderError(err)
	}

	s.logger.Info("folder created",
		zap.String(logger.FieldUID, uid),
		zap.String(logger.FieldFolderID, folder.ID),
	)
	return s.domainToDTO(folder), nil
}

func (s *folderService) EnsureDefault(ctx context.Context, id app.Identity) (*dto.FolderDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.sf.Do(uid, func() (interface{}, error) {
		// 合并后的调用共享结果，不随首个请求取消
		ctx := context.WithoutCancel(ctx)
		if f, err := s.folderRepo.GetDefault(ctx, uid); err == nil {
			return f, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		base := s.config.defaultFolderName()
		f, err := s.folderRepo.Create(ctx, uid, func(r domain.FolderReader) (*domain.Folder, error) {
			if _, err := r.GetDefault(ctx, uid); err == nil {
				return nil, errDefaultExists
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}

			total, err := r.Count(ctx, uid)
			if err != nil {
				return nil, err
			}
			name := base
			for n := 2; ; n++ {
				if _, err := r.GetByName(ctx, uid, nil, name); errors.Is(err, gorm.ErrRecordNotFound) {
					break
				} else if err != nil {
					return nil, err
				}
				if int64(n) > total+1 {
					return nil, code.ErrorFolderNameExist
				}
				name = fmt.Sprintf("%s (%d)", base, n)
			}

			maxPos, err := r.MaxPosition(ctx, uid, nil)
			if err != nil {
				return nil, err
			}
			return &domain.Folder{Name: name, Position: maxPos + 1, IsDefault: true}, nil
		})
		if errors.Is(err, errDefaultExists) {
			return s.folderRepo.GetDefault(ctx, uid)
		}
		if err == nil {
			s.logger.Info("default folder created",
				zap.String(logger.FieldUID, uid),
				zap.String(logger.FieldFolderID, f.ID),
			)
		}
		return f, err
	})
	if err != nil {
		return nil, folderError(err)
	}
	return s.domainToDTO(v.(*domain.Folder)), nil
}

// folderChange 文件夹修改内容，nil 字段保持不变
type folderChange struct {
	name        *string
	description *string
	color       *string
	icon        *string
	reparent    bool
	parentID    *string // target parent when reparent, nil for root
	position    *int
}

func (s *folderService) Update(ctx context.Context, id app.Identity, params *dto.FolderUpdateRequest) (*dto.FolderDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	change := folderChange{
		description: params.Description,
		color:       params.Color,
		icon:        params.Icon,
		position:    params.Position,
	}
	if params.Name != nil {
		name, err := validateFolderName(*params.Name)
		if err != nil {
			return nil, err
		}
		change.name = &name
	}
	switch {
	case params.ClearParent:
		change.reparent = true
	case params.ParentID != nil:
		change.reparent = true
		change.parentID = optionalID(params.ParentID)
	}
	return s.apply(ctx, uid, params.ID, change)
}

func (s *folderService) Move(ctx context.Context, id app.Identity, params *dto.FolderMoveRequest) (*dto.FolderDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, uid, params.ID, folderChange{
		reparent: true,
		parentID: optionalID(params.ParentID),
		position: params.Position,
	})
}

// apply runs read, validate and write of one folder change in a single transaction
// apply 在同一事务中完成读取、校验与写入
func (s *folderService) apply(ctx context.Context, uid, folderID string, change folderChange) (*dto.FolderDTO, error) {
	folder, err := s.folderRepo.Update(ctx, folderID, uid, func(cur *domain.Folder, r domain.FolderReader) error {
		renamed := false
		if change.name != nil && *change.name != cur.Name {
			cur.Name = *change.name
			renamed = true
		}
		if change.description != nil {
			cur.Description = *change.description
		}
		if change.color != nil {
			cur.Color = *change.color
		}
		if change.icon != nil {
			cur.Icon = *change.icon
		}

		moved := false
		if change.reparent && cur.ParentKey() != keyOf(change.parentID) {
			if change.parentID != nil {
				if *change.parentID == cur.ID {
					return code.ErrorFolderCycle
				}
				parent, err := r.GetByID(ctx, *change.parentID, uid)
				if err != nil {
					return folderError(err)
				}
				if err := checkCycle(ctx, r, uid, cur.ID, parent); err != nil {
					return err
				}
			}
			cur.ParentID = change.parentID
			moved = true
		}

		if change.position != nil {
			cur.Position = *change.position
		} else if moved {
			maxPos, err := r.MaxPosition(ctx, uid, cur.ParentID)
			if err != nil {
				return err
			}
			cur.Position = maxPos + 1
		}

		if renamed || moved {
			return checkNameFree(ctx, r, uid, cur.ParentID, cur.Name, cur.ID)
		}
		return nil
	})
	if err != nil {
		return nil, folderError(err)
	}
	return s.domainToDTO(folder), nil
}

func keyOf(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

func (s *folderService) Delete(ctx context.Context, id app.Identity, params *dto.FolderDeleteRequest) (*dto.FolderDeleteDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.folderRepo.DeleteTree(ctx, params.ID, uid)
	if err != nil {
		return nil, folderError(err)
	}

	s.logger.Info("folder deleted",
		zap.String(logger.FieldUID, uid),
		zap.String(logger.FieldFolderID, params.ID),
		zap.Int("folders", len(res.DeletedFolderIDs)),
		zap.Int64("detachedNotes", res.DetachedNotes),
		zap.String("promotedDefault", res.PromotedDefaultID),
	)
	return &dto.FolderDeleteDTO{
		DeletedFolders: int64(len(res.DeletedFolderIDs)),
		DetachedNotes:  res.DetachedNotes,
	}, nil
}

func (s *folderService) Get(ctx context.Context, id app.Identity, params *dto.FolderGetRequest) (*dto.FolderDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := s.folderRepo.GetByID(ctx, params.ID, uid)
	if err != nil {
		return nil, folderError(err)
	}
	children, err := s.folderRepo.ListChildren(ctx, uid, &f.ID)
	if err != nil {
		return nil, folderError(err)
	}
	counts, err := s.folderRepo.CountNotes(ctx, uid)
	if err != nil {
		return nil, folderError(err)
	}

	d := s.domainToDTO(f)
	d.ChildCount = int64(len(children))
	d.NoteCount = counts[f.ID]
	return d, nil
}

func (s *folderService) List(ctx context.Context, id app.Identity, params *dto.FolderListRequest) ([]*dto.FolderDTO, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	parentID := strings.TrimSpace(params.ParentID)
	if parentID != "" {
		if _, err := s.folderRepo.GetByID(ctx, parentID, uid); err != nil {
			return nil, folderError(err)
		}
	}

	dtos, err := s.listWithCounts(ctx, uid)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		return dtos, nil
	}
	res := make([]*dto.FolderDTO, 0)
	for _, d := range dtos {
		if d.ParentID != nil && *d.ParentID == parentID {
			res = append(res, d)
		}
	}
	return res, nil
}

// listWithCounts 返回全部文件夹并填充笔记数与子文件夹数
func (s *folderService) listWithCounts(ctx context.Context, uid string) ([]*dto.FolderDTO, error) {
	folders, err := s.folderRepo.List(ctx, uid)
	if err != nil {
		return nil, folderError(err)
	}
	counts, err := s.folderRepo.CountNotes(ctx, uid)
	if err != nil {
		return nil, folderError(err)
	}

	children := make(map[string]int64, len(folders))
	for _, f := range folders {
		if f.ParentID != nil {
			children[*f.ParentID]++
		}
	}

	res := make([]*dto.FolderDTO, 0, len(folders))
	for _, f := range folders {
		d := s.domainToDTO(f)
		d.NoteCount = counts[f.ID]
		d.ChildCount = children[f.ID]
		res = append(res, d)
	}
	return res, nil
}

func (s *folderService) Tree(ctx context.Context, id app.Identity) ([]*dto.FolderTreeNode, error) {
	uid, err := s.guard.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	dtos, err := s.listWithCounts(ctx, uid)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*dto.FolderTreeNode, len(dtos))
	for _, d := range dtos {
		nodes[d.ID] = &dto.FolderTreeNode{FolderDTO: *d, Children: []*dto.FolderTreeNode{}}
	}
	// dtos 已按 position 排序，按顺序挂载即可保持同级顺序
	roots := make([]*dto.FolderTreeNode, 0)
	for _, d := range dtos {
		node := nodes[d.ID]
		if d.ParentID != nil {
			if parent, ok := nodes[*d.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}
