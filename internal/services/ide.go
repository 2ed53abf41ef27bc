package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/bytesolver-backend/internal/clients/llm"
	"github.com/yungbote/bytesolver-backend/internal/data/db"
	"github.com/yungbote/bytesolver-backend/internal/data/repos"
	types "github.com/yungbote/bytesolver-backend/internal/domain"
	"github.com/yungbote/bytesolver-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/bytesolver-backend/internal/pkg/errors"
	"github.com/yungbote/bytesolver-backend/internal/pkg/logger"
	"github.com/yungbote/bytesolver-backend/internal/platform/apierr"
)

const (
	maxProjectNameChars = 100
	maxFileNameChars    = 255
	maxFileContentBytes = 512 * 1024
)

type CreateProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
}

type UpdateProjectInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
}

type ProjectDetail struct {
	Project *types.IdeProject `json:"project"`
	Files   []*types.IdeFile  `json:"files"`
}

type CreateFileInput struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

type UpdateFileInput struct {
	Name     *string `json:"name"`
	Content  *string `json:"content"`
	Language *string `json:"language"`
}

type ProjectState struct {
	LastOpenFileID *uuid.UUID `json:"lastOpenFileId"`
}

type IdeService interface {
	ListProjects(ctx context.Context) ([]*types.IdeProject, error)
	CreateProject(ctx context.Context, in CreateProjectInput) (*ProjectDetail, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (*ProjectDetail, error)
	UpdateProject(ctx context.Context, projectID uuid.UUID, in UpdateProjectInput) (*types.IdeProject, error)
	DeleteProject(ctx context.Context, projectID uuid.UUID) error

	ListFiles(ctx context.Context, projectID uuid.UUID) ([]*types.IdeFile, error)
	CreateFile(ctx context.Context, projectID uuid.UUID, in CreateFileInput) (*types.IdeFile, error)
	GetFile(ctx context.Context, projectID, fileID uuid.UUID) (*types.IdeFile, error)
	UpdateFile(ctx context.Context, projectID, fileID uuid.UUID, in UpdateFileInput) (*types.IdeFile, error)
	DeleteFile(ctx context.Context, projectID, fileID uuid.UUID) error

	GetState(ctx context.Context, projectID uuid.UUID) (*ProjectState, error)
	SetState(ctx context.Context, projectID uuid.UUID, lastOpenFileID *uuid.UUID) (*ProjectState, error)

	Assist(ctx context.Context, projectID uuid.UUID, in AssistInput) (*AssistResult, error)
	History(ctx context.Context, projectID uuid.UUID, mode string) ([]*types.ChatMessage, error)
}

type ideService struct {
	log         *logger.Logger
	tx          db.TxRunner
	projectRepo repos.IdeProjectRepo
	fileRepo    repos.IdeFileRepo
	sessionRepo repos.ChatSessionRepo
	messageRepo repos.ChatMessageRepo
	model       llm.Client
	now         Clock
}

func NewIdeService(
	log *logger.Logger,
	tx db.TxRunner,
	projectRepo repos.IdeProjectRepo,
	fileRepo repos.IdeFileRepo,
	sessionRepo repos.ChatSessionRepo,
	messageRepo repos.ChatMessageRepo,
	model llm.Client,
) IdeService {
	return &ideService{
		log:         log.With("service", "IdeService"),
		tx:          tx,
		projectRepo: projectRepo,
		fileRepo:    fileRepo,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		model:       model,
		now:         systemClock,
	}
}

func errDuplicatePath() error {
	return apierr.Conflict("A file with this name already exists in the project")
}

func (is *ideService) ListProjects(ctx context.Context) ([]*types.IdeProject, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := is.projectRepo.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*types.IdeProject{}
	}
	return out, nil
}

func (is *ideService) CreateProject(ctx context.Context, in CreateProjectInput) (*ProjectDetail, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.Validation("name is required")
	}
	if len([]rune(name)) > maxProjectNameChars {
		return nil, apierr.Validation("name is too long")
	}
	lang := defaultIdeLanguage
	if strings.TrimSpace(in.Language) != "" {
		var ok bool
		if lang, ok = normalizeIdeLanguage(in.Language); !ok {
			return nil, apierr.Validation("unsupported language")
		}
	}

	now := is.now().UTC()
	detail := &ProjectDetail{}
	err = is.tx.InTx(ctx, func(dbc dbctx.Context) error {
		p, err := is.projectRepo.Create(dbc, &types.IdeProject{
			ID:           uuid.New(),
			UserID:       userID,
			Name:         name,
			Description:  strings.TrimSpace(in.Description),
			Language:     lang,
			ChatSessions: datatypes.JSON([]byte(`{}`)),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		main := mainFileFor(lang)
		f, err := is.fileRepo.Create(dbc, &types.IdeFile{
			ID:        uuid.New(),
			ProjectID: p.ID,
			UserID:    userID,
			Name:      main,
			Path:      filePath(main),
			Content:   Boilerplate(lang),
			Language:  lang,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		if err := is.projectRepo.UpdateFields(dbc, userID, p.ID, map[string]any{"last_open_file_id": f.ID}); err != nil {
			return err
		}
		p.LastOpenFileID = &f.ID
		detail.Project = p
		detail.Files = []*types.IdeFile{f}
		return nil
	})
	if err != nil {
		return nil, err
	}
	is.log.Debug("IDE project created", "user_id", userID, "project_id", detail.Project.ID, "language", lang)
	return detail, nil
}

func (is *ideService) scope(ctx context.Context) (uuid.UUID, dbctx.Context, error) {
	userID, err := requireUser(ctx)
	return userID, dbctx.New(ctx), err
}

func (is *ideService) GetProject(ctx context.Context, projectID uuid.UUID) (*ProjectDetail, error) {
	userID, dbc, err := is.scope(ctx)
	if err != nil {
		return nil, err
	}
	p, err := is.projectRepo.GetForUser(dbc, userID, projectID)
	if err != nil {
		return nil, notFound(err, "Project")
	}
	files, err := is.fileRepo.ListByProject(dbc, p.ID)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []*types.IdeFile{}
	}
	return &ProjectDetail{Project: p, Files: files}, nil
}

func (is *ideService) UpdateProject(ctx context.Context, projectID uuid.UUID, in UpdateProjectInput) (*types.IdeProject, error) {
	userID, dbc, err := is.scope(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len([]rune(name)) > maxProjectNameChars {
			return nil, apierr.Validation("name must be 1-100 characters")
		}
		updates["name"] = name
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Language != nil {
		lang, ok := normalizeIdeLanguage(*in.Language)
		if !ok {
			return nil, apierr.Validation("unsupported language")
		}
		updates["language"] = lang
	}
	if err := is.projectRepo.UpdateFields(dbc, userID, projectID, updates); err != nil {
		return nil, notFound(err, "Project")
	}
	p, err := is.projectRepo.GetForUser(dbc, userID, projectID)
	if err != nil {
		return nil, notFound(err, "Project")
	}
	return p, nil
}

// DeleteProject removes the project, its files and its assistant sessions.
func (is *ideService) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	return is.tx.InTx(ctx, func(dbc dbctx.Context) error {
		p, err := is.projectRepo.GetForUser(dbc, userID, projectID)
		if err != nil {
			return notFound(err, "Project")
		}
		if err := is.projectRepo.Delete(dbc, userID, p.ID); err != nil {
			return notFound(err, "Project")
		}
		ids := sessionIDs(decodeSessionMap(p.ChatSessions))
		if len(ids) == 0 {
			return nil
		}
		return is.sessionRepo.DeleteByIDs(dbc, userID, ids)
	})
}

func (is *ideService) ListFiles(ctx context.Context, projectID uuid.UUID) ([]*types.IdeFile, error) {
	detail, err := is.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return detail.Files, nil
}

func validFileName(name string) error {
	switch {
	case name == "":
		return apierr.Validation("name is required")
	case len([]rune(name)) > maxFileNameChars:
		return apierr.Validation("name is too long")
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return apierr.Validation("name cannot contain path separators")
	}
	return nil
}

func (is *ideService) CreateFile(ctx context.Context, projectID uuid.UUID, in CreateFileInput) (*types.IdeFile, error) {
	userID, dbc, err := is.scope(ctx)
	if err != nil {
		return nil, err
	}
	p, err := is.projectRepo.GetForUser(dbc, userID, projectID)
	if err != nil {
		return nil, notFound(err, "Project")
	}
	name := strings.TrimSpace(in.Name)
	if err := validFileName(name); err != nil {
		return nil, err
	}
	if len(in.Content) > maxFileContentBytes {
		return nil, apierr.Validation("content is too large")
	}

	var lang string
	switch {
	case strings.TrimSpace(in.Language) != "":
		var ok bool
		if lang, ok = normalizeIdeLanguage(in.Language); !ok {
			return nil, apierr.Validation("unsupported language")
		}
		if !hasExtension(name) {
			name = withExtension(name, lang)
		}
	case hasExtension(name):
		lang = LanguageFromName(name)
	default:
		lang = p.Language
		name = withExtension(name, lang)
	}
	content := in.Content
	if content == "" {
		content = Boilerplate(lang)
	}

	now := is.now().UTC()
	f, err := is.fileRepo.Create(dbc, &types.IdeFile{
		ID:        uuid.New(),
		ProjectID: p.ID,
		UserID:    userID,
		Name:      name,
		Path:      filePath(name),
		Content:   content,
		Language:  lang,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, pkgerrors.ErrConflict) {
		return nil, errDuplicatePath()
	}
	if err != nil {
		return nil, err
	}
	// Bump updated_at so the project sorts first.
	_ = is.projectRepo.UpdateFields(dbc, userID, p.ID, map[string]any{})
	return f, nil
}

func hasExtension(name string) bool {
	i := strings.LastIndex(name, ".")
	return i > 0 && i < len(name)-1
}

func (is *ideService) GetFile(ctx context.Context, projectID, fileID uuid.UUID) (*types.IdeFile, error) {
	userID, dbc, err := is.scope(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := is.projectRepo.GetForUser(dbc, userID, projectID); err != nil {
		return nil, notFound(err, "Project")
	}
	f, err := is.fileRepo.GetInProject(dbc, projectID, fileID)
	if err != nil {
		return nil, notFound(err, "File")
	}
	return f, nil
}

// UpdateFile keeps name and language consistent: a language change without a
// new name renames the extension, and a rename without a language re-derives
// the language from the new extension.
func (is *ideService) UpdateFile(ctx context.Context, projectID, fileID uuid.UUID, in UpdateFileInput) (*types.IdeFile, error) {
	f, err := is.GetFile(ctx, projectID, fileID)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)

	name, lang := f.Name, f.Language
	if in.Language != nil {
		var ok bool
		if lang, ok = normalizeIdeLanguage(*in.Language); !ok {
			return nil, apierr.Validation("unsupported language")
		}
	}
	switch {
	case in.Name != nil:
		name = strings.TrimSpace(*in.Name)
		if err := validFileName(name); err != nil {
			return nil, err
		}
		switch {
		case !hasExtension(name):
			name = withExtension(name, lang)
		case in.Language == nil:
			lang = LanguageFromName(name)
		}
	case in.Language != nil && lang != f.Language:
		name = withExtension(name, lang)
	}

	updates := map[string]any{}
	if name != f.Name {
		updates["name"] = name
		updates["path"] = filePath(name)
	}
	if lang != f.Language {
		updates["language"] = lang
	}
	if in.Content != nil {
		if len(*in.Content) > maxFileContentBytes {
			return nil, apierr.Validation("content is too large")
		}
		updates["content"] = *in.Content
	}
	if err := is.fileRepo.UpdateFields(dbc, projectID, fileID, updates); err != nil {
		if errors.Is(err, pkgerrors.ErrConflict) {
			return nil, errDuplicatePath()
		}
		return nil, notFound(err, "File")
	}
	out, err := is.fileRepo.GetInProject(dbc, projectID, fileID)
	if err != nil {
		return nil, notFound(err, "File")
	}
	return out, nil
}

func (is *ideService) DeleteFile(ctx context.Context, projectID, fileID uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	return is.tx.InTx(ctx, func(dbc dbctx.Context) error {
		p, err := is.projectRepo.GetForUser(dbc, userID, projectID)
		if err != nil {
			return notFound(err, "Project")
		}
		if err := is.fileRepo.Delete(dbc, p.ID, fileID); err != nil {
			return notFound(err, "File")
		}
		if p.LastOpenFileID != nil && *p.LastOpenFileID == fileID {
			return is.projectRepo.UpdateFields(dbc, userID, p.ID, map[string]any{"last_open_file_id": nil})
		}
		return nil
	})
}

func (is *ideService) GetState(ctx context.Context, projectID uuid.UUID) (*ProjectState, error) {
	userID, dbc, err := is.scope(ctx)
	if err != nil {
		return nil, err
	}
	p, err := is.projectRepo.GetForUser(dbc, userID, projectID)
	if err != nil {
		return nil, notFound(err, "Project")
	}
	return &ProjectState{LastOpenFileID: p.LastOpenFileID}, nil
}

func (is *ideService) SetState(ctx context.Context, projectID uuid.UUID, lastOpenFileID *uuid.UUID) (*ProjectState, error) {
	userID, dbc, err := is.scope(ctx)
	if err != nil {
		return nil, err
	}
	p, err := is.projectRepo.GetForUser(dbc, userID, projectID)
	if err != nil {
		return nil, notFound(err, "Project")
	}
	var value any
	if lastOpenFileID != nil {
		if _, err := is.fileRepo.GetInProject(dbc, p.ID, *lastOpenFileID); err != nil {
			return nil, notFound(err, "File")
		}
		value = *lastOpenFileID
	}
	if err := is.projectRepo.UpdateFields(dbc, userID, p.ID, map[string]any{"last_open_file_id": value}); err != nil {
		return nil, notFound(err, "Project")
	}
	return &ProjectState{LastOpenFileID: lastOpenFileID}, nil
}

func decodeSessionMap(raw datatypes.JSON) map[string]string {
	out := map[string]string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func sessionIDs(m map[string]string) []uuid.UUID {
	var out []uuid.UUID
	for _, v := range m {
		if id, err := uuid.Parse(v); err == nil {
			out = append(out, id)
		}
	}
	return out
}
