package service

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/fast-note-service/pkg/code"
	"github.com/haierkeys/fast-note-service/pkg/writequeue"

	"gorm.io/gorm"
)

// mapError converts storage errors into response codes. notFound and
// conflict are used for gorm.ErrRecordNotFound and gorm.ErrDuplicatedKey.
// mapError 将存储层错误转换为响应码
func mapError(err error, notFound, conflict *code.Code) error {
	if err == nil {
		return nil
	}

	var c *code.Code
	if errors.As(err, &c) {
		return c
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey) && conflict != nil:
		return conflict
	case isUnavailable(err):
		return code.ErrorStorageUnavailable.WithDetails(err.Error())
	}
	return code.ErrorDBQuery.WithDetails(err.Error())
}

func isUnavailable(err error) bool {
	if errors.Is(err, writequeue.ErrWriteTimeout) ||
		errors.Is(err, writequeue.ErrWriteQueueFull) ||
		errors.Is(err, writequeue.ErrWriteQueueClosed) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

func folderError(err error) error {
	return mapError(err, code.ErrorFolderNotFound, code.ErrorFolderNameExist)
}

func noteError(err error) error {
	return mapError(err, code.ErrorNoteNotFound, nil)
}
