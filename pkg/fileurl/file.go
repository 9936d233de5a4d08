// Package fileurl 文件路径辅助函数
package fileurl

import (
	"os"
	"path/filepath"
)

// IsDir determines if the given path is a directory
// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist reports whether dst exists
// IsExist 判断文件或目录是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil || !os.IsNotExist(err)
}

// CreatePath creates the parent directory of the file path dst
// CreatePath 创建文件路径 dst 所在的目录
func CreatePath(dst string, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	if IsDir(dir) {
		return nil
	}
	return os.MkdirAll(dir, perm)
}

// WriteFileIfMissing writes data to dst only when dst does not exist, creating parent directories
// WriteFileIfMissing 仅当 dst 不存在时写入，并创建父目录
func WriteFileIfMissing(dst string, data []byte, perm os.FileMode) (bool, error) {
	if IsExist(dst) {
		return false, nil
	}
	if err := CreatePath(dst, 0755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, err
	}
	return true, f.Close()
}
