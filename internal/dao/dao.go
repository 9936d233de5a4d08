// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/fast-note-service/internal/model"
	"github.com/haierkeys/fast-note-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	DialectSQLite   = "sqlite"
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

// DatabaseConfig 数据库连接配置
type DatabaseConfig struct {
	Type            string
	Path            string // sqlite file path
	UserName        string
	Password        string
	Host            string
	Name            string
	Charset         string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	Debug           bool // log every statement
}

// Dao 数据访问对象，持有连接与写队列
type Dao struct {
	db         *gorm.DB
	logger     *zap.Logger
	writeQueue *writequeue.Manager
}

// Option Dao 可选项
type Option func(*Dao)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = l
	}
}

// WithWriteQueueManager 设置写队列管理器
func WithWriteQueueManager(m *writequeue.Manager) Option {
	return func(d *Dao) {
		d.writeQueue = m
	}
}

// New 创建 Dao；未提供写队列时使用默认配置创建一个
func New(db *gorm.DB, opts ...Option) *Dao {
	d := &Dao{db: db}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.writeQueue == nil {
		d.writeQueue = writequeue.New(nil, d.logger)
	}
	return d
}

// DB 返回底层连接
func (d *Dao) DB() *gorm.DB {
	return d.db
}

// Dialect returns the gorm dialector name: sqlite, mysql or postgres
// Dialect 返回数据库方言名称
func (d *Dao) Dialect() string {
	return d.db.Dialector.Name()
}

// WriteQueue 返回写队列管理器
func (d *Dao) WriteQueue() *writequeue.Manager {
	return d.writeQueue
}

// ExecuteWrite runs fn in one transaction on uid's serialized write queue
// ExecuteWrite 在 uid 的串行写队列中以单个事务执行 fn
func (d *Dao) ExecuteWrite(ctx context.Context, uid string, fn func(tx *gorm.DB) error) error {
	return d.writeQueue.Execute(ctx, uid, func(opCtx context.Context) error {
		return d.db.WithContext(opCtx).Transaction(fn)
	})
}

// AutoMigrate 创建或更新表结构
func (d *Dao) AutoMigrate() error {
	return model.AutoMigrate(d.db)
}

// Close 关闭写队列与连接池
func (d *Dao) Close(ctx context.Context) error {
	qErr := d.writeQueue.Shutdown(ctx)
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	return qErr
}

// NewDBEngineWithConfig opens the database described by c
// NewDBEngineWithConfig 根据配置打开数据库连接
func NewDBEngineWithConfig(c DatabaseConfig, zl *zap.Logger) (*gorm.DB, error) {
	dialector, err := useDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(zl, c.Debug),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true, // 使用单数表名
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Minute * 10)
	}

	return db, nil
}

func useDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case DialectMySQL:
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=true&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			charset,
		)), nil
	case DialectPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		host, port := c.Host, "5432"
		if h, p, err := net.SplitHostPort(c.Host); err == nil {
			host, port = h, p
		}
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, c.UserName, c.Password, c.Name, sslMode,
		)), nil
	case DialectSQLite, "":
		if c.Path == "" {
			return nil, errors.New("database.path is required for sqlite")
		}
		if dir := filepath.Dir(c.Path); dir != "" {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create database dir")
			}
		}
		return sqlite.Open(SQLiteDSN(c.Path)), nil
	}
	return nil, errors.Errorf("unsupported database type %q", c.Type)
}

// SQLiteDSN appends the pragmas every sqlite connection needs
// SQLiteDSN 为 sqlite 连接追加必要的 pragma
func SQLiteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
}
