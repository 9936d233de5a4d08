package cmd

import (
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/haierkeys/fast-note-service/pkg/fileurl"
	"github.com/haierkeys/fast-note-service/pkg/util"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

// resolveConfig picks the first existing config file, creating config/config.yaml when none exists
// resolveConfig 选择第一个存在的配置文件，都不存在时创建 config/config.yaml
func resolveConfig() (string, error) {
	for _, p := range []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"} {
		if fileurl.IsExist(p) {
			return p, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config")
	p := "config/config.yaml"
	body := strings.Replace(configDefault, defaultSecretKey, util.GetRandomString(32), 1)

	created, err := fileurl.WriteFileIfMissing(p, []byte(body), 0600)
	if err != nil {
		return "", err
	}
	if created {
		bootstrapLogger.Info("config file auto create successfully", zap.String("path", p))
	}
	return p, nil
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port] [-m mode]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
					return
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if len(runEnv.config) == 0 {
				p, err := resolveConfig()
				if err != nil {
					bootstrapLogger.Error("config file auto create error", zap.Error(err))
					return
				}
				runEnv.config = p
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			// mu guards s, which the config watcher replaces on reload
			var mu sync.Mutex
			current := func() *Server {
				mu.Lock()
				defer mu.Unlock()
				return s
			}

			w := watcher.New()

			// Receive at most 1 event per polling cycle
			// 每个监听周期至多接收 1 个事件
			w.SetMaxEvents(1)

			// Only notify write events.
			// 只通知写入事件。
			w.FilterOps(watcher.Write)

			go func() {
				for {
					select {
					case event := <-w.Event:
						mu.Lock()
						if s != nil {
							s.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
							if err := s.Shutdown(); err != nil {
								s.logger.Error("shutdown before reload failed", zap.Error(err))
							}
						}

						// Re-initialize server
						// 重新初始化 server
						next, err := NewServer(runEnv)
						if err != nil {
							bootstrapLogger.Error("service restart err", zap.Error(err))
							s = nil
						} else {
							s = next
						}
						mu.Unlock()

					case err := <-w.Error:
						bootstrapLogger.Error("config watcher error", zap.Error(err))
					case <-w.Closed:
						bootstrapLogger.Info("config watcher closed")
						return
					}
				}
			}()

			// Watch config file
			// 监听配置文件
			if err := w.Add(runEnv.config); err != nil {
				s.logger.Error("config watcher file error", zap.Error(err))
			} else {
				go func() {
					if err := w.Start(time.Second * 5); err != nil {
						bootstrapLogger.Error("config watcher start error", zap.Error(err))
					}
				}()
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			for {
				srv := current()
				var done <-chan struct{}
				if srv != nil {
					done = srv.Done()
				}

				select {
				case <-quit:
					w.Close()
					mu.Lock()
					defer mu.Unlock()
					if s == nil {
						bootstrapLogger.Info("Service has been shut down.")
						return
					}
					s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
					if err := s.Shutdown(); err != nil {
						s.logger.Error("Shutdown completed with error", zap.Error(err))
					} else {
						s.logger.Info("Service has been shut down gracefully.")
					}
					return

				case <-done:
					// 服务自行停止（监听失败）或正在重载，等待重载完成后重新检查
					mu.Lock()
					stopped := s == srv
					mu.Unlock()
					if stopped {
						w.Close()
						if err := srv.sc.WaitClosed(); err != nil {
							srv.logger.Error("service stopped with error", zap.Error(err))
						}
						return
					}
				}
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
