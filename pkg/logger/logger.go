package logger

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bbookman/mom0mind/internal/config"
	"github.com/bbookman/mom0mind/internal/models"
)

// Logger 是对 logrus 的封装，以提供更方便的结构化日志记录功能。
type Logger struct {
	entry *logrus.Entry
}

// Init 根据配置初始化全局的 logrus 设置。
// 配置了日志目录时，输出经 lumberjack 按大小轮转；否则输出到标准输出。
func Init(cfg config.LoggingConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// JSON 格式便于后续的日志采集和分析；text 供本地调试。
	if cfg.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	if cfg.Directory == "" {
		logrus.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return err
	}
	logrus.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, "mom0mind.log"),
		MaxSize:    cfg.Rotation.MaxSizeMB,
		MaxBackups: cfg.Rotation.MaxBackups,
		MaxAge:     cfg.Rotation.MaxAgeDays,
	})
	return nil
}

// New 创建一个新的 Logger 实例，并预设服务名与用户字段。
func New(serviceName, userID string) *Logger {
	fields := logrus.Fields{"service_name": serviceName}
	if userID != "" {
		fields["user_id"] = userID
	}
	return &Logger{entry: logrus.WithFields(fields)}
}

// WithRequest 将请求信息添加到日志条目中。
func (l *Logger) WithRequest(req models.RequestInfo) *Logger {
	return &Logger{entry: l.entry.WithField("request_info", req)}
}

// WithError 将错误信息添加到日志条目中。
func (l *Logger) WithError(err models.ErrorInfo) *Logger {
	return &Logger{entry: l.entry.WithField("error", err)}
}

// WithPayload 将自定义的业务数据添加到日志条目中。
func (l *Logger) WithPayload(payload map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithField("payload", payload)}
}

// Info 记录一条信息级别的日志。
func (l *Logger) Info(message string) { l.entry.Info(message) }

// Warn 记录一条警告级别的日志。
func (l *Logger) Warn(message string) { l.entry.Warn(message) }

// Error 记录一条错误级别的日志。
func (l *Logger) Error(message string) { l.entry.Error(message) }

// Debug 记录一条调试级别的日志。
func (l *Logger) Debug(message string) { l.entry.Debug(message) }

// Fatal 记录一条致命错误级别的日志，并终止程序。
func (l *Logger) Fatal(message string) { l.entry.Fatal(message) }
