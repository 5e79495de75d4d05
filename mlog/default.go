package mlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig 文件日志配置
type FileConfig struct {
	Path       string // 目录, 默认当前路径
	Name       string // 文件名(不含.log), 默认 mlog
	MaxSizeMB  int    // 单文件上限, 默认100MB
	MaxBackups int
	StdOut     bool // 同时输出到标准输出
}

// leveled 按级别过滤后交给 emit 输出
type leveled struct {
	level Level
	emit  func(level Level, msg string)
}

func (l *leveled) IsLevelEnabled(level Level) bool {
	return l.level >= level
}

func (l *leveled) log(level Level, args ...any) {
	if l.IsLevelEnabled(level) {
		l.emit(level, getLevelTag(level)+fmt.Sprint(args...))
	}
}

func (l *leveled) logf(level Level, format string, args ...any) {
	if l.IsLevelEnabled(level) {
		l.emit(level, getLevelTag(level)+fmt.Sprintf(format, args...))
	}
}

func (l *leveled) Trace(v ...any) { l.log(TraceLevel, v...) }
func (l *leveled) Tracef(format string, v ...any) { l.logf(TraceLevel, format, v...) }
func (l *leveled) Debug(v ...any) { l.log(DebugLevel, v...) }
func (l *leveled) Debugf(format string, v ...any) { l.logf(DebugLevel, format, v...) }
func (l *leveled) Info(v ...any) { l.log(InfoLevel, v...) }
func (l *leveled) Infof(format string, v ...any) { l.logf(InfoLevel, format, v...) }
func (l *leveled) Notice(v ...any) { l.log(NoticeLevel, v...) }
func (l *leveled) Noticef(format string, v ...any) { l.logf(NoticeLevel, format, v...) }
func (l *leveled) Warn(v ...any) { l.log(WarnLevel, v...) }
func (l *leveled) Warnf(format string, v ...any) { l.logf(WarnLevel, format, v...) }
func (l *leveled) Error(v ...any) { l.log(ErrorLevel, v...) }
func (l *leveled) Errorf(format string, v ...any) { l.logf(ErrorLevel, format, v...) }
func (l *leveled) Fatal(v ...any) { l.log(FatalLevel, v...) }
func (l *leveled) Fatalf(format string, v ...any) { l.logf(FatalLevel, format, v...) }

type loggerImp struct {
	leveled
	sink    *lumberjack.Logger
	ll      *log.Logger
	buff    chan string
	stdOut  bool
	dropped atomic.Int64
}

func newDefaultLogger(conf FileConfig, level Level) (*loggerImp, error) {
	// 默认使用当前路径
	if len(conf.Path) == 0 {
		conf.Path = "."
	}
	if len(conf.Name) == 0 {
		conf.Name = "mlog"
	}
	if conf.MaxSizeMB <= 0 {
		conf.MaxSizeMB = 100
	}
	if err := os.MkdirAll(conf.Path, 0755); err != nil {
		return nil, err
	}
	sink := &lumberjack.Logger{
		Filename:   filepath.Join(conf.Path, conf.Name+".log"),
		MaxSize:    conf.MaxSizeMB,
		MaxBackups: conf.MaxBackups,
	}
	if conf.StdOut {
		log.SetFlags(log.Ldate | log.Lmicroseconds)
	}
	me := &loggerImp{
		sink:   sink,
		ll:     log.New(sink, "", log.Ldate|log.Lmicroseconds),
		buff:   make(chan string, 0x10000),
		stdOut: conf.StdOut,
	}
	me.level = level
	me.emit = me.push
	return me, nil
}

// push 不阻塞, 缓冲满或写协程已退出时丢弃
func (me *loggerImp) push(level Level, msg string) {
	select {
	case me.buff <- msg:
	default:
		me.dropped.Add(1)
	}
	if level == FatalLevel {
		time.Sleep(time.Second)
		os.Exit(1)
	}
}

// Dropped 因缓冲满丢弃的日志条数
func (me *loggerImp) Dropped() int64 {
	return me.dropped.Load()
}

func (me *loggerImp) write(str string) {
	if me.stdOut {
		log.Println(str)
	}
	me.ll.Println(str)
}

func (me *loggerImp) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("log recover error %v\n", r)
			}
			me.sink.Close()
			wg.Done()
		}()

		for {
			select {
			case <-ctx.Done():
				// 退出前写完缓冲
				for {
					select {
					case str := <-me.buff:
						me.write(str)
					default:
						return
					}
				}
			case str := <-me.buff:
				me.write(str)
			}
		}
	}()
}
