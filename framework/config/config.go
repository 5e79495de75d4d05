package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fixkme/tickdriver/errs"
	"github.com/fixkme/tickdriver/mlog"
	"github.com/fixkme/tickdriver/tick"
	"go.uber.org/multierr"
)

var Config *AppConfig

type AppConfig struct {
	TickRate     uint64 `json:"tick_rate" mapstructure:"tick_rate"` // 0 表示默认频率
	LogConfig    `json:",inline" mapstructure:",inline"`
	ServerConfig `json:",inline" mapstructure:",inline"`
	BlinkConfig  `json:",inline" mapstructure:",inline"`
	IsDebug      bool `json:"is_debug" mapstructure:"is_debug"`
}

type LogConfig struct {
	LogPath    string `json:"log_path" mapstructure:"log_path"`
	LogName    string `json:"log_name" mapstructure:"log_name"`
	LogLevel   string `json:"log_level" mapstructure:"log_level"`
	LogBackend string `json:"log_backend" mapstructure:"log_backend"` // std, file, zap
	LogStdOut  bool   `json:"log_std_out" mapstructure:"log_std_out"`
	LogMaxMB   int    `json:"log_max_mb" mapstructure:"log_max_mb"`
}

type ServerConfig struct {
	ListenAddr string `json:"listen_addr" mapstructure:"listen_addr"` // tcp://host:port
	Multicore  bool   `json:"multicore" mapstructure:"multicore"`
	MaxFrame   int    `json:"max_frame" mapstructure:"max_frame"` // 单帧最大字节数
}

type BlinkConfig struct {
	BlinkPeriodMs int `json:"blink_period_ms" mapstructure:"blink_period_ms"`
	BlinkCount    int `json:"blink_count" mapstructure:"blink_count"` // 0 表示一直闪
}

// Default 可直接运行的默认配置
func Default() *AppConfig {
	return &AppConfig{
		TickRate: tick.Rate,
		LogConfig: LogConfig{
			LogLevel:   "info",
			LogBackend: "std",
			LogName:    "tickdriver",
		},
		ServerConfig: ServerConfig{
			ListenAddr: "tcp://127.0.0.1:7430",
			MaxFrame:   1 << 10,
		},
		BlinkConfig: BlinkConfig{
			BlinkPeriodMs: 1000,
		},
	}
}

func LoadConfig(configFile string, loadConfigFromEnv func(*AppConfig) error) error {
	conf := Default()
	if len(configFile) > 0 {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return errs.BadConfig.Wrap(err)
		}
		if err = json.Unmarshal(data, conf); err != nil {
			return errs.BadConfig.Wrap(err)
		}
	}
	if loadConfigFromEnv != nil {
		if err := loadConfigFromEnv(conf); err != nil {
			return errs.BadConfig.Wrap(err)
		}
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	Config = conf
	return nil
}

// Validate 一次性报告所有问题
func (conf *AppConfig) Validate() error {
	var err error
	if conf.TickRate != 0 && conf.TickRate != tick.Rate {
		err = multierr.Append(err, fmt.Errorf("tick_rate %d unsupported, clock runs at %d Hz", conf.TickRate, tick.Rate))
	}
	if _, e := mlog.ParseLevel(conf.LogLevel); e != nil {
		err = multierr.Append(err, e)
	}
	switch conf.LogBackend {
	case "", "std", "zap":
	case "file":
		if conf.LogName == "" {
			err = multierr.Append(err, fmt.Errorf("log_name required for file backend"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown log_backend %q", conf.LogBackend))
	}
	if conf.ListenAddr != "" && !strings.Contains(conf.ListenAddr, "://") {
		err = multierr.Append(err, fmt.Errorf("listen_addr %q needs a scheme, e.g. tcp://", conf.ListenAddr))
	}
	if conf.MaxFrame < 0 {
		err = multierr.Append(err, fmt.Errorf("max_frame %d negative", conf.MaxFrame))
	}
	if conf.BlinkPeriodMs <= 0 {
		err = multierr.Append(err, fmt.Errorf("blink_period_ms %d must be positive", conf.BlinkPeriodMs))
	}
	if err != nil {
		return errs.BadConfig.Wrap(err)
	}
	return nil
}

// SetupLogger 按配置选择日志后端
func (conf *LogConfig) SetupLogger(ctx context.Context, wg *sync.WaitGroup) error {
	level, err := mlog.ParseLevel(conf.LogLevel)
	if err != nil {
		return errs.BadConfig.Wrap(err)
	}
	switch conf.LogBackend {
	case "file":
		return mlog.UseDefaultLogger(ctx, wg, mlog.FileConfig{
			Path:      conf.LogPath,
			Name:      conf.LogName,
			MaxSizeMB: conf.LogMaxMB,
			StdOut:    conf.LogStdOut,
		}, level)
	case "zap":
		z, err := mlog.NewZap(level, false)
		if err != nil {
			return err
		}
		mlog.UseZapLogger(z)
		return nil
	default:
		return mlog.UseStdLogger(level)
	}
}

func (conf *AppConfig) JsonFormat() string {
	if conf == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
