package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"gridcss/breakpoint"
	"gridcss/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none quiet normal debug"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// lowest enabled level for configured level names, "none" is absent.
var minLevels = map[string]zapcore.Level{
	"quiet":  zapcore.WarnLevel,
	"normal": zapcore.InfoLevel,
	"debug":  zapcore.DebugLevel,
}

// Prepare returns configured program logger. Console output is split: errors
// go to stderr, everything else to stdout. When debug report is requested
// file logger is forced to debug level and its output lands in the report.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {

	cores := conf.consoleCores()

	level, mode := conf.FileLogger.Level, conf.FileLogger.Mode
	if rpt != nil {
		level, mode = "debug", "overwrite"
	}

	var redirected string
	if lowest, ok := minLevels[level]; ok {
		capturePanics(conf.FileLogger.Destination, mode, rpt)

		f, err := openLog(conf.FileLogger.Destination, mode)
		if err != nil {
			if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err != nil {
				return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
			}
			redirected = f.Name()
		}
		rpt.Store("final.log", f.Name())
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), zap.NewAtomicLevelAt(lowest)))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	if len(redirected) != 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(misc.GetAppName()), nil
}

func (conf *LoggingConfig) consoleCores() []zapcore.Core {
	lowest, ok := minLevels[conf.ConsoleLogger.Level]
	if !ok {
		return nil
	}
	low := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lowest <= lvl && lvl < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})
	return []zapcore.Core{
		zapcore.NewCore(consoleEncoder(os.Stdout), zapcore.Lock(os.Stdout), low),
		zapcore.NewCore(consoleEncoder(os.Stderr), zapcore.Lock(os.Stderr), high),
	}
}

func consoleEncoder(stream *os.File) zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if EnableColorOutput(stream) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}
	return consoleEnc{zapcore.NewConsoleEncoder(ec)}
}

func openLog(fname, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(fname, flags, 0644)
}

// capturePanics directs crash output next to the log file, or to temporary
// location. Failure is quietly ignored.
func capturePanics(destination, mode string, rpt *Report) {
	ef, err := openLog(filepath.Join(filepath.Dir(destination), misc.GetAppName()+"-panic.log"), mode)
	if err != nil {
		if ef, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err != nil {
			return
		}
	}
	defer ef.Close()

	debug.SetCrashOutput(ef, debug.CrashOptions{})
	rpt.Store("panic.log", ef.Name())
}

// consoleEnc keeps console error output short: diagnostics are printed
// without rule and subject (those are separate fields), wrapped error chains
// lose their verbose form.
type consoleEnc struct {
	zapcore.Encoder
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			e := f.Interface.(error)
			if d, ok := e.(*breakpoint.Diagnostic); ok {
				out = append(out, zap.String("rule", string(d.Rule)), zap.String("subject", d.Subject))
				e = errors.New(d.Message)
			}
			f.Interface = errors.New(e.Error())
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}
