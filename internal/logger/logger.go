package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// OutputFormat selects the log line encoding.
type OutputFormat int

const (
	// FormatText renders logfmt-style key=value lines.
	FormatText OutputFormat = iota
	// FormatJSON renders one JSON object per line.
	FormatJSON
)

// ParseOutputFormat maps "json" to FormatJSON and anything else to FormatText.
func ParseOutputFormat(name string) OutputFormat {
	if strings.EqualFold(name, "json") {
		return FormatJSON
	}
	return FormatText
}

var (
	// testOutput is used to capture log output during tests
	testOutput   io.Writer
	testOutputMu sync.Mutex
)

// Fields is a type alias for log fields to make the API cleaner
type Fields map[string]interface{}

var (
	logger   *logrus.Logger
	loggerMu sync.Mutex
)

// SetTestOutput sets the output writer for testing purposes
func SetTestOutput(w io.Writer) {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	testOutput = w
}

// UnsetTestOutput resets the test output to nil
func UnsetTestOutput() {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	testOutput = nil
}

func getOutput() io.Writer {
	testOutputMu.Lock()
	defer testOutputMu.Unlock()
	if testOutput != nil {
		return testOutput
	}
	return os.Stderr
}

// InitLogger initializes the global logger with a level name and output format.
// Unknown level names fall back to info.
func InitLogger(logLevel string, format OutputFormat) {
	lg := logrus.New()
	lg.SetOutput(getOutput())

	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	lg.SetLevel(level)
	lg.SetFormatter(formatterFor(format))

	loggerMu.Lock()
	logger = lg
	loggerMu.Unlock()
}

// SetOutputFormat switches the format of the current logger.
func SetOutputFormat(format OutputFormat) {
	GetLogger().SetFormatter(formatterFor(format))
}

func formatterFor(format OutputFormat) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: false,
	}
}

// GetLogger returns the configured logger instance.
func GetLogger() *logrus.Logger {
	loggerMu.Lock()
	lg := logger
	loggerMu.Unlock()
	if lg == nil {
		InitLogger("info", FormatText)
		loggerMu.Lock()
		lg = logger
		loggerMu.Unlock()
	}
	return lg
}

// Info logs an info message.
func Info(msg string, fields ...Fields) {
	GetLogger().WithFields(logrus.Fields(mergeFieldMaps(fields...))).Info(msg)
}

// Infof logs a formatted info message.
func Infof(format string, args ...interface{}) {
	GetLogger().Info(fmt.Sprintf(format, args...))
}

// Debug logs a debug message (only shown when debug level is enabled).
func Debug(msg string, fields ...Fields) {
	GetLogger().WithFields(logrus.Fields(mergeFieldMaps(fields...))).Debug(msg)
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...interface{}) {
	GetLogger().Debug(fmt.Sprintf(format, args...))
}

// DebugfWithFields logs a formatted debug message with fields.
func DebugfWithFields(fields Fields, format string, args ...interface{}) {
	GetLogger().WithFields(logrus.Fields(fields)).Debug(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func Warn(msg string, fields ...Fields) {
	GetLogger().WithFields(logrus.Fields(mergeFieldMaps(fields...))).Warn(msg)
}

// Warnf logs a formatted warning message.
func Warnf(format string, args ...interface{}) {
	GetLogger().Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(msg string, fields ...Fields) {
	GetLogger().WithFields(logrus.Fields(mergeFieldMaps(fields...))).Error(msg)
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...interface{}) {
	GetLogger().Error(fmt.Sprintf(format, args...))
}

// Success logs a success message as info with success indicator.
func Success(msg string, fields ...Fields) {
	merged := mergeFieldMaps(fields...)
	merged["status"] = "success"
	GetLogger().WithFields(logrus.Fields(merged)).Info(msg)
}

// mergeFieldMaps merges multiple field maps into one; later maps win.
func mergeFieldMaps(fields ...Fields) Fields {
	result := make(Fields)
	for _, field := range fields {
		for k, v := range field {
			result[k] = v
		}
	}
	return result
}
