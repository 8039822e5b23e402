package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/crytic/solink/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is configured by the CLI once flags and the project
// configuration are known. Each package should derive its own sub-logger from it.
var GlobalLogger = NewLogger(zerolog.Disabled)

// Logger describes a custom logging object that can log events to any number of writers, in structured (JSON) or
// unstructured (console) format, with or without ANSI coloring.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// fields describes the key-value context attached to every event emitted by this Logger
	fields []contextField

	// structuredLogger emits JSON events to structuredWriters
	structuredLogger zerolog.Logger
	// unstructuredLogger emits plain console events to unstructuredWriters
	unstructuredLogger zerolog.Logger
	// unstructuredColorLogger emits colorized console events to unstructuredColorWriters
	unstructuredColorLogger zerolog.Logger

	structuredWriters        []io.Writer
	unstructuredWriters      []io.Writer
	unstructuredColorWriters []io.Writer
}

// contextField is a key-value pair attached to a sub-logger.
type contextField struct {
	key   string
	value string
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger creates a new Logger with a specific log level and no writers. Writers are attached with AddWriter.
func NewLogger(level zerolog.Level) *Logger {
	l := &Logger{
		level:                    level,
		structuredWriters:        make([]io.Writer, 0),
		unstructuredWriters:      make([]io.Writer, 0),
		unstructuredColorWriters: make([]io.Writer, 0),
	}
	l.rebuild()
	return l
}

// NewSubLogger creates a new Logger with additional context in the form of a key-value pair. The expected use is for
// each package to have its own sub-logger so that logs are grep-able by module.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	fields := make([]contextField, 0, len(l.fields)+1)
	fields = append(fields, l.fields...)
	fields = append(fields, contextField{key: key, value: value})

	sub := &Logger{
		level:                    l.level,
		fields:                   fields,
		structuredWriters:        append([]io.Writer(nil), l.structuredWriters...),
		unstructuredWriters:      append([]io.Writer(nil), l.unstructuredWriters...),
		unstructuredColorWriters: append([]io.Writer(nil), l.unstructuredColorWriters...),
	}
	sub.rebuild()
	return sub
}

// AddWriter adds a writer to the list of channels where log output will be sent. Adding a writer twice with the same
// format and coloring is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writerList(format, colored)
	for _, w := range *writers {
		if w == writer {
			return
		}
	}
	*writers = append(*writers, writer)
	l.rebuild()
}

// RemoveWriter removes a writer from the list of writers that the logger manages. If the writer does not exist, this
// function is a no-op.
func (l *Logger) RemoveWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writerList(format, colored)
	for i, w := range *writers {
		if w == writer {
			*writers = append((*writers)[:i], (*writers)[i+1:]...)
			l.rebuild()
			return
		}
	}
}

// writerList returns a pointer to the writer list matching the provided format and coloring.
func (l *Logger) writerList(format LogFormat, colored bool) *[]io.Writer {
	if format == STRUCTURED {
		return &l.structuredWriters
	}
	if colored {
		return &l.unstructuredColorWriters
	}
	return &l.unstructuredWriters
}

// rebuild recreates the underlying zerolog loggers from the current level, context fields and writers.
func (l *Logger) rebuild() {
	l.structuredLogger = l.withFields(newZerolog(l.structuredWriters, l.level))
	l.structuredLogger = l.structuredLogger.With().Timestamp().Logger()

	plain := make([]io.Writer, 0, len(l.unstructuredWriters))
	for _, w := range l.unstructuredWriters {
		plain = append(plain, setupDefaultFormatting(zerolog.ConsoleWriter{Out: w, NoColor: true}, l.level, false))
	}
	l.unstructuredLogger = l.withFields(newZerolog(plain, l.level))

	colored := make([]io.Writer, 0, len(l.unstructuredColorWriters))
	for _, w := range l.unstructuredColorWriters {
		colored = append(colored, setupDefaultFormatting(zerolog.ConsoleWriter{Out: w}, l.level, true))
	}
	l.unstructuredColorLogger = l.withFields(newZerolog(colored, l.level))
}

// newZerolog creates a zerolog.Logger over the given writers. A logger without writers is disabled.
func newZerolog(writers []io.Writer, level zerolog.Level) zerolog.Logger {
	if len(writers) == 0 {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level)
}

// withFields attaches the Logger's context fields to the provided zerolog.Logger.
func (l *Logger) withFields(logger zerolog.Logger) zerolog.Logger {
	ctx := logger.With()
	for _, f := range l.fields {
		ctx = ctx.Str(f.key, f.value)
	}
	return ctx.Logger()
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.rebuild()
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error is a wrapper function that will log an error event.
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic is a wrapper function that will log a panic event. All writers receive the event before the panic unwinds.
func (l *Logger) Panic(args ...any) {
	colorMsg, plainMsg, err, info := buildMsgs(args...)
	chainAndSend(l.unstructuredColorLogger.WithLevel(zerolog.PanicLevel), colorMsg, err, info, true)
	chainAndSend(l.unstructuredLogger.WithLevel(zerolog.PanicLevel), plainMsg, err, info, true)
	chainAndSend(l.structuredLogger.WithLevel(zerolog.PanicLevel), plainMsg, err, info, true)
	panic(plainMsg)
}

// log builds the messages from args and emits them at the given level to every writer list.
func (l *Logger) log(level zerolog.Level, args ...any) {
	colorMsg, plainMsg, err, info := buildMsgs(args...)
	debug := l.level <= zerolog.DebugLevel

	chainAndSend(l.unstructuredColorLogger.WithLevel(level), colorMsg, err, info, debug)
	chainAndSend(l.unstructuredLogger.WithLevel(level), plainMsg, err, info, debug)
	chainAndSend(l.structuredLogger.WithLevel(level), plainMsg, err, info, debug)
}

// buildMsgs takes a variadic list of arguments of any type and returns a colorized message for console writers, a
// plain message for all other writers and, optionally, an error and a StructuredLogInfo to attach to the event.
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	if len(args) == 0 {
		return "", "", nil, nil
	}

	colorCtx := colors.Reset
	colorOutput := make([]string, 0, len(args))
	plainOutput := make([]string, 0, len(args))
	var info StructuredLogInfo
	var err error

	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			colorCtx = t
		case StructuredLogInfo:
			// Only one structured log info can be provided for each log message
			info = t
		case error:
			// Only one error can be provided for each log message
			err = t
		default:
			colorOutput = append(colorOutput, colorCtx(t))
			plainOutput = append(plainOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(colorOutput, ""), strings.Join(plainOutput, ""), err, info
}

// chainAndSend attaches the error (with a stack trace when debug is set) and structured info to the event and sends it.
// A nil event (level disabled) is a no-op.
func chainAndSend(event *zerolog.Event, msg string, err error, info StructuredLogInfo, debug bool) {
	if event == nil {
		return
	}
	if err != nil {
		// Stack must be requested before the error is attached for the marshaller to pick it up
		if debug {
			event = event.Stack()
		}
		event = event.Err(err)
	}
	if info != nil {
		event = event.Any("info", info)
	}
	event.Msg(msg)
}

// setupDefaultFormatting updates a console writer's formatting to the solink standard: no timestamp, a glyph or short
// colored label for the level, and no module field unless debugging.
func setupDefaultFormatting(writer zerolog.ConsoleWriter, level zerolog.Level, colored bool) zerolog.ConsoleWriter {
	writer.FormatTimestamp = func(i any) string {
		return ""
	}

	style := func(f colors.ColorFunc, s string) string {
		if !colored {
			return s
		}
		return f(s)
	}

	// Messages carry their own colors from buildMsgs, the remaining parts follow the colors package state at write time
	writer.FormatMessage = func(i any) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%v", i)
	}
	writer.FormatFieldName = func(i any) string {
		return style(colors.Cyan, fmt.Sprintf("%v=", i))
	}
	writer.FormatErrFieldName = writer.FormatFieldName
	writer.FormatErrFieldValue = func(i any) string {
		return style(colors.RedBold, fmt.Sprintf("%v", i))
	}

	writer.FormatLevel = func(i any) string {
		levelStr, _ := i.(string)
		parsed, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return levelStr
		}

		switch parsed {
		case zerolog.TraceLevel:
			return style(colors.CyanBold, zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return style(colors.BlueBold, zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return style(colors.GreenBold, colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return style(colors.YellowBold, zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return style(colors.RedBold, zerolog.LevelErrorValue)
		case zerolog.FatalLevel:
			return style(colors.RedBold, zerolog.LevelFatalValue)
		case zerolog.PanicLevel:
			return style(colors.RedBold, zerolog.LevelPanicValue)
		default:
			return levelStr
		}
	}

	if level > zerolog.DebugLevel {
		writer.FieldsExclude = []string{"module"}
	}

	return writer
}
