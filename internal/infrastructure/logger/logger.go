package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type Logger struct {
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger
}

func NewLogger() *Logger {
	return New(os.Stdout, os.Stderr)
}

// New writes info and warning lines to out and errors to errOut.
func New(out, errOut io.Writer) *Logger {
	flags := log.Ldate | log.Ltime | log.Lmsgprefix
	return &Logger{
		infoLog:  log.New(out, "INFO: ", flags),
		warnLog:  log.New(out, "WARN: ", flags),
		errorLog: log.New(errOut, "ERROR: ", flags),
	}
}

// Nop discards everything.
func Nop() *Logger {
	return New(io.Discard, io.Discard)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.infoLog.Println(format(msg, args))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.warnLog.Println(format(msg, args))
}

func (l *Logger) Error(msg string, args ...interface{}) {
	l.errorLog.Println(format(msg, args))
}

// format renders alternating key/value args as key=value pairs.
func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	return b.String()
}
