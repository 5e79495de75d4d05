package mlog

import (
	"log"
	"os"
)

type stdoutLogger struct {
	leveled
}

func newStdoutLogger(level Level) *stdoutLogger {
	l := &stdoutLogger{}
	l.level = level
	l.emit = func(level Level, msg string) {
		log.Println(msg)
		if level == FatalLevel {
			os.Exit(1)
		}
	}
	log.SetFlags(log.Ldate | log.Lmicroseconds)
	return l
}
