/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// SetupLogging points the standard logger at a rolling log file, the way
// the teacher's daemon does it. Passing an empty logfile leaves the
// default stderr logger in place, which is convenient for tests and for
// short-lived CLI invocations.
func SetupLogging(logfile string) {
	log.SetFlags(log.Lshortfile | log.Ltime)

	if logfile == "" {
		return
	}

	log.SetOutput(&lumberjack.Logger{
		Filename:   logfile,
		MaxSize:    20,
		MaxBackups: 3,
		MaxAge:     14,
	})
}
