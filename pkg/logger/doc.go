// Package logger provides structured logging for vkprofiler on top of zerolog.
//
// Console output goes to stderr with colored level badges so that reports
// written to stdout stay machine readable. When a log file is configured,
// JSON lines are appended to it as well.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("user", "durov")
//	log.InfoWithFields("Collected posts", map[string]interface{}{"count": 240})
//
// Components receive a Logger explicitly; TestLogger and NewNopLogger are
// provided for tests.
package logger
