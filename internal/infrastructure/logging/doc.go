// Package logging provides structured logging using uber/zap.
//
// Production loggers write JSON lines keyed ts, level, component and msg.
// Development loggers write colored console lines with stack traces on
// errors. Logs go to stderr unless Config.Output says otherwise.
//
// Components derive child loggers instead of building their own:
//
//	logger := base.Component("playground")
//	logger.Run(runID).Info("run finished", logging.Digest(ref.Digest()))
package logging
