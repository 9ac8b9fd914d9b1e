// Package logger is the zerolog setup shared by every component.
//
// Loggers are built from Config (level, json or console format, stdout or
// stderr). Components fetch a tagged child of the global logger with Get
// and enrich it per call with WithContext, which adds the run id and the
// active trace and span ids:
//
//	log := logger.Get("orchestrator").WithContext(ctx)
//	log.Info("transcription complete", logger.Fields(logger.FieldProvider, "deepgram"))
//
// Nothing in the module prints directly; retry and poll observers log here.
package logger
