// Package logger provides structured logging for benchhttp using zerolog.
//
// Console output is the default for interactive benchmark runs; JSON is
// available for piping results into log processors.
//
// # Usage
//
//	logger.Init(&cfg.Logging)
//	log := logger.WithComponent("bench")
//	log.Info("run finished", logger.Fields("strategy", "stream-direct", "ops", 500))
package logger
