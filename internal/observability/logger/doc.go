// Package logger wraps zap behind a process-wide singleton plus context
// propagation, so any layer can do logger.From(ctx) without threading a
// *zap.Logger through every constructor.
package logger
