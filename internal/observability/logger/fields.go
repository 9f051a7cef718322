package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard HTTP fields.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// Standard business fields.

func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Phone logs a masked phone number; never log the raw value.
func Phone(v string) zap.Field { return zap.String("phone", maskPhone(v)) }

func Provider(v string) zap.Field { return zap.String("provider", v) }

func AuthMethod(v string) zap.Field { return zap.String("auth_method", v) }

// Standard system fields.

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

// Generic fields.

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }

func maskPhone(v string) string {
	if len(v) < 7 {
		return "***"
	}
	return v[:3] + "****" + v[len(v)-4:]
}
