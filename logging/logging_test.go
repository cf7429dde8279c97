package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"INFOISH": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestZapLevelMapping(t *testing.T) {
	if ZapLevel(webifc.LogLevelDebug) != zapcore.DebugLevel {
		t.Fatal("debug mapping")
	}
	if ZapLevel(webifc.LogLevelError) != zapcore.ErrorLevel {
		t.Fatal("error mapping")
	}
	if ZapLevel(webifc.LogLevelOff) <= zapcore.FatalLevel {
		t.Fatal("off must sit above every real level")
	}
}

func TestNewWithoutSinksIsNop(t *testing.T) {
	log := New(Config{Level: "debug"})
	// must be safe to use
	log.Info("discarded")
	log.SetLevel(webifc.LogLevelError)
}

func TestSetLevelAdjustsAtomicLevel(t *testing.T) {
	log := New(Config{Level: "info", Console: true})
	defer log.Sync()

	if !log.level.Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be enabled at start")
	}
	log.SetLevel(webifc.LogLevelError)
	if log.level.Enabled(zapcore.InfoLevel) {
		t.Fatal("info still enabled after raising to error")
	}
	log.SetLevel(webifc.LogLevelDebug)
	if !log.level.Enabled(zapcore.DebugLevel) {
		t.Fatal("debug not enabled after lowering")
	}
}
