package vio

import (
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestLoggerDefaultsToNop(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	if Logger() == nil {
		t.Fatal("Logger() = nil before SetLogger")
	}
	l := zap.NewExample()
	SetLogger(l)
	if Logger() != l {
		t.Error("SetLogger not observed")
	}
	SetLogger(nil)
	if Logger() == nil || Logger() == l {
		t.Error("SetLogger(nil) did not restore the no-op logger")
	}
}

func TestSetLoggerWhileLogging(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	loggers := []*zap.Logger{zap.NewNop(), zap.NewNop().Named("a"), nil}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				SetLogger(loggers[(i+j)%len(loggers)])
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				l := Logger()
				if l == nil {
					t.Error("Logger() = nil")
					return
				}
				l.Debug("tick")
			}
		}()
	}
	wg.Wait()
}
