// internal/app/system/auditlog/auditlog_test.go
package auditlog

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecordNeverBlocks(t *testing.T) {
	l := New(nil, ModeLog, zap.NewNop())
	// Worker intentionally not started; fill well past the buffer.
	for i := 0; i < 1000; i++ {
		l.Record(Actor{ID: "a", Name: "A", Role: "president"}, "test.action", "t", nil)
	}
	// Reaching here is the assertion: overflow drops instead of blocking.
}

func TestEventsDrainOnStop(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := New(nil, ModeLog, zap.New(core))
	l.Start()

	for i := 0; i < 10; i++ {
		l.Record(Actor{ID: "a", Name: "A", Role: "finance"}, "payment.approve", "req-1", bson.M{"i": i})
	}
	l.Stop()

	var audits int
	for _, entry := range logs.All() {
		if entry.Message == "audit" {
			audits++
		}
	}
	if audits != 10 {
		t.Errorf("audit entries written = %d, want 10 (Stop must drain the buffer)", audits)
	}
}

func TestModeOffDiscards(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := New(nil, ModeOff, zap.New(core))
	l.Start()
	l.Record(Actor{ID: "a"}, "test.action", "", nil)
	l.Stop()

	for _, entry := range logs.All() {
		if entry.Message == "audit" {
			t.Errorf("off mode must not write audit entries")
		}
	}
}

func TestNilStoreDowngradesDBModes(t *testing.T) {
	l := New(nil, ModeAll, zap.NewNop())
	if l.mode != ModeLog {
		t.Errorf("mode = %q, want log when no store is configured", l.mode)
	}
}
