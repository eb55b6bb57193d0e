package logging_test

import (
	"testing"

	"quarry/internal/logging"
)

func TestProgressSamplerEmitsOnBucketChange(t *testing.T) {
	sampler := logging.NewProgressSampler(5)

	if !sampler.ShouldLog(0, "speech-model") {
		t.Fatal("first event should emit")
	}
	if sampler.ShouldLog(1.2, "speech-model") {
		t.Fatal("same bucket should be suppressed")
	}
	if sampler.ShouldLog(4.9, "speech-model") {
		t.Fatal("same bucket should be suppressed")
	}
	if !sampler.ShouldLog(5.1, "speech-model") {
		t.Fatal("bucket boundary should emit")
	}
	if !sampler.ShouldLog(100, "speech-model") {
		t.Fatal("completion should emit")
	}
}

func TestProgressSamplerEmitsOnSubjectChange(t *testing.T) {
	sampler := logging.NewProgressSampler(10)

	if !sampler.ShouldLog(50, "speech-model") {
		t.Fatal("first subject should emit")
	}
	if !sampler.ShouldLog(3, "lipsync-model") {
		t.Fatal("subject change should emit even at lower percent")
	}
	if sampler.ShouldLog(4, "lipsync-model") {
		t.Fatal("same bucket after subject change should be suppressed")
	}
}

func TestProgressSamplerUnknownPercent(t *testing.T) {
	sampler := logging.NewProgressSampler(5)

	if !sampler.ShouldLog(-1, "checkpoint") {
		t.Fatal("unknown percent with new subject should emit")
	}
	if sampler.ShouldLog(-1, "checkpoint") {
		t.Fatal("repeated unknown percent should be suppressed")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	sampler := logging.NewProgressSampler(5)
	sampler.ShouldLog(50, "vae")
	sampler.Reset()
	if !sampler.ShouldLog(50, "vae") {
		t.Fatal("reset should allow the same subject to emit again")
	}
}

func TestNilProgressSamplerAlwaysLogs(t *testing.T) {
	var sampler *logging.ProgressSampler
	if !sampler.ShouldLog(1, "x") {
		t.Fatal("nil sampler should always log")
	}
	sampler.Reset()
}
